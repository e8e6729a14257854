// internal/dispatch/seams.go
package dispatch

import (
	"context"
	"errors"
)

// ErrNotImplemented marks seams whose backing store does not exist yet.
var ErrNotImplemented = errors.New("not implemented")

// ApplicantDirectory resolves an inbound sender's phone number to an
// applicant id.
type ApplicantDirectory interface {
	FindByPhone(ctx context.Context, phone string) (string, error)
}

// PhoneKeyDirectory is the default directory: no phone lookup exists in the
// remote store yet, so inbound messages are keyed by the raw number.
// TODO: query the Applicants sheet by phone once the web app exposes a
// search path, then retire this placeholder key.
type PhoneKeyDirectory struct{}

func (PhoneKeyDirectory) FindByPhone(_ context.Context, phone string) (string, error) {
	return "phone:" + phone, nil
}

// OptStore persists the per-applicant consent-to-receive-SMS flag.
type OptStore interface {
	SetOptOut(ctx context.Context, applicantID string, optOut bool) error
}

// UnimplementedOptStore acknowledges STOP/UNSTOP without persisting the flag.
// TODO: write consent_flg back to the Applicants sheet; the acknowledgement
// texts already promise this behavior.
type UnimplementedOptStore struct{}

func (UnimplementedOptStore) SetOptOut(context.Context, string, bool) error {
	return ErrNotImplemented
}
