// internal/models/ids.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewApplicantID returns a time-sortable unique token for a fresh applicant.
func NewApplicantID() string {
	return ulid.Make().String()
}

// NewMessageID returns a random id for a message-log entry.
func NewMessageID() string {
	return uuid.New().String()
}

// NowRFC3339 is the timestamp format every sheet row uses.
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
