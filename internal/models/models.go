// internal/models/models.go
package models

// Applicant lifecycle statuses. Decisions may write values outside this set;
// the remote store accepts them as-is.
const (
	StatusPending      = "pending"
	StatusSecondBooked = "2nd_booked"
	StatusPass         = "pass"
	StatusHold         = "hold"
	StatusFail         = "fail"
)

// Message channels and directions.
const (
	ChannelSMS  = "sms"
	ChannelNote = "note"

	DirectionIn  = "in"
	DirectionOut = "out"
	DirectionSys = "sys"
)

// Applicant is a row in the Applicants sheet. Created on intake, mutated by
// booking and decision events, never deleted by this service.
type Applicant struct {
	ApplicantID  string `json:"applicant_id"`
	CreatedAt    string `json:"created_at"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Source       string `json:"source"`
	ConsentFlg   bool   `json:"consent_flg"`
	Status       string `json:"status"`
	Owner        string `json:"owner"`
	Notes        string `json:"notes"`
	NextActionAt string `json:"next_action_at"`
}

// Message is one entry in the append-only message audit log.
type Message struct {
	ID          string `json:"id"`
	ApplicantID string `json:"applicant_id"`
	At          string `json:"at"`
	Channel     string `json:"channel"`
	Direction   string `json:"direction"`
	Content     string `json:"content"`
	Operator    string `json:"operator"`
}

// Interviewer is a row in the Interviewers sheet; fields pass through the
// upsert untouched.
type Interviewer struct {
	InterviewerID string `json:"interviewer_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	CalendarID    string `json:"calendar_id"`
}

// Decision is an append-only hiring decision; writing one also syncs the
// applicant's status.
type Decision struct {
	ApplicantID string `json:"applicant_id"`
	DecidedAt   string `json:"decided_at"`
	Decision    string `json:"decision"`
	DecidedBy   string `json:"decided_by"`
	Memo        string `json:"memo"`
}
