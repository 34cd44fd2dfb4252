package model

import "time"

// Approval status constants for a participant's booking request.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Participant links a user to a meetup they asked to join. The scheduled
// jobs only act on approved participants. Attended and NoShow are
// mutually exclusive once attendance is finalized; NoShow is set at most
// once per (meetup, user) pair.
type Participant struct {
	MeetupID       string    `json:"meetup_id" db:"meetup_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	ApprovalStatus string    `json:"approval_status" db:"approval_status"`
	Attended       bool      `json:"attended" db:"attended"`
	NoShow         bool      `json:"no_show" db:"no_show"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// CheckIn is a confirmed on-site check-in record written by the check-in
// flow. The no-show job treats its presence as proof of attendance even
// when the attended flag was never set.
type CheckIn struct {
	MeetupID  string    `json:"meetup_id" db:"meetup_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Confirmed bool      `json:"confirmed" db:"confirmed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
