package model

import "time"

// NotificationType identifies what kind of event a notification reports.
type NotificationType string

const (
	// NotificationReminder30Min alerts approved participants shortly
	// before the meetup starts.
	NotificationReminder30Min NotificationType = "reminder-30min"

	// NotificationReviewRequest asks participants to review a meetup
	// that recently ended.
	NotificationReviewRequest NotificationType = "review-request"

	// NotificationNoShowPenalty informs a participant that a no-show
	// penalty was applied to their trust score.
	NotificationNoShowPenalty NotificationType = "noshow-penalty"

	// NotificationNoShowReport summarizes a meetup's no-shows for the
	// host.
	NotificationNoShowReport NotificationType = "noshow-report"
)

// Notification is a persisted in-app notification. Rows are created only
// by the dispatcher; the inbox API owns reads and deletes. For the
// meetup-scoped types above, the existence of any row of a given type for
// a meetup is the signal that the whole batch was already sent.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// UserID is the recipient.
	UserID string `json:"user_id" db:"user_id"`

	// Type identifies the notification kind (use Notification* constants).
	Type NotificationType `json:"type" db:"type"`

	// MeetupID links the notification to a meetup, when there is one.
	MeetupID *string `json:"meetup_id,omitempty" db:"meetup_id"`

	// Title is the short headline shown in the inbox and the push alert.
	Title string `json:"title" db:"title"`

	// Body is the full notification text.
	Body string `json:"body" db:"body"`

	// IsRead indicates whether the recipient has seen this notification.
	IsRead bool `json:"is_read" db:"is_read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
