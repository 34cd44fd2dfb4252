package model

import "time"

// MeetupStatus is the lifecycle state of a meetup.
type MeetupStatus string

const (
	// StatusRecruiting means the meetup is still accepting participants.
	StatusRecruiting MeetupStatus = "recruiting"

	// StatusRecruitingComplete means the host closed recruitment early.
	StatusRecruitingComplete MeetupStatus = "recruiting_complete"

	// StatusInProgress means the scheduled start time has passed.
	StatusInProgress MeetupStatus = "in_progress"

	// StatusEnded means the meetup ran past its full duration.
	StatusEnded MeetupStatus = "ended"

	// StatusRejected means an admin rejected the meetup before it ran.
	StatusRejected MeetupStatus = "rejected"

	// StatusSuspended means an admin suspended the meetup.
	StatusSuspended MeetupStatus = "suspended"
)

// DefaultDurationHours is the assumed running time of a meetup when the
// host did not specify one.
const DefaultDurationHours = 3

// Meetup is a scheduled gathering created by a host. The background jobs
// only ever move its status forward: recruiting or recruiting_complete
// to in_progress once the start time passes, then in_progress to ended
// once the duration has elapsed. Rejected and suspended meetups are left
// alone.
type Meetup struct {
	// ID is the unique identifier for this meetup.
	ID string `json:"id" db:"id"`

	// HostID is the user who created and runs the meetup.
	HostID string `json:"host_id" db:"host_id"`

	// Title is the human-readable meetup name.
	Title string `json:"title" db:"title"`

	// Status is the lifecycle state (use Status* constants).
	Status MeetupStatus `json:"status" db:"status"`

	// ScheduledAt is the wall-clock start time.
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`

	// DurationHours is how long the meetup runs after ScheduledAt.
	DurationHours int `json:"duration_hours" db:"duration_hours"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Duration returns the meetup's running time as a time.Duration,
// falling back to DefaultDurationHours when unset.
func (m Meetup) Duration() time.Duration {
	h := m.DurationHours
	if h <= 0 {
		h = DefaultDurationHours
	}
	return time.Duration(h) * time.Hour
}

// EndsAt returns the effective end time of the meetup.
func (m Meetup) EndsAt() time.Time {
	return m.ScheduledAt.Add(m.Duration())
}
