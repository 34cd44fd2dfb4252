package store

import (
	"context"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// Store defines the persistence interface for meetups, participants,
// users, notifications, and device tokens as seen by the scheduled jobs.
// Entity creation methods exist for the surrounding platform flows and
// for seeding; the jobs themselves only read and advance state.
type Store interface {
	// === Meetups ===

	CreateMeetup(ctx context.Context, m model.Meetup) error
	GetMeetupByID(ctx context.Context, id string) (*model.Meetup, error)

	// StartDueMeetups moves every recruiting or recruiting_complete
	// meetup whose start time has passed to in_progress. Returns the
	// number of rows updated.
	StartDueMeetups(ctx context.Context, now time.Time) (int64, error)

	// EndOverdueMeetups moves every in_progress meetup whose full
	// duration has elapsed to ended. Returns the number of rows updated.
	EndOverdueMeetups(ctx context.Context, now time.Time) (int64, error)

	// GetMeetupsStartingBetween returns recruiting and
	// recruiting_complete meetups with from < scheduled_at <= to.
	GetMeetupsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Meetup, error)

	// GetMeetupsForReview returns meetups whose effective end time has
	// passed (or that are already ended), excluding rejected and
	// suspended ones, bounded below by oldestScheduledAt so stale
	// meetups are never picked up.
	GetMeetupsForReview(ctx context.Context, now, oldestScheduledAt time.Time) ([]model.Meetup, error)

	// GetMeetupsForNoShow returns ended meetups whose effective end
	// time is before settledBefore and that have no participant already
	// flagged as a no-show.
	GetMeetupsForNoShow(ctx context.Context, settledBefore time.Time) ([]model.Meetup, error)

	// === Participants ===

	CreateParticipant(ctx context.Context, p model.Participant) error
	GetApprovedParticipants(ctx context.Context, meetupID string) ([]model.Participant, error)
	GetParticipant(ctx context.Context, meetupID, userID string) (*model.Participant, error)
	CreateCheckIn(ctx context.Context, c model.CheckIn) error

	// === Users ===

	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)

	// === Notifications ===

	// CreateNotifications inserts all rows in a single transaction.
	// Missing IDs and creation times are filled in.
	CreateNotifications(ctx context.Context, ns []model.Notification) error

	// HasMeetupNotification reports whether any notification of the
	// given type exists for the meetup. This is the idempotency guard
	// shared by the notifying jobs.
	HasMeetupNotification(ctx context.Context, meetupID string, typ model.NotificationType) (bool, error)

	GetNotificationsByMeetup(ctx context.Context, meetupID string, typ model.NotificationType) ([]model.Notification, error)

	// === Device tokens ===

	CreateDeviceToken(ctx context.Context, t model.DeviceToken) error
	GetDeviceTokens(ctx context.Context, userIDs []string) ([]model.DeviceToken, error)
	DeleteDeviceTokens(ctx context.Context, tokens []string) error

	// === Transactions ===

	// BeginTx opens a transaction for the per-meetup no-show mutation.
	BeginTx(ctx context.Context) (Tx, error)

	Close() error
}

// Tx is the transactional slice of the store used by the no-show job.
// All mutations commit or roll back together.
type Tx interface {
	// NoShowCandidates returns the meetup's approved participants,
	// excluding the host, who neither have the attended flag set nor a
	// confirmed check-in record.
	NoShowCandidates(ctx context.Context, meetupID, hostID string) ([]model.Participant, error)

	// MarkNoShow sets the no_show flag for one participant.
	MarkNoShow(ctx context.Context, meetupID, userID string) error

	// ApplyTrustPenalty deducts penalty from the user's trust score,
	// clamped to a floor of zero.
	ApplyTrustPenalty(ctx context.Context, userID string, penalty int) error

	// CreateNotifications inserts notification rows inside the
	// transaction.
	CreateNotifications(ctx context.Context, ns []model.Notification) error

	Commit() error
	Rollback() error
}
