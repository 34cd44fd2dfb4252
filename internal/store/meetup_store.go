package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// CreateMeetup inserts a new meetup. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateMeetup(ctx context.Context, m model.Meetup) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = model.StatusRecruiting
	}
	if m.DurationHours <= 0 {
		m.DurationHours = model.DefaultDurationHours
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetups (
			id, host_id, title, status, scheduled_at, duration_hours,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HostID, m.Title, string(m.Status), m.ScheduledAt.UTC(),
		m.DurationHours, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating meetup %s: %w", m.ID, err)
	}
	return nil
}

// GetMeetupByID retrieves a single meetup by its ID.
func (s *SQLiteStore) GetMeetupByID(ctx context.Context, id string) (*model.Meetup, error) {
	var m model.Meetup
	err := s.db.GetContext(ctx, &m, "SELECT * FROM meetups WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meetup %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting meetup %s: %w", id, err)
	}
	return &m, nil
}

// StartDueMeetups flips recruiting and recruiting_complete meetups whose
// start time has passed to in_progress, in a single conditional update.
// Eligibility is computed from absolute time, so meetups skipped while
// the job was down still transition on the next run.
func (s *SQLiteStore) StartDueMeetups(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE meetups
		SET status = ?, updated_at = ?
		WHERE status IN (?, ?)
		  AND datetime(scheduled_at) <= datetime(?)`,
		string(model.StatusInProgress), now.UTC(),
		string(model.StatusRecruiting), string(model.StatusRecruitingComplete),
		now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("starting due meetups: %w", err)
	}
	return res.RowsAffected()
}

// EndOverdueMeetups flips in_progress meetups whose full duration has
// elapsed to ended, in a single conditional update.
func (s *SQLiteStore) EndOverdueMeetups(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE meetups
		SET status = ?, updated_at = ?
		WHERE status = ?
		  AND datetime(scheduled_at, '+' || duration_hours || ' hours') <= datetime(?)`,
		string(model.StatusEnded), now.UTC(),
		string(model.StatusInProgress),
		now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("ending overdue meetups: %w", err)
	}
	return res.RowsAffected()
}

// GetMeetupsStartingBetween returns recruiting and recruiting_complete
// meetups with from < scheduled_at <= to, ordered by start time.
func (s *SQLiteStore) GetMeetupsStartingBetween(
	ctx context.Context,
	from, to time.Time,
) ([]model.Meetup, error) {
	var meetups []model.Meetup
	err := s.db.SelectContext(ctx, &meetups, `
		SELECT * FROM meetups
		WHERE status IN (?, ?)
		  AND datetime(scheduled_at) > datetime(?)
		  AND datetime(scheduled_at) <= datetime(?)
		ORDER BY scheduled_at`,
		string(model.StatusRecruiting), string(model.StatusRecruitingComplete),
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming meetups: %w", err)
	}
	return meetups, nil
}

// GetMeetupsForReview returns meetups that have ended (by status or by
// their effective end time passing) and whose start time is after
// oldestScheduledAt. Rejected and suspended meetups never qualify.
func (s *SQLiteStore) GetMeetupsForReview(
	ctx context.Context,
	now, oldestScheduledAt time.Time,
) ([]model.Meetup, error) {
	var meetups []model.Meetup
	err := s.db.SelectContext(ctx, &meetups, `
		SELECT * FROM meetups
		WHERE status NOT IN (?, ?)
		  AND (status = ? OR datetime(scheduled_at, '+' || duration_hours || ' hours') <= datetime(?))
		  AND datetime(scheduled_at, '+' || duration_hours || ' hours') <= datetime(?)
		  AND datetime(scheduled_at) > datetime(?)
		ORDER BY scheduled_at`,
		string(model.StatusRejected), string(model.StatusSuspended),
		string(model.StatusEnded), now.UTC(),
		now.UTC(),
		oldestScheduledAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying meetups for review: %w", err)
	}
	return meetups, nil
}

// GetMeetupsForNoShow returns ended meetups whose effective end time is
// before settledBefore and that have no participant already flagged as a
// no-show. The NOT EXISTS clause is the meetup-level idempotency guard.
func (s *SQLiteStore) GetMeetupsForNoShow(
	ctx context.Context,
	settledBefore time.Time,
) ([]model.Meetup, error) {
	var meetups []model.Meetup
	err := s.db.SelectContext(ctx, &meetups, `
		SELECT m.* FROM meetups m
		WHERE m.status = ?
		  AND datetime(m.scheduled_at, '+' || m.duration_hours || ' hours') < datetime(?)
		  AND NOT EXISTS (
			SELECT 1 FROM participants p
			WHERE p.meetup_id = m.id AND p.no_show = 1
		  )
		ORDER BY m.scheduled_at`,
		string(model.StatusEnded), settledBefore.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying meetups for no-show processing: %w", err)
	}
	return meetups, nil
}
