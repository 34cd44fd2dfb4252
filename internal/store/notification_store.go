package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// preparer abstracts *sqlx.DB and *sqlx.Tx for the batched insert.
type preparer interface {
	PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
}

// insertNotifications writes all rows through one prepared statement,
// filling in missing IDs and creation times.
func insertNotifications(ctx context.Context, p preparer, ns []model.Notification) error {
	const query = `
		INSERT INTO notifications (
			id, user_id, type, meetup_id, title, body, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := p.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, n.UserID, string(n.Type), n.MeetupID,
			n.Title, n.Body, boolToInt(n.IsRead), n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting notification for user %s: %w", n.UserID, err)
		}
	}

	return nil
}

// CreateNotifications inserts a batch of notifications in a single
// transaction. Either all rows are written or none are.
func (s *SQLiteStore) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertNotifications(ctx, tx, ns); err != nil {
		return err
	}

	return tx.Commit()
}

// HasMeetupNotification reports whether any notification of the given
// type exists for the meetup, across all recipients.
func (s *SQLiteStore) HasMeetupNotification(
	ctx context.Context,
	meetupID string,
	typ model.NotificationType,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE meetup_id = ? AND type = ?",
		meetupID, string(typ),
	)
	if err != nil {
		return false, fmt.Errorf("checking notifications for meetup %s: %w", meetupID, err)
	}
	return count > 0, nil
}

// GetNotificationsByMeetup retrieves all notifications of one type for a
// meetup, ordered by creation time.
func (s *SQLiteStore) GetNotificationsByMeetup(
	ctx context.Context,
	meetupID string,
	typ model.NotificationType,
) ([]model.Notification, error) {
	var ns []model.Notification
	err := s.db.SelectContext(ctx, &ns, `
		SELECT * FROM notifications
		WHERE meetup_id = ? AND type = ?
		ORDER BY created_at, id`,
		meetupID, string(typ),
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for meetup %s: %w", meetupID, err)
	}
	return ns, nil
}
