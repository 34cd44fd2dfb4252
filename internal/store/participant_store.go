package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// CreateParticipant inserts a new participant row for a meetup.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p model.Participant) error {
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = model.ApprovalPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (
			meetup_id, user_id, approval_status, attended, no_show, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		p.MeetupID, p.UserID, p.ApprovalStatus,
		boolToInt(p.Attended), boolToInt(p.NoShow), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating participant %s/%s: %w", p.MeetupID, p.UserID, err)
	}
	return nil
}

// GetApprovedParticipants returns all approved participants of a meetup.
func (s *SQLiteStore) GetApprovedParticipants(
	ctx context.Context,
	meetupID string,
) ([]model.Participant, error) {
	var participants []model.Participant
	err := s.db.SelectContext(ctx, &participants, `
		SELECT * FROM participants
		WHERE meetup_id = ? AND approval_status = ?
		ORDER BY created_at`,
		meetupID, model.ApprovalApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("querying approved participants of %s: %w", meetupID, err)
	}
	return participants, nil
}

// GetParticipant retrieves a single participant by meetup and user.
func (s *SQLiteStore) GetParticipant(
	ctx context.Context,
	meetupID, userID string,
) (*model.Participant, error) {
	var p model.Participant
	err := s.db.GetContext(ctx, &p,
		"SELECT * FROM participants WHERE meetup_id = ? AND user_id = ?",
		meetupID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s/%s not found", meetupID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting participant %s/%s: %w", meetupID, userID, err)
	}
	return &p, nil
}

// CreateCheckIn records a check-in for a participant.
func (s *SQLiteStore) CreateCheckIn(ctx context.Context, c model.CheckIn) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_ins (meetup_id, user_id, confirmed, created_at)
		VALUES (?, ?, ?, ?)`,
		c.MeetupID, c.UserID, boolToInt(c.Confirmed), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating check-in %s/%s: %w", c.MeetupID, c.UserID, err)
	}
	return nil
}
