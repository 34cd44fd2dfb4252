package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// sqliteTx implements Tx over a sqlx transaction.
type sqliteTx struct {
	tx *sqlx.Tx
}

// NoShowCandidates returns approved participants of the meetup, excluding
// the host, with no attendance flag and no confirmed check-in record.
func (t *sqliteTx) NoShowCandidates(
	ctx context.Context,
	meetupID, hostID string,
) ([]model.Participant, error) {
	var participants []model.Participant
	err := t.tx.SelectContext(ctx, &participants, `
		SELECT p.* FROM participants p
		WHERE p.meetup_id = ?
		  AND p.user_id != ?
		  AND p.approval_status = ?
		  AND p.attended = 0
		  AND NOT EXISTS (
			SELECT 1 FROM check_ins c
			WHERE c.meetup_id = p.meetup_id
			  AND c.user_id = p.user_id
			  AND c.confirmed = 1
		  )
		ORDER BY p.user_id`,
		meetupID, hostID, model.ApprovalApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("querying no-show candidates for %s: %w", meetupID, err)
	}
	return participants, nil
}

// MarkNoShow sets the no_show flag for one participant.
func (t *sqliteTx) MarkNoShow(ctx context.Context, meetupID, userID string) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE participants SET no_show = 1 WHERE meetup_id = ? AND user_id = ? AND no_show = 0",
		meetupID, userID,
	)
	if err != nil {
		return fmt.Errorf("marking no-show %s/%s: %w", meetupID, userID, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("participant %s/%s not found or already flagged", meetupID, userID)
	}
	return nil
}

// ApplyTrustPenalty deducts penalty from the user's trust score. The
// score never drops below zero.
func (t *sqliteTx) ApplyTrustPenalty(ctx context.Context, userID string, penalty int) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE users SET trust_score = MAX(trust_score - ?, 0) WHERE id = ?",
		penalty, userID,
	)
	if err != nil {
		return fmt.Errorf("applying trust penalty to %s: %w", userID, err)
	}
	return nil
}

// CreateNotifications inserts notification rows inside the transaction.
func (t *sqliteTx) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return insertNotifications(ctx, t.tx, ns)
}

// Commit commits the transaction.
func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}
