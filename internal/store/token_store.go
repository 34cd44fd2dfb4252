package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// CreateDeviceToken registers a push token for a user's device.
func (s *SQLiteStore) CreateDeviceToken(ctx context.Context, t model.DeviceToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO device_tokens (user_id, token, platform, created_at)
		VALUES (?, ?, ?, ?)`,
		t.UserID, t.Token, t.Platform, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating device token for user %s: %w", t.UserID, err)
	}
	return nil
}

// GetDeviceTokens returns every registered token for the given users.
// An empty user list yields an empty result.
func (s *SQLiteStore) GetDeviceTokens(
	ctx context.Context,
	userIDs []string,
) ([]model.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM device_tokens WHERE user_id IN (?) ORDER BY user_id, token",
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("building token query: %w", err)
	}

	var tokens []model.DeviceToken
	if err := s.db.SelectContext(ctx, &tokens, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying device tokens: %w", err)
	}
	return tokens, nil
}

// DeleteDeviceTokens removes tokens by value, regardless of owner. Used
// when the push provider reports them invalid or unregistered.
func (s *SQLiteStore) DeleteDeviceTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM device_tokens WHERE token IN (?)", tokens)
	if err != nil {
		return fmt.Errorf("building token delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("deleting device tokens: %w", err)
	}
	return nil
}
