package postgres

import (
	"context"
	"fmt"

	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.PushTokenStore = (*PushTokenStore)(nil)

// PushTokenStore implements store.PushTokenStore on PostgreSQL.
type PushTokenStore struct {
	db DB
}

func NewPushTokenStore(db DB) *PushTokenStore {
	return &PushTokenStore{db: db}
}

// RegisterToken upserts a device token. Re-registering keeps the original
// created_at but takes the newest owner and platform.
func (s *PushTokenStore) RegisterToken(ctx context.Context, token *types.PushToken) error {
	var memberID *string
	if token.MemberID != "" {
		memberID = &token.MemberID
	}

	query := `
		INSERT INTO notification_tokens (token, member_id, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
		SET member_id = COALESCE(EXCLUDED.member_id, notification_tokens.member_id),
			platform = EXCLUDED.platform
		RETURNING created_at`

	if err := s.db.QueryRow(ctx, query, token.Token, memberID, token.Platform).Scan(&token.CreatedAt); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

// DeleteToken removes a token. Deleting an unknown token is not an error.
func (s *PushTokenStore) DeleteToken(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM notification_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete push token: %w", err)
	}
	return nil
}

func (s *PushTokenStore) ListTokens(ctx context.Context) ([]*types.PushToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT token, COALESCE(member_id::text, ''), platform, created_at, last_used_at
		FROM notification_tokens
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*types.PushToken
	for rows.Next() {
		t := &types.PushToken{}
		if err := rows.Scan(&t.Token, &t.MemberID, &t.Platform, &t.CreatedAt, &t.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *PushTokenStore) UpdateTokenLastUsed(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `UPDATE notification_tokens SET last_used_at = NOW() WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}
	return nil
}
