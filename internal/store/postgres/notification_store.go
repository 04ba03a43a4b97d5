package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.NotificationStore = (*NotificationStore)(nil)

// NotificationStore implements store.NotificationStore on PostgreSQL.
type NotificationStore struct {
	db DB
}

func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) CreateNotification(ctx context.Context, n *types.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	var matchID *string
	if n.MatchID != "" {
		matchID = &n.MatchID
	}

	query := `
		INSERT INTO notifications (id, type, title, body, match_id, data, sent, failed, invalid_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err = s.db.QueryRow(ctx, query,
		n.ID, n.Type, n.Title, n.Body, matchID, data, n.Sent, n.Failed, n.InvalidTokens,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListNotifications(ctx context.Context, limit int) ([]*types.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, type, title, body, COALESCE(match_id::text, ''), data, sent, failed, invalid_tokens, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*types.Notification
	for rows.Next() {
		n := &types.Notification{}
		var data []byte
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.MatchID, &data, &n.Sent, &n.Failed, &n.InvalidTokens, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to decode notification data: %w", err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
