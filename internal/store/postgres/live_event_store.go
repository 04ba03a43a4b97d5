package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.LiveEventStore = (*LiveEventStore)(nil)

// LiveEventStore implements store.LiveEventStore on PostgreSQL.
type LiveEventStore struct {
	db DB
}

func NewLiveEventStore(db DB) *LiveEventStore {
	return &LiveEventStore{db: db}
}

func (s *LiveEventStore) CreateLiveEvent(ctx context.Context, event *types.LiveEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var memberID *string
	if event.MemberID != "" {
		memberID = &event.MemberID
	}

	query := `
		INSERT INTO match_live_events (id, match_id, member_id, type, minute, second, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query,
		event.ID,
		event.MatchID,
		memberID,
		event.Type,
		event.Minute,
		event.Second,
		event.Note,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create live event: %w", err)
	}
	return nil
}

func (s *LiveEventStore) DeleteLiveEvent(ctx context.Context, matchID, eventID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM match_live_events WHERE id = $1 AND match_id = $2`,
		eventID, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete live event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *LiveEventStore) ListLiveEvents(ctx context.Context, matchID string) ([]types.LiveEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, match_id, COALESCE(member_id::text, ''), type, minute, second, note, created_at
		FROM match_live_events
		WHERE match_id = $1
		ORDER BY created_at, id`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list live events: %w", err)
	}
	defer rows.Close()

	var events []types.LiveEvent
	for rows.Next() {
		var e types.LiveEvent
		if err := rows.Scan(&e.ID, &e.MatchID, &e.MemberID, &e.Type, &e.Minute, &e.Second, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan live event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
