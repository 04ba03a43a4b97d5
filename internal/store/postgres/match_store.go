package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.MatchStore = (*MatchStore)(nil)

// MatchStore implements store.MatchStore on PostgreSQL.
type MatchStore struct {
	db DB
}

func NewMatchStore(db DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) CreateMatch(ctx context.Context, match *types.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.Status == "" {
		match.Status = types.MatchStatusScheduled
	}

	query := `
		INSERT INTO matches (id, title, location, scheduled_at, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		match.ID,
		match.Title,
		match.Location,
		match.ScheduledAt,
		match.TotalAmount,
		match.Status,
	).Scan(&match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (s *MatchStore) GetMatch(ctx context.Context, id string) (*types.Match, error) {
	query := `
		SELECT id, title, location, scheduled_at, total_amount, status, created_at, updated_at
		FROM matches
		WHERE id = $1`

	m := &types.Match{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.Location,
		&m.ScheduledAt,
		&m.TotalAmount,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *MatchStore) ReplaceShares(ctx context.Context, roster *types.Roster, shares []*types.Share) error {
	teams, err := json.Marshal(roster.Teams)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	return withTx(ctx, s.db, func(tx pgx.Tx) error {
		var matchID string
		err := tx.QueryRow(ctx, `SELECT id FROM matches WHERE id = $1 FOR UPDATE`, roster.MatchID).Scan(&matchID)
		if err != nil {
			return notFound(err)
		}

		var paid int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM shares WHERE match_id = $1 AND status = 'PAID'`,
			roster.MatchID).Scan(&paid)
		if err != nil {
			return fmt.Errorf("failed to count paid shares: %w", err)
		}
		if paid > 0 {
			return store.ErrAlreadyPaid
		}

		if _, err := tx.Exec(ctx, `DELETE FROM shares WHERE match_id = $1`, roster.MatchID); err != nil {
			return fmt.Errorf("failed to clear shares: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO match_rosters (match_id, total_amount, teams, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (match_id) DO UPDATE
			SET total_amount = EXCLUDED.total_amount, teams = EXCLUDED.teams, updated_at = NOW()`,
			roster.MatchID, roster.TotalAmount, teams)
		if err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}

		for _, share := range shares {
			if share.ID == "" {
				share.ID = uuid.NewString()
			}
			breakdown, err := json.Marshal(share.Breakdown)
			if err != nil {
				return fmt.Errorf("failed to encode breakdown: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO shares (id, match_id, member_id, team_id, amount, status, breakdown)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				share.ID, share.MatchID, share.MemberID, share.TeamID, share.Amount, share.Status, breakdown)
			if err != nil {
				if isUniqueViolation(err) {
					return store.ErrConflict
				}
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE matches SET total_amount = $2, updated_at = NOW() WHERE id = $1`,
			roster.MatchID, roster.TotalAmount)
		if err != nil {
			return fmt.Errorf("failed to update match total: %w", err)
		}
		return nil
	})
}

const shareColumns = `id, match_id, member_id, team_id, amount, status, breakdown, order_code, payment_reference, paid_at, created_at, updated_at`

func scanShare(row interface{ Scan(dest ...any) error }) (*types.Share, error) {
	sh := &types.Share{}
	var breakdown []byte
	err := row.Scan(
		&sh.ID,
		&sh.MatchID,
		&sh.MemberID,
		&sh.TeamID,
		&sh.Amount,
		&sh.Status,
		&breakdown,
		&sh.OrderCode,
		&sh.PaymentReference,
		&sh.PaidAt,
		&sh.CreatedAt,
		&sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 0 && string(breakdown) != "null" {
		sh.Breakdown = &types.ShareBreakdown{}
		if err := json.Unmarshal(breakdown, sh.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown: %w", err)
		}
	}
	return sh, nil
}

func (s *MatchStore) querySharesWith(ctx context.Context, query string, arg any) ([]*types.Share, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	var shares []*types.Share
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func (s *MatchStore) ListShares(ctx context.Context, matchID string) ([]*types.Share, error) {
	return s.querySharesWith(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE match_id = $1 ORDER BY created_at, id`,
		matchID)
}

// GetSharesByIDs returns the shares in the order the ids were given. Missing
// ids are skipped; callers compare lengths.
func (s *MatchStore) GetSharesByIDs(ctx context.Context, ids []string) ([]*types.Share, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.querySharesWith(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE id = ANY($1::uuid[])`,
		ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*types.Share, len(found))
	for _, sh := range found {
		byID[sh.ID] = sh
	}
	ordered := make([]*types.Share, 0, len(found))
	for _, id := range ids {
		if sh, ok := byID[id]; ok {
			ordered = append(ordered, sh)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (s *MatchStore) AddAttendance(ctx context.Context, matchID, memberID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO match_attendance (match_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (match_id, member_id) DO NOTHING`,
		matchID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to add attendance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MatchStore) RemoveAttendance(ctx context.Context, matchID, memberID string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM match_attendance WHERE match_id = $1 AND member_id = $2`,
		matchID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to remove attendance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MatchStore) ListAttendance(ctx context.Context, matchID string) ([]types.Attendance, error) {
	rows, err := s.db.Query(ctx, `
		SELECT match_id, member_id, created_at
		FROM match_attendance
		WHERE match_id = $1
		ORDER BY created_at`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var out []types.Attendance
	for rows.Next() {
		var a types.Attendance
		if err := rows.Scan(&a.MatchID, &a.MemberID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListRatingSummaries averages member ratings per player. Admin ratings are
// kept apart and not included.
func (s *MatchStore) ListRatingSummaries(ctx context.Context, matchID string) ([]types.RatingSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT player_id, AVG(score)::float8, COUNT(*)
		FROM match_ratings
		WHERE match_id = $1 AND is_admin = FALSE
		GROUP BY player_id
		ORDER BY player_id`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	defer rows.Close()

	var out []types.RatingSummary
	for rows.Next() {
		var r types.RatingSummary
		if err := rows.Scan(&r.PlayerID, &r.Average, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan rating summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
