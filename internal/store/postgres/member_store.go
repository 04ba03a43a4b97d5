package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.MemberStore = (*MemberStore)(nil)

// MemberStore implements store.MemberStore on PostgreSQL.
type MemberStore struct {
	db DB
}

func NewMemberStore(db DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberColumns = `id, name, nickname, email, avatar_url, is_exempt_from_payment, is_creditor, created_at, updated_at`

func scanMember(row interface{ Scan(dest ...any) error }) (*types.Member, error) {
	m := &types.Member{}
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Nickname,
		&m.Email,
		&m.AvatarURL,
		&m.IsExemptFromPayment,
		&m.IsCreditor,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemberStore) CreateMember(ctx context.Context, member *types.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}

	query := `
		INSERT INTO members (id, name, nickname, email, is_exempt_from_payment, is_creditor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.Nickname,
		member.Email,
		member.IsExemptFromPayment,
		member.IsCreditor,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (s *MemberStore) GetMember(ctx context.Context, id string) (*types.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *MemberStore) ListMembers(ctx context.Context) ([]*types.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMembersByIDs returns the members found, keyed by id. Unknown ids are
// simply absent from the map.
func (s *MemberStore) GetMembersByIDs(ctx context.Context, ids []string) (map[string]*types.Member, error) {
	result := make(map[string]*types.Member, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ANY($1::uuid[])`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		result[m.ID] = m
	}
	return result, rows.Err()
}

func (s *MemberStore) UpdateMemberFlags(ctx context.Context, id string, update types.MemberFlagsUpdate) (*types.Member, error) {
	query := `
		UPDATE members SET
			is_exempt_from_payment = COALESCE($2, is_exempt_from_payment),
			is_creditor = COALESCE($3, is_creditor),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + memberColumns

	m, err := scanMember(s.db.QueryRow(ctx, query, id, update.IsExemptFromPayment, update.IsCreditor))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *MemberStore) SetAvatarURL(ctx context.Context, id, avatarURL string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE members SET avatar_url = $2, updated_at = NOW() WHERE id = $1`,
		id, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to set avatar url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
