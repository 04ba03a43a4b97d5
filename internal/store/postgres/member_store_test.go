package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberCols = []string{"id", "name", "nickname", "email", "avatar_url", "is_exempt_from_payment", "is_creditor", "created_at", "updated_at"}

func TestMemberStore_CreateMember(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMemberStore(mock)
		now := time.Now()

		mock.ExpectQuery("INSERT INTO members").
			WithArgs(pgxmock.AnyArg(), "Minh", "Bom", "minh@example.com", false, true).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		m := &types.Member{Name: "Minh", Nickname: "Bom", Email: "minh@example.com", IsCreditor: true}
		require.NoError(t, s.CreateMember(ctx, m))
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, now, m.CreatedAt)
	})

	t.Run("duplicate maps to conflict", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMemberStore(mock)

		mock.ExpectQuery("INSERT INTO members").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := s.CreateMember(ctx, &types.Member{ID: "m1", Name: "Minh"})
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestMemberStore_GetMember(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMemberStore(mock)
		now := time.Now()

		mock.ExpectQuery("FROM members WHERE id = \\$1").
			WithArgs("m1").
			WillReturnRows(pgxmock.NewRows(memberCols).
				AddRow("m1", "Minh", "Bom", "", "", true, false, now, now))

		m, err := s.GetMember(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "Bom", m.DisplayName())
		assert.True(t, m.IsExemptFromPayment)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMemberStore(mock)

		mock.ExpectQuery("FROM members WHERE id = \\$1").
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetMember(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMemberStore_GetMembersByIDs(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewMemberStore(mock)
	now := time.Now()

	ids := []string{"m1", "m2", "ghost"}
	mock.ExpectQuery("FROM members WHERE id = ANY").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows(memberCols).
			AddRow("m1", "A", "", "", "", false, false, now, now).
			AddRow("m2", "B", "", "", "", true, false, now, now))

	got, err := s.GetMembersByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got["m2"].IsExemptFromPayment)
	assert.NotContains(t, got, "ghost")

	empty, err := s.GetMembersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemberStore_SetAvatarURL(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewMemberStore(mock)

	mock.ExpectExec("UPDATE members SET avatar_url").
		WithArgs("m1", "https://cdn.example.com/a.png").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE members SET avatar_url").
		WithArgs("ghost", "https://cdn.example.com/b.png").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, s.SetAvatarURL(ctx, "m1", "https://cdn.example.com/a.png"))
	assert.ErrorIs(t, s.SetAvatarURL(ctx, "ghost", "https://cdn.example.com/b.png"), store.ErrNotFound)
}
