package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shareCols = []string{"id", "match_id", "member_id", "team_id", "amount", "status", "breakdown", "order_code", "payment_reference", "paid_at", "created_at", "updated_at"}

func testRoster() (*types.Roster, []*types.Share) {
	roster := &types.Roster{
		MatchID:     "match-1",
		TotalAmount: 600000,
		Teams: []types.Team{
			{ID: "A", Percent: 100, Members: []types.TeamMember{{MemberID: "m1"}, {MemberID: "m2"}}},
		},
	}
	shares := []*types.Share{
		{ID: "s1", MatchID: "match-1", MemberID: "m1", TeamID: "A", Amount: 300000, Status: types.ShareStatusPending,
			Breakdown: &types.ShareBreakdown{TeamPercent: 100, TotalAmount: 600000}},
		{ID: "s2", MatchID: "match-1", MemberID: "m2", TeamID: "A", Amount: 300000, Status: types.ShareStatusPending,
			Breakdown: &types.ShareBreakdown{TeamPercent: 100, TotalAmount: 600000}},
	}
	return roster, shares
}

func TestMatchStore_ReplaceShares(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces roster and shares", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMatchStore(mock)
		roster, shares := testRoster()
		teams, _ := json.Marshal(roster.Teams)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM matches").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("match-1"))
		mock.ExpectQuery("SELECT COUNT").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("DELETE FROM shares").WithArgs("match-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec("INSERT INTO match_rosters").WithArgs("match-1", int64(600000), teams).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		for _, sh := range shares {
			mock.ExpectExec("INSERT INTO shares").
				WithArgs(sh.ID, "match-1", sh.MemberID, "A", int64(300000), types.ShareStatusPending, pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mock.ExpectExec("UPDATE matches SET total_amount").WithArgs("match-1", int64(600000)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		require.NoError(t, s.ReplaceShares(ctx, roster, shares))
	})

	t.Run("refuses when a share is paid", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMatchStore(mock)
		roster, shares := testRoster()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM matches").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("match-1"))
		mock.ExpectQuery("SELECT COUNT").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := s.ReplaceShares(ctx, roster, shares)
		assert.ErrorIs(t, err, store.ErrAlreadyPaid)
	})

	t.Run("unknown match", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMatchStore(mock)
		roster, shares := testRoster()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM matches").WithArgs("match-1").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		err := s.ReplaceShares(ctx, roster, shares)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		mock := newMockDB(t)
		s := NewMatchStore(mock)
		roster, shares := testRoster()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM matches").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("match-1"))
		mock.ExpectQuery("SELECT COUNT").WithArgs("match-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("DELETE FROM shares").WithArgs("match-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec("INSERT INTO match_rosters").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO shares").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := s.ReplaceShares(ctx, roster, shares)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestMatchStore_GetSharesByIDs(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewMatchStore(mock)
	now := time.Now()
	orderCode := int64(17290000001234)

	ids := []string{"s2", "s1", "missing"}
	mock.ExpectQuery("FROM shares WHERE id = ANY").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows(shareCols).
			AddRow("s1", "match-1", "m1", "A", int64(100), types.ShareStatusPending,
				[]byte(`{"teamPercent":50,"totalAmount":200,"isFixedMember":false}`), nil, "", nil, now, now).
			AddRow("s2", "match-1", "m2", "A", int64(100), types.ShareStatusPaid,
				nil, &orderCode, "FT123", &now, now, now))

	shares, err := s.GetSharesByIDs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, "s2", shares[0].ID)
	assert.Equal(t, types.ShareStatusPaid, shares[0].Status)
	require.NotNil(t, shares[0].OrderCode)
	assert.Equal(t, orderCode, *shares[0].OrderCode)
	assert.Nil(t, shares[0].Breakdown)

	assert.Equal(t, "s1", shares[1].ID)
	require.NotNil(t, shares[1].Breakdown)
	assert.Equal(t, 50.0, shares[1].Breakdown.TeamPercent)
	assert.Nil(t, shares[1].PaidAt)
}

func TestMatchStore_Attendance(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewMatchStore(mock)

	mock.ExpectExec("INSERT INTO match_attendance").WithArgs("match-1", "m1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO match_attendance").WithArgs("match-1", "m1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec("DELETE FROM match_attendance").WithArgs("match-1", "m1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	created, err := s.AddAttendance(ctx, "match-1", "m1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.AddAttendance(ctx, "match-1", "m1")
	require.NoError(t, err)
	assert.False(t, created)

	removed, err := s.RemoveAttendance(ctx, "match-1", "m1")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestMatchStore_ListRatingSummaries(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewMatchStore(mock)

	mock.ExpectQuery("FROM match_ratings").WithArgs("match-1").
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "avg", "count"}).
			AddRow("m1", 8.5, 2).
			AddRow("m2", 6.0, 1))

	got, err := s.ListRatingSummaries(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, []types.RatingSummary{
		{PlayerID: "m1", Average: 8.5, Count: 2},
		{PlayerID: "m2", Average: 6.0, Count: 1},
	}, got)
}
