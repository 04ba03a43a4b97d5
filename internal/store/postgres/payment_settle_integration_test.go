//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchfund/matchfund-backend/db"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SettleIntegrationSuite runs settlement against a real PostgreSQL so row
// locking and the rating uniqueness constraint are exercised.
type SettleIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgresContainer.PostgresContainer
	pool        *pgxpool.Pool

	members  *MemberStore
	matches  *MatchStore
	payments *PaymentStore

	payer  *types.Member
	player *types.Member
	match  *types.Match
}

func TestSettleIntegration(t *testing.T) {
	suite.Run(t, new(SettleIntegrationSuite))
}

func (s *SettleIntegrationSuite) SetupSuite() {
	logger.IsTest = true
	s.ctx = context.Background()

	pgContainer, err := postgresContainer.Run(s.ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("matchfund"),
		postgresContainer.WithUsername("matchfund"),
		postgresContainer.WithPassword("matchfund"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(db.RunMigrations(connStr))

	s.pool, err = pgxpool.New(s.ctx, connStr)
	s.Require().NoError(err)

	s.members = NewMemberStore(s.pool)
	s.matches = NewMatchStore(s.pool)
	s.payments = NewPaymentStore(s.pool)
}

func (s *SettleIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *SettleIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE payment_requests, match_ratings, shares, match_rosters, matches, members CASCADE`)
	s.Require().NoError(err)

	s.payer = &types.Member{ID: uuid.NewString(), Name: "Nguyen Van Tien"}
	s.player = &types.Member{ID: uuid.NewString(), Name: "Tran Minh", Nickname: "Minh Thu Mon"}
	s.Require().NoError(s.members.CreateMember(s.ctx, s.payer))
	s.Require().NoError(s.members.CreateMember(s.ctx, s.player))

	s.match = &types.Match{
		Title:       "Thursday five-a-side",
		Location:    "San Chao Lua",
		ScheduledAt: time.Now().Add(24 * time.Hour).UTC(),
	}
	s.Require().NoError(s.matches.CreateMatch(s.ctx, s.match))
}

func (s *SettleIntegrationSuite) finalize(amounts map[string]int64) []*types.Share {
	var total int64
	shares := make([]*types.Share, 0, len(amounts))
	for memberID, amount := range amounts {
		total += amount
		shares = append(shares, &types.Share{
			MatchID:  s.match.ID,
			MemberID: memberID,
			TeamID:   "A",
			Amount:   amount,
			Status:   types.ShareStatusPending,
		})
	}
	roster := &types.Roster{MatchID: s.match.ID, TotalAmount: total, Teams: []types.Team{}}
	s.Require().NoError(s.matches.ReplaceShares(s.ctx, roster, shares))
	return shares
}

func (s *SettleIntegrationSuite) createRequest(orderCode int64, shares []*types.Share, ratings []types.RatingInput) {
	ids := make([]string, len(shares))
	var amount int64
	for i, sh := range shares {
		ids[i] = sh.ID
		amount += sh.Amount
	}
	s.Require().NoError(s.payments.CreatePaymentRequest(s.ctx, &types.PaymentRequest{
		OrderCode: orderCode,
		MemberID:  s.payer.ID,
		MatchID:   s.match.ID,
		ShareIDs:  ids,
		Ratings:   ratings,
		Amount:    amount,
	}))
}

func (s *SettleIntegrationSuite) ratingCount() int {
	var n int
	s.Require().NoError(s.pool.QueryRow(s.ctx,
		`SELECT COUNT(*) FROM match_ratings WHERE match_id = $1`, s.match.ID).Scan(&n))
	return n
}

func (s *SettleIntegrationSuite) TestSettleMarksSharesAndWritesRatings() {
	shares := s.finalize(map[string]int64{s.payer.ID: 60000, s.player.ID: 60000})
	s.createRequest(1001, shares, []types.RatingInput{{PlayerID: s.player.ID, Score: 8, Comment: "clean sheet"}})

	paidAt := time.Now().UTC().Truncate(time.Second)
	result, err := s.payments.Settle(s.ctx, 1001, types.SettlementMeta{Reference: "FT123", PaidAt: paidAt})
	s.Require().NoError(err)
	s.True(result.Found)
	s.False(result.AlreadySettled)
	s.Equal(int64(2), result.SharesPaid)
	s.Equal(int64(1), result.RatingsWritten)
	s.Equal(int64(120000), result.Amount)

	stored, err := s.matches.ListShares(s.ctx, s.match.ID)
	s.Require().NoError(err)
	for _, sh := range stored {
		s.Equal(types.ShareStatusPaid, sh.Status)
		s.Equal("FT123", sh.PaymentReference)
		s.Require().NotNil(sh.OrderCode)
		s.Equal(int64(1001), *sh.OrderCode)
	}

	pr, err := s.payments.GetPaymentRequest(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal(types.PaymentRequestPaid, pr.Status)
	s.Equal(1, s.ratingCount())
}

func (s *SettleIntegrationSuite) TestSettleIsIdempotent() {
	shares := s.finalize(map[string]int64{s.payer.ID: 50000})
	s.createRequest(2002, shares, []types.RatingInput{{PlayerID: s.player.ID, Score: 7}})

	meta := types.SettlementMeta{Reference: "FT456", PaidAt: time.Now().UTC()}
	first, err := s.payments.Settle(s.ctx, 2002, meta)
	s.Require().NoError(err)
	s.False(first.AlreadySettled)

	second, err := s.payments.Settle(s.ctx, 2002, meta)
	s.Require().NoError(err)
	s.True(second.AlreadySettled)
	s.Zero(second.SharesPaid)
	s.Equal(1, s.ratingCount())
}

func (s *SettleIntegrationSuite) TestConcurrentWebhooksSettleOnce() {
	shares := s.finalize(map[string]int64{s.payer.ID: 40000, s.player.ID: 40000})
	s.createRequest(3003, shares, []types.RatingInput{{PlayerID: s.player.ID, Score: 9}})

	const deliveries = 5
	results := make([]*types.Settlement, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.payments.Settle(s.ctx, 3003,
				types.SettlementMeta{Reference: "FT789", PaidAt: time.Now().UTC()})
		}(i)
	}
	wg.Wait()

	fresh := 0
	var paid int64
	for i := range results {
		s.Require().NoError(errs[i])
		if !results[i].AlreadySettled {
			fresh++
		}
		paid += results[i].SharesPaid
	}
	s.Equal(1, fresh)
	s.Equal(int64(2), paid)
	s.Equal(1, s.ratingCount())
}

func (s *SettleIntegrationSuite) TestSettleUnknownOrder() {
	result, err := s.payments.Settle(s.ctx, 9999, types.SettlementMeta{Reference: "X", PaidAt: time.Now()})
	s.Require().NoError(err)
	s.False(result.Found)
}
