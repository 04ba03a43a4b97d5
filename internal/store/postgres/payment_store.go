package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.PaymentStore = (*PaymentStore)(nil)

// PaymentStore implements store.PaymentStore on PostgreSQL.
type PaymentStore struct {
	db DB
}

func NewPaymentStore(db DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) CreatePaymentRequest(ctx context.Context, req *types.PaymentRequest) error {
	ratings, err := json.Marshal(req.Ratings)
	if err != nil {
		return fmt.Errorf("failed to encode ratings: %w", err)
	}
	if req.Status == "" {
		req.Status = types.PaymentRequestPending
	}

	var matchID *string
	if req.MatchID != "" {
		matchID = &req.MatchID
	}

	query := `
		INSERT INTO payment_requests
			(order_code, member_id, match_id, share_ids, ratings, amount, status, checkout_url, payment_link_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err = s.db.QueryRow(ctx, query,
		req.OrderCode,
		req.MemberID,
		matchID,
		req.ShareIDs,
		ratings,
		req.Amount,
		req.Status,
		req.CheckoutURL,
		req.PaymentLinkID,
	).Scan(&req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to create payment request: %w", err)
	}
	return nil
}

const paymentRequestColumns = `order_code, member_id, COALESCE(match_id::text, ''), share_ids, ratings, amount, status,
	checkout_url, payment_link_id, reference, paid_at, created_at`

func (s *PaymentStore) GetPaymentRequest(ctx context.Context, orderCode int64) (*types.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE order_code = $1`

	pr, err := scanPaymentRequest(s.db.QueryRow(ctx, query, orderCode))
	if err != nil {
		return nil, notFound(err)
	}
	return pr, nil
}

func scanPaymentRequest(row pgx.Row) (*types.PaymentRequest, error) {
	pr := &types.PaymentRequest{}
	var ratings []byte
	err := row.Scan(
		&pr.OrderCode,
		&pr.MemberID,
		&pr.MatchID,
		&pr.ShareIDs,
		&ratings,
		&pr.Amount,
		&pr.Status,
		&pr.CheckoutURL,
		&pr.PaymentLinkID,
		&pr.Reference,
		&pr.PaidAt,
		&pr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &pr.Ratings); err != nil {
			return nil, fmt.Errorf("failed to decode ratings: %w", err)
		}
	}
	return pr, nil
}

// Settle applies a successful gateway notification. The request row is
// locked for the whole transaction so redelivered webhooks serialize.
func (s *PaymentStore) Settle(ctx context.Context, orderCode int64, meta types.SettlementMeta) (*types.Settlement, error) {
	log := logger.GetLogger()
	result := &types.Settlement{OrderCode: orderCode}

	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE order_code = $1 FOR UPDATE`
		pr, err := scanPaymentRequest(tx.QueryRow(ctx, query, orderCode))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock payment request: %w", err)
		}

		result.Found = true
		result.MemberID = pr.MemberID
		result.Amount = pr.Amount
		if pr.Status == types.PaymentRequestPaid {
			result.AlreadySettled = true
			return nil
		}

		tag, err := tx.Exec(ctx, `
			UPDATE shares
			SET status = 'PAID', paid_at = $2, order_code = $3, payment_reference = $4, updated_at = NOW()
			WHERE id = ANY($1::uuid[]) AND status = 'PENDING'`,
			pr.ShareIDs, meta.PaidAt, orderCode, meta.Reference)
		if err != nil {
			return fmt.Errorf("failed to mark shares paid: %w", err)
		}
		result.SharesPaid = tag.RowsAffected()
		if skipped := int64(len(pr.ShareIDs)) - result.SharesPaid; skipped > 0 {
			log.Infow("Some shares were not pending at settlement", "orderCode", orderCode, "skipped", skipped)
		}

		if pr.MatchID != "" {
			for _, r := range pr.Ratings {
				tag, err := tx.Exec(ctx, `
					INSERT INTO match_ratings (id, match_id, rater_id, player_id, score, comment, is_admin)
					VALUES ($1, $2, $3, $4, $5, $6, FALSE)
					ON CONFLICT (match_id, rater_id, player_id, is_admin) DO NOTHING`,
					uuid.NewString(), pr.MatchID, pr.MemberID, r.PlayerID, r.Score, r.Comment)
				if err != nil {
					return fmt.Errorf("failed to write rating: %w", err)
				}
				if tag.RowsAffected() == 0 {
					log.Infow("Duplicate rating ignored", "orderCode", orderCode, "playerID", r.PlayerID)
				}
				result.RatingsWritten += tag.RowsAffected()
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE payment_requests
			SET status = 'PAID', paid_at = $2, reference = $3
			WHERE order_code = $1`,
			orderCode, meta.PaidAt, meta.Reference)
		if err != nil {
			return fmt.Errorf("failed to mark payment request paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
