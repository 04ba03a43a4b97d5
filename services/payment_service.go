package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/config"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/payos"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	minRatingScore = 1
	maxRatingScore = 10
)

// PaymentGateway is the slice of the payOS client the payment flow uses.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req payos.CheckoutRequest) (*payos.PaymentLink, error)
	VerifyWebhook(body []byte) (*payos.WebhookData, error)
}

// Webhook outcomes, also used as metric labels.
const (
	WebhookSettled          = "settled"
	WebhookAlreadySettled   = "already_settled"
	WebhookUnknownOrder     = "unknown_order"
	WebhookNotPaid          = "not_paid"
	WebhookInvalidSignature = "invalid_signature"
	WebhookFailed           = "failed"
)

type paymentMetrics struct {
	links    *prometheus.CounterVec
	webhooks *prometheus.CounterVec
	amount   prometheus.Counter
}

var (
	paymentMetricsInstance *paymentMetrics
	paymentMetricsOnce     sync.Once
	paymentMetricsRegistry = prometheus.DefaultRegisterer
)

func newPaymentMetrics() *paymentMetrics {
	paymentMetricsOnce.Do(func() {
		factory := promauto.With(paymentMetricsRegistry)
		paymentMetricsInstance = &paymentMetrics{
			links: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "matchfund_payment_links_total",
				Help: "Payment link requests by result",
			}, []string{"result"}),
			webhooks: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "matchfund_payment_webhooks_total",
				Help: "Gateway notifications by outcome",
			}, []string{"outcome"}),
			amount: factory.NewCounter(prometheus.CounterOpts{
				Name: "matchfund_payment_settled_amount_total",
				Help: "Sum of settled amounts in VND",
			}),
		}
	})
	return paymentMetricsInstance
}

func resetPaymentMetricsForTesting() {
	paymentMetricsRegistry = prometheus.NewRegistry()
	paymentMetricsInstance = nil
	paymentMetricsOnce = sync.Once{}
}

// NewOrderCode returns a millisecond timestamp with three random digits
// appended. It stays below 2^53 so browsers can hold it as a number.
func NewOrderCode() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int64N(1000)
}

type PaymentService struct {
	gateway   PaymentGateway
	payments  store.PaymentStore
	matches   store.MatchStore
	members   store.MemberStore
	receipts  ReceiptSender
	jobs      JobSubmitter
	returnURL string
	cancelURL string
	orderCode func() int64
	now       func() time.Time
	metrics   *paymentMetrics
	log       *zap.SugaredLogger
}

// PaymentServiceDeps groups the collaborators of PaymentService. Receipts
// and Jobs may be nil, which disables receipt emails.
type PaymentServiceDeps struct {
	Gateway  PaymentGateway
	Payments store.PaymentStore
	Matches  store.MatchStore
	Members  store.MemberStore
	Receipts ReceiptSender
	Jobs     JobSubmitter
}

func NewPaymentService(deps PaymentServiceDeps, server config.ServerConfig, payOS config.PayOSConfig) *PaymentService {
	base := strings.TrimRight(server.FrontendURL, "/")
	return &PaymentService{
		gateway:   deps.Gateway,
		payments:  deps.Payments,
		matches:   deps.Matches,
		members:   deps.Members,
		receipts:  deps.Receipts,
		jobs:      deps.Jobs,
		returnURL: base + payOS.ReturnPath,
		cancelURL: base + payOS.CancelPath,
		orderCode: NewOrderCode,
		now:       time.Now,
		metrics:   newPaymentMetrics(),
		log:       logger.GetLogger().Named("payments"),
	}
}

// CreatePaymentLink opens a checkout covering the pending shares among
// req.ShareIDs. Ratings ride along and are written when the payment settles.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, req types.CreatePaymentLinkRequest) (*types.PaymentLinkResponse, error) {
	resp, err := s.createPaymentLink(ctx, req)
	if err != nil {
		result := "error"
		if appErr, ok := apperrors.As(err); ok {
			result = strings.ToLower(string(appErr.Type))
		}
		s.metrics.links.WithLabelValues(result).Inc()
		return nil, err
	}
	s.metrics.links.WithLabelValues("created").Inc()
	return resp, nil
}

func (s *PaymentService) createPaymentLink(ctx context.Context, req types.CreatePaymentLinkRequest) (*types.PaymentLinkResponse, error) {
	shareIDs, err := validatePaymentLinkRequest(req)
	if err != nil {
		return nil, err
	}

	member, err := s.members.GetMember(ctx, req.MemberID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Member", req.MemberID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	shares, err := s.matches.GetSharesByIDs(ctx, shareIDs)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(shares) != len(shareIDs) {
		found := make(map[string]struct{}, len(shares))
		for _, sh := range shares {
			found[sh.ID] = struct{}{}
		}
		for _, id := range shareIDs {
			if _, ok := found[id]; !ok {
				return nil, apperrors.NotFound("Share", id)
			}
		}
	}

	var (
		pending  []string
		amount   int64
		matchIDs = make(map[string]struct{})
	)
	for _, sh := range shares {
		if sh.Status != types.ShareStatusPending {
			s.log.Infow("Skipping share that is not pending", "shareID", sh.ID, "status", sh.Status)
			continue
		}
		pending = append(pending, sh.ID)
		amount += sh.Amount
		matchIDs[sh.MatchID] = struct{}{}
	}
	if len(pending) == 0 {
		return nil, apperrors.ValidationFailed("Nothing to pay", "none of the shares is pending")
	}
	if amount <= 0 {
		return nil, apperrors.ValidationFailed("Nothing to pay", "pending shares add up to zero")
	}
	if len(req.Ratings) > 0 && len(matchIDs) > 1 {
		return nil, apperrors.ValidationFailed("Ratings need a single match", "shares with ratings must all belong to one match")
	}

	var matchID string
	if len(matchIDs) == 1 {
		for id := range matchIDs {
			matchID = id
		}
	}

	orderCode := s.orderCode()
	link, err := s.gateway.CreatePaymentLink(ctx, payos.CheckoutRequest{
		OrderCode:   orderCode,
		Amount:      amount,
		Description: "San " + member.DisplayName(),
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
		BuyerName:   member.Name,
		BuyerEmail:  member.Email,
		Items: []payos.Item{{
			Name:     fmt.Sprintf("%d match share(s)", len(pending)),
			Quantity: 1,
			Price:    amount,
		}},
	})
	if err != nil {
		return nil, apperrors.NewPaymentGatewayError(err)
	}

	pr := &types.PaymentRequest{
		OrderCode:     orderCode,
		MemberID:      member.ID,
		MatchID:       matchID,
		ShareIDs:      pending,
		Ratings:       req.Ratings,
		Amount:        amount,
		Status:        types.PaymentRequestPending,
		CheckoutURL:   link.CheckoutURL,
		PaymentLinkID: link.PaymentLinkID,
	}
	if err := s.payments.CreatePaymentRequest(ctx, pr); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewConflictError("Order code already used", fmt.Sprintf("order %d", orderCode))
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	s.log.Infow("Payment link created",
		"orderCode", orderCode,
		"memberID", member.ID,
		"shares", len(pending),
		"amount", amount,
		"ratings", len(req.Ratings))

	return &types.PaymentLinkResponse{
		CheckoutURL:   link.CheckoutURL,
		PaymentLinkID: link.PaymentLinkID,
		OrderCode:     orderCode,
		Amount:        amount,
		QRCode:        link.QRCode,
		Status:        link.Status,
	}, nil
}

// validatePaymentLinkRequest checks ids and ratings and returns the share ids
// with duplicates removed, in request order.
func validatePaymentLinkRequest(req types.CreatePaymentLinkRequest) ([]string, error) {
	if req.MemberID == "" {
		return nil, apperrors.ValidationFailed("Missing member", "memberId is required")
	}
	if _, err := uuid.Parse(req.MemberID); err != nil {
		return nil, apperrors.ValidationFailed("Invalid member id", req.MemberID)
	}
	if len(req.ShareIDs) == 0 {
		return nil, apperrors.ValidationFailed("Missing shares", "shareIds must not be empty")
	}

	seen := make(map[string]struct{}, len(req.ShareIDs))
	ids := make([]string, 0, len(req.ShareIDs))
	for _, id := range req.ShareIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.ValidationFailed("Invalid share id", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	rated := make(map[string]struct{}, len(req.Ratings))
	for _, r := range req.Ratings {
		if _, err := uuid.Parse(r.PlayerID); err != nil {
			return nil, apperrors.ValidationFailed("Invalid rating", "playerId must be a member id")
		}
		if r.Score < minRatingScore || r.Score > maxRatingScore {
			return nil, apperrors.ValidationFailed("Invalid rating",
				fmt.Sprintf("score %.1f for %s is outside [%d, %d]", r.Score, r.PlayerID, minRatingScore, maxRatingScore))
		}
		if _, dup := rated[r.PlayerID]; dup {
			return nil, apperrors.ValidationFailed("Invalid rating", "player "+r.PlayerID+" rated twice")
		}
		rated[r.PlayerID] = struct{}{}
	}
	return ids, nil
}

// HandleWebhook processes one gateway notification and returns its outcome.
// Only a failed settlement transaction is reported as an error; everything
// else is logged and acknowledged so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte) (string, error) {
	outcome, err := s.handleWebhook(ctx, body)
	s.metrics.webhooks.WithLabelValues(outcome).Inc()
	return outcome, err
}

func (s *PaymentService) handleWebhook(ctx context.Context, body []byte) (string, error) {
	data, err := s.gateway.VerifyWebhook(body)
	if err != nil {
		s.log.Warnw("Rejected payment webhook", "error", err)
		return WebhookInvalidSignature, nil
	}
	if !data.Paid() {
		s.log.Infow("Payment webhook without success code", "orderCode", data.OrderCode, "code", data.Code, "desc", data.Desc)
		return WebhookNotPaid, nil
	}

	meta := types.SettlementMeta{
		Reference: data.Reference,
		PaidAt:    data.PaidAt(s.now().UTC()),
	}
	settlement, err := s.payments.Settle(ctx, data.OrderCode, meta)
	if err != nil {
		s.log.Errorw("Settlement failed", "orderCode", data.OrderCode, "error", err)
		return WebhookFailed, apperrors.NewDatabaseError(err)
	}

	switch {
	case !settlement.Found:
		s.log.Infow("Payment webhook for unknown order code", "orderCode", data.OrderCode)
		return WebhookUnknownOrder, nil
	case settlement.AlreadySettled:
		s.log.Infow("Payment already settled", "orderCode", data.OrderCode)
		return WebhookAlreadySettled, nil
	}

	s.metrics.amount.Add(float64(settlement.Amount))
	s.log.Infow("Payment settled",
		"orderCode", data.OrderCode,
		"memberID", settlement.MemberID,
		"sharesPaid", settlement.SharesPaid,
		"ratingsWritten", settlement.RatingsWritten,
		"amount", settlement.Amount)

	s.queueReceipt(settlement, meta)
	return WebhookSettled, nil
}

// queueReceipt hands the receipt email to the worker pool. The member is
// looked up inside the job so the webhook answer is not delayed.
func (s *PaymentService) queueReceipt(settlement *types.Settlement, meta types.SettlementMeta) {
	if s.receipts == nil || s.jobs == nil {
		return
	}
	job := Job{
		Kind:    "receipt",
		Name:    fmt.Sprintf("receipt:%d", settlement.OrderCode),
		Timeout: 30 * time.Second,
		Execute: func(ctx context.Context) error {
			member, err := s.members.GetMember(ctx, settlement.MemberID)
			if err != nil {
				return fmt.Errorf("failed to load member for receipt: %w", err)
			}
			if member.Email == "" {
				return nil
			}
			return s.receipts.SendPaymentReceipt(ctx, types.PaymentReceipt{
				To:         member.Email,
				MemberName: member.DisplayName(),
				Amount:     settlement.Amount,
				OrderCode:  settlement.OrderCode,
				Reference:  meta.Reference,
				SharesPaid: settlement.SharesPaid,
				PaidAt:     meta.PaidAt,
			})
		},
	}
	if !s.jobs.Submit(job) {
		s.log.Warnw("Receipt email dropped", "orderCode", settlement.OrderCode)
	}
}
