// Package payos is a small client for the payOS payment gateway: creating
// payment links and verifying signed webhook notifications.
package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matchfund/matchfund-backend/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api-merchant.payos.vn"

	// CodeSuccess is the gateway's "00" result code.
	CodeSuccess = "00"

	// MaxDescriptionLength is the longest description payOS accepts for
	// accounts not linked through the merchant portal.
	MaxDescriptionLength = 25
)

// ErrInvalidSignature is returned when a webhook or response signature does
// not match the checksum key.
var ErrInvalidSignature = errors.New("payos: invalid signature")

// GatewayError is a non-success answer from the gateway.
type GatewayError struct {
	StatusCode int
	Code       string
	Desc       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payos: gateway returned code %s (http %d): %s", e.Code, e.StatusCode, e.Desc)
}

type Config struct {
	ClientID    string
	APIKey      string
	ChecksumKey string
	BaseURL     string
	Timeout     time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient builds a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		log:        logger.GetLogger().Named("payos"),
	}
}

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// CheckoutRequest describes a payment link to create.
type CheckoutRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
	CancelURL   string
	ReturnURL   string
	BuyerName   string
	BuyerEmail  string
	Items       []Item
	ExpiredAt   *time.Time
}

type checkoutBody struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	BuyerName   string `json:"buyerName,omitempty"`
	BuyerEmail  string `json:"buyerEmail,omitempty"`
	Items       []Item `json:"items,omitempty"`
	ExpiredAt   *int64 `json:"expiredAt,omitempty"`
	Signature   string `json:"signature"`
}

// PaymentLink is the data block of a successful create call.
type PaymentLink struct {
	Bin           string `json:"bin"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	OrderCode     int64  `json:"orderCode"`
	Currency      string `json:"currency"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

type envelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// CreatePaymentLink registers a checkout with the gateway.
func (c *Client) CreatePaymentLink(ctx context.Context, req CheckoutRequest) (*PaymentLink, error) {
	req.Description = TruncateDescription(req.Description)

	body := checkoutBody{
		OrderCode:   req.OrderCode,
		Amount:      req.Amount,
		Description: req.Description,
		CancelURL:   req.CancelURL,
		ReturnURL:   req.ReturnURL,
		BuyerName:   req.BuyerName,
		BuyerEmail:  req.BuyerEmail,
		Items:       req.Items,
		Signature:   c.SignCheckout(req),
	}
	if req.ExpiredAt != nil {
		unix := req.ExpiredAt.Unix()
		body.ExpiredAt = &unix
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payos: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/payment-requests", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("payos: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.cfg.ClientID)
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payos: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payos: failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Code: "", Desc: "unreadable response"}
	}
	if resp.StatusCode != http.StatusOK || env.Code != CodeSuccess || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Code: env.Code, Desc: env.Desc}
	}

	var link PaymentLink
	if err := json.Unmarshal(env.Data, &link); err != nil {
		return nil, fmt.Errorf("payos: failed to decode payment link: %w", err)
	}

	c.log.Infow("Payment link created",
		"orderCode", link.OrderCode,
		"amount", link.Amount,
		"paymentLinkId", link.PaymentLinkID,
		"duration", time.Since(start))
	return &link, nil
}

// TruncateDescription cuts s to MaxDescriptionLength runes.
func TruncateDescription(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > MaxDescriptionLength {
		r = r[:MaxDescriptionLength]
	}
	return string(r)
}
