package types

import "time"

type PaymentRequestStatus string

const (
	PaymentRequestPending PaymentRequestStatus = "PENDING"
	PaymentRequestPaid    PaymentRequestStatus = "PAID"
)

// PaymentRequest links a gateway order code to the shares it pays for and
// the ratings submitted alongside.
type PaymentRequest struct {
	OrderCode     int64                `json:"orderCode"`
	MemberID      string               `json:"memberId"`
	MatchID       string               `json:"matchId"`
	ShareIDs      []string             `json:"shareIds"`
	Ratings       []RatingInput        `json:"ratings,omitempty"`
	Amount        int64                `json:"amount"`
	Status        PaymentRequestStatus `json:"status"`
	CheckoutURL   string               `json:"checkoutUrl"`
	PaymentLinkID string               `json:"paymentLinkId"`
	Reference     string               `json:"reference,omitempty"`
	PaidAt        *time.Time           `json:"paidAt,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

type CreatePaymentLinkRequest struct {
	ShareIDs []string      `json:"shareIds"`
	MemberID string        `json:"memberId"`
	Ratings  []RatingInput `json:"ratings,omitempty"`
}

type PaymentLinkResponse struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	QRCode        string `json:"qrCode,omitempty"`
	Status        string `json:"status"`
}

// Settlement is the outcome of applying one successful gateway notification.
type Settlement struct {
	OrderCode      int64  `json:"orderCode"`
	Found          bool   `json:"found"`
	AlreadySettled bool   `json:"alreadySettled"`
	SharesPaid     int64  `json:"sharesPaid"`
	RatingsWritten int64  `json:"ratingsWritten"`
	MemberID       string `json:"memberId,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
}

// SettlementMeta is the gateway data recorded on settled shares.
type SettlementMeta struct {
	Reference string
	PaidAt    time.Time
}
