package types

import "time"

type ShareStatus string

const (
	ShareStatusPending   ShareStatus = "PENDING"
	ShareStatusPaid      ShareStatus = "PAID"
	ShareStatusCancelled ShareStatus = "CANCELLED"
)

// Share is what one member owes for one match. Amount never changes after
// creation; only Status moves.
type Share struct {
	ID               string          `json:"id"`
	MatchID          string          `json:"matchId"`
	MemberID         string          `json:"memberId"`
	TeamID           string          `json:"teamId"`
	Amount           int64           `json:"amount"`
	Status           ShareStatus     `json:"status"`
	Breakdown        *ShareBreakdown `json:"breakdown,omitempty"`
	OrderCode        *int64          `json:"orderCode,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ShareBreakdown records how Amount was derived.
type ShareBreakdown struct {
	TeamPercent   float64 `json:"teamPercent"`
	FixedPercent  float64 `json:"fixedPercent,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Adjustment    int64   `json:"adjustment,omitempty"`
	TotalAmount   int64   `json:"totalAmount"`
	IsFixedMember bool    `json:"isFixedMember"`
}
