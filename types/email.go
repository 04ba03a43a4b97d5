package types

import "time"

// PaymentReceipt is the data rendered into a settlement receipt email.
type PaymentReceipt struct {
	To         string
	MemberName string
	MatchTitle string
	Amount     int64
	OrderCode  int64
	Reference  string
	SharesPaid int64
	PaidAt     time.Time
}
