package payos

import (
	"encoding/json"
	"fmt"
	"time"
)

// Webhook is the body payOS posts after a transfer.
type Webhook struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type WebhookData struct {
	OrderCode              int64  `json:"orderCode"`
	Amount                 int64  `json:"amount"`
	Description            string `json:"description"`
	AccountNumber          string `json:"accountNumber"`
	Reference              string `json:"reference"`
	TransactionDateTime    string `json:"transactionDateTime"`
	Currency               string `json:"currency"`
	PaymentLinkID          string `json:"paymentLinkId"`
	Code                   string `json:"code"`
	Desc                   string `json:"desc"`
	CounterAccountBankID   string `json:"counterAccountBankId"`
	CounterAccountBankName string `json:"counterAccountBankName"`
	CounterAccountName     string `json:"counterAccountName"`
	CounterAccountNumber   string `json:"counterAccountNumber"`
	VirtualAccountName     string `json:"virtualAccountName"`
	VirtualAccountNumber   string `json:"virtualAccountNumber"`
}

// Paid reports whether the notification confirms a completed transfer.
func (d *WebhookData) Paid() bool {
	return d.Code == CodeSuccess
}

var vietnamTime = time.FixedZone("ICT", 7*60*60)

// PaidAt parses TransactionDateTime, which the gateway sends in local
// Vietnam time. fallback is returned when the field is empty or malformed.
func (d *WebhookData) PaidAt(fallback time.Time) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, d.TransactionDateTime, vietnamTime); err == nil {
			return t.UTC()
		}
	}
	return fallback
}

// VerifyWebhook decodes body and checks its signature. The returned data is
// only trustworthy when err is nil.
func (c *Client) VerifyWebhook(body []byte) (*WebhookData, error) {
	var hook Webhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("payos: malformed webhook: %w", err)
	}
	if len(hook.Data) == 0 || string(hook.Data) == "null" {
		return nil, fmt.Errorf("payos: webhook has no data")
	}

	expected, err := signData(c.cfg.ChecksumKey, hook.Data)
	if err != nil {
		return nil, fmt.Errorf("payos: malformed webhook data: %w", err)
	}
	if !signaturesEqual(expected, hook.Signature) {
		return nil, ErrInvalidSignature
	}

	var data WebhookData
	if err := json.Unmarshal(hook.Data, &data); err != nil {
		return nil, fmt.Errorf("payos: malformed webhook data: %w", err)
	}
	return &data, nil
}

// SignWebhookData produces the signature the gateway would attach to data.
// Useful for confirming a webhook URL and for tests.
func (c *Client) SignWebhookData(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return signData(c.cfg.ChecksumKey, raw)
}
