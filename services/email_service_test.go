package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// newTestEmailService points the resend client at an httptest server.
func newTestEmailService(t *testing.T, status int, captured *[]capturedEmail) *EmailService {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))

		var body capturedEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*captured = append(*captured, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"id":"email-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad"}`))
	}))
	t.Cleanup(server.Close)

	cfg := &config.EmailConfig{
		Enabled:      true,
		FromName:     "Matchfund",
		FromAddress:  "noreply@matchfund.test",
		ResendAPIKey: "re_test_key",
	}
	svc := NewEmailServiceWithRegistry(cfg, prometheus.NewRegistry())
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	svc.client.BaseURL = base
	return svc
}

func testReceipt() types.PaymentReceipt {
	return types.PaymentReceipt{
		To:         "tuan@example.com",
		MemberName: "Tuan",
		MatchTitle: "Friday five-a-side",
		Amount:     150000,
		OrderCode:  1760000000000123,
		Reference:  "FT123",
		SharesPaid: 2,
		PaidAt:     time.Date(2026, 10, 23, 14, 5, 0, 0, time.UTC),
	}
}

func TestEmailService_SendPaymentReceipt(t *testing.T) {
	var captured []capturedEmail
	svc := newTestEmailService(t, http.StatusOK, &captured)

	err := svc.SendPaymentReceipt(context.Background(), testReceipt())
	require.NoError(t, err)

	require.Len(t, captured, 1)
	assert.Equal(t, "Matchfund <noreply@matchfund.test>", captured[0].From)
	assert.Equal(t, []string{"tuan@example.com"}, captured[0].To)
	assert.Equal(t, "Payment received: 150.000 ₫", captured[0].Subject)
	assert.Contains(t, captured[0].HTML, "Friday five-a-side")
	assert.Contains(t, captured[0].HTML, "FT123")
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.sentCount))
	assert.Equal(t, float64(0), testutil.ToFloat64(svc.metrics.errorCount))
}

func TestEmailService_SendPaymentReceipt_APIError(t *testing.T) {
	var captured []capturedEmail
	svc := newTestEmailService(t, http.StatusUnprocessableEntity, &captured)

	err := svc.SendPaymentReceipt(context.Background(), testReceipt())
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.errorCount))
}

func TestEmailService_SendPaymentReceipt_Skips(t *testing.T) {
	var captured []capturedEmail
	svc := newTestEmailService(t, http.StatusOK, &captured)

	noAddress := testReceipt()
	noAddress.To = ""
	require.NoError(t, svc.SendPaymentReceipt(context.Background(), noAddress))

	svc.config.Enabled = false
	require.NoError(t, svc.SendPaymentReceipt(context.Background(), testReceipt()))

	assert.Empty(t, captured)
}

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 ₫"},
		{999, "999 ₫"},
		{1000, "1.000 ₫"},
		{150000, "150.000 ₫"},
		{1234567, "1.234.567 ₫"},
		{-25000, "-25.000 ₫"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVND(tt.in))
	}
}
