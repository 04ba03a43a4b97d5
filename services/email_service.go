package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// ReceiptSender delivers settlement receipts.
type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, receipt types.PaymentReceipt) error
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config  *config.EmailConfig
	client  *resend.Client
	metrics *EmailMetrics
	tmpl    *template.Template
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress,
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))

	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchfund_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchfund_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchfund_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}
	reg.MustRegister(metrics.sendLatency, metrics.errorCount, metrics.sentCount)

	return &EmailService{
		config:  cfg,
		client:  resend.NewClient(cfg.ResendAPIKey),
		metrics: metrics,
		tmpl: template.Must(template.New("receipt").Funcs(template.FuncMap{
			"vnd": FormatVND,
		}).Parse(receiptEmailTemplate)),
	}
}

// SendPaymentReceipt mails a settlement receipt. It is a no-op when email is
// disabled or the member has no address.
func (s *EmailService) SendPaymentReceipt(ctx context.Context, receipt types.PaymentReceipt) error {
	log := logger.GetLogger()
	if !s.config.Enabled {
		log.Debugw("Email disabled, skipping receipt", "orderCode", receipt.OrderCode)
		return nil
	}
	if receipt.To == "" {
		return nil
	}

	startTime := time.Now()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	var htmlContent bytes.Buffer
	if err := s.tmpl.Execute(&htmlContent, receipt); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{receipt.To},
		Subject: fmt.Sprintf("Payment received: %s", FormatVND(receipt.Amount)),
		Html:    htmlContent.String(),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(receipt.To),
			"orderCode", receipt.OrderCode)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Receipt sent",
		"to", logger.MaskEmail(receipt.To),
		"orderCode", receipt.OrderCode)
	return nil
}

// FormatVND renders an amount in dong with dot thousands separators, e.g.
// 150000 becomes "150.000 ₫".
func FormatVND(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + string(out) + " ₫"
}

const receiptEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Payment received</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f4f7f4;
            color: #333333;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 560px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
        }
        h1 {
            color: #1f8a4c;
            font-size: 24px;
        }
        td {
            padding: 6px 0;
            font-size: 15px;
        }
        .muted {
            color: #777777;
            font-size: 13px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Thanks{{if .MemberName}}, {{.MemberName}}{{end}}!</h1>
        <p>Your payment{{if .MatchTitle}} for {{.MatchTitle}}{{end}} went through.</p>
        <table>
            <tr><td>Amount</td><td><strong>{{vnd .Amount}}</strong></td></tr>
            <tr><td>Shares paid</td><td>{{.SharesPaid}}</td></tr>
            <tr><td>Order code</td><td>{{.OrderCode}}</td></tr>
            {{if .Reference}}<tr><td>Bank reference</td><td>{{.Reference}}</td></tr>{{end}}
        </table>
        <p class="muted">Paid at {{.PaidAt.Format "15:04 02/01/2006"}} (UTC)</p>
    </div>
</body>
</html>`
