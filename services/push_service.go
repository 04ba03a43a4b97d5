package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

const (
	// ExpoPushURL is the Expo Push API endpoint
	ExpoPushURL = "https://exp.host/--/api/v2/push/send"

	// MaxBatchSize is the maximum number of notifications per request (Expo limit)
	MaxBatchSize = 100

	defaultPushTimeout = 30 * time.Second

	expoDeviceNotRegistered = "DeviceNotRegistered"
)

// PushService delivers push notifications to registered devices.
type PushService interface {
	// Broadcast sends to every registered token.
	Broadcast(ctx context.Context, notification *PushNotification) (types.DeliveryReport, error)

	// SendToTokens sends to the given tokens only.
	SendToTokens(ctx context.Context, tokens []string, notification *PushNotification) types.DeliveryReport
}

type PushNotification struct {
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Badge    *int                   `json:"badge,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	TTL      int                    `json:"ttl,omitempty"`
}

// ExpoMessage is the Expo push API message format
type ExpoMessage struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Body     string                 `json:"body,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Badge    *int                   `json:"badge,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	TTLSec   int                    `json:"ttl,omitempty"`
}

type ExpoResponse struct {
	Data []ExpoTicket `json:"data"`
}

// ExpoTicket is the per-message answer, in request order.
type ExpoTicket struct {
	Status  string            `json:"status"` // "ok" or "error"
	ID      string            `json:"id,omitempty"`
	Message string            `json:"message,omitempty"`
	Details *ExpoErrorDetails `json:"details,omitempty"`
}

type ExpoErrorDetails struct {
	Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", ...
}

type expoPushService struct {
	tokens      store.PushTokenStore
	httpClient  *http.Client
	url         string
	accessToken string
	logger      *zap.Logger
}

// NewExpoPushService builds the Expo-backed PushService. httpClient may be
// nil.
func NewExpoPushService(tokens store.PushTokenStore, cfg config.PushConfig, httpClient *http.Client) PushService {
	timeout := defaultPushTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	url := cfg.ExpoURL
	if url == "" {
		url = ExpoPushURL
	}
	return &expoPushService{
		tokens:      tokens,
		httpClient:  httpClient,
		url:         url,
		accessToken: cfg.AccessToken,
		logger:      logger.GetLogger().Desugar().Named("ExpoPushService"),
	}
}

func (s *expoPushService) Broadcast(ctx context.Context, notification *PushNotification) (types.DeliveryReport, error) {
	registered, err := s.tokens.ListTokens(ctx)
	if err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to list push tokens: %w", err)
	}
	if len(registered) == 0 {
		s.logger.Debug("No registered push tokens")
		return types.DeliveryReport{}, nil
	}

	tokens := make([]string, 0, len(registered))
	for _, t := range registered {
		tokens = append(tokens, t.Token)
	}
	return s.SendToTokens(ctx, tokens, notification), nil
}

func (s *expoPushService) SendToTokens(ctx context.Context, tokens []string, notification *PushNotification) types.DeliveryReport {
	var report types.DeliveryReport
	if len(tokens) == 0 {
		return report
	}

	messages := make([]ExpoMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, s.buildExpoMessage(token, notification))
	}

	for i := 0; i < len(messages); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(messages) {
			end = len(messages)
		}

		batch := messages[i:end]
		batchReport, err := s.sendBatch(ctx, batch)
		if err != nil {
			s.logger.Error("Failed to send push notification batch",
				zap.Int("batchStart", i),
				zap.Int("batchEnd", end),
				zap.Error(err))
			batchReport = types.DeliveryReport{Total: len(batch), Failed: len(batch)}
		}
		report.Add(batchReport)
	}

	s.logger.Info("Push fan-out finished",
		zap.Int("total", report.Total),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("invalidTokens", report.InvalidTokens))
	return report
}

func (s *expoPushService) buildExpoMessage(token string, notification *PushNotification) ExpoMessage {
	msg := ExpoMessage{
		To:       token,
		Title:    notification.Title,
		Body:     notification.Body,
		Data:     notification.Data,
		Sound:    "default",
		Badge:    notification.Badge,
		Priority: "high",
		TTLSec:   notification.TTL,
	}
	if notification.Sound != "" {
		msg.Sound = notification.Sound
	}
	if notification.Priority != "" {
		msg.Priority = notification.Priority
	}
	return msg
}

func (s *expoPushService) sendBatch(ctx context.Context, messages []ExpoMessage) (types.DeliveryReport, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Expo push API returned non-OK status",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(respBody)))
		return types.DeliveryReport{}, fmt.Errorf("expo push API returned status %d", resp.StatusCode)
	}

	var expoResp ExpoResponse
	if err := json.Unmarshal(respBody, &expoResp); err != nil {
		return types.DeliveryReport{}, fmt.Errorf("failed to parse expo response: %w", err)
	}

	return s.processTickets(ctx, messages, expoResp.Data), nil
}

// processTickets maps tickets back to tokens by position. Unregistered
// devices are deleted; delivered ones get their last-used time touched.
func (s *expoPushService) processTickets(ctx context.Context, messages []ExpoMessage, tickets []ExpoTicket) types.DeliveryReport {
	report := types.DeliveryReport{Total: len(messages)}

	for i, msg := range messages {
		token := msg.To
		if i >= len(tickets) {
			report.Failed++
			continue
		}
		ticket := tickets[i]

		switch ticket.Status {
		case "ok":
			report.Sent++
			if err := s.tokens.UpdateTokenLastUsed(ctx, token); err != nil {
				s.logger.Warn("Failed to update token last used", zap.Error(err))
			}
		case "error":
			report.Failed++
			errorDetails := ""
			if ticket.Details != nil {
				errorDetails = ticket.Details.Error
			}
			s.logger.Warn("Push notification failed",
				zap.String("token", logger.MaskPushToken(token)),
				zap.String("message", ticket.Message),
				zap.String("errorDetails", errorDetails))

			if errorDetails == expoDeviceNotRegistered {
				report.InvalidTokens++
				if err := s.tokens.DeleteToken(ctx, token); err != nil {
					s.logger.Error("Failed to delete unregistered token", zap.Error(err))
				}
			}
		default:
			report.Failed++
			s.logger.Warn("Unexpected push ticket status",
				zap.String("token", logger.MaskPushToken(token)),
				zap.String("status", ticket.Status))
		}
	}
	return report
}
