package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

const (
	defaultNotificationListLimit = 20
	maxNotificationListLimit     = 100
)

// matchTimeZone is where the group plays; kickoff times are rendered in it.
var matchTimeZone = time.FixedZone("ICT", 7*60*60)

// NotificationService turns domain events into push fan-outs and keeps a
// record of each one.
type NotificationService struct {
	push          PushService
	notifications store.NotificationStore
	matches       store.MatchStore
	log           *zap.SugaredLogger
}

func NewNotificationService(push PushService, notifications store.NotificationStore, matches store.MatchStore) *NotificationService {
	return &NotificationService{
		push:          push,
		notifications: notifications,
		matches:       matches,
		log:           logger.GetLogger().Named("notifications"),
	}
}

// NotifyMatchCreated announces a match to every registered device.
func (s *NotificationService) NotifyMatchCreated(ctx context.Context, matchID string) (*types.Notification, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	body := match.ScheduledAt.In(matchTimeZone).Format("15:04 02/01")
	if match.Location != "" {
		body += " @ " + match.Location
	}
	return s.send(ctx, &types.Notification{
		Type:    types.NotificationMatchCreated,
		Title:   "New match: " + match.Title,
		Body:    body,
		MatchID: match.ID,
		Data: map[string]interface{}{
			"type":    string(types.NotificationMatchCreated),
			"matchId": match.ID,
		},
	})
}

// NotifyAttendance announces that a member joined or left a match. kind must
// be NotificationAttendanceCreated or NotificationAttendanceDeleted.
func (s *NotificationService) NotifyAttendance(ctx context.Context, kind types.NotificationType, req types.AttendanceNotificationRequest) (*types.Notification, error) {
	if kind != types.NotificationAttendanceCreated && kind != types.NotificationAttendanceDeleted {
		return nil, apperrors.ValidationFailed("Invalid notification type", string(kind))
	}
	match, err := s.loadMatch(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}

	name := req.MemberName
	if name == "" {
		name = "Someone"
	}
	body := name + " is in"
	if kind == types.NotificationAttendanceDeleted {
		body = name + " dropped out"
	}

	data := map[string]interface{}{
		"type":    string(kind),
		"matchId": match.ID,
	}
	if req.MemberID != "" {
		data["memberId"] = req.MemberID
	}
	return s.send(ctx, &types.Notification{
		Type:    kind,
		Title:   "Attendance: " + match.Title,
		Body:    body,
		MatchID: match.ID,
		Data:    data,
	})
}

// SendManual broadcasts an admin-written message.
func (s *NotificationService) SendManual(ctx context.Context, req types.ManualNotificationRequest) (*types.Notification, error) {
	if req.Title == "" || req.Body == "" {
		return nil, apperrors.ValidationFailed("Invalid notification", "title and body are required")
	}
	return s.send(ctx, &types.Notification{
		Type:  types.NotificationManual,
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
}

// ListRecent returns the newest notifications. A non-positive limit means
// the default; larger limits are capped.
func (s *NotificationService) ListRecent(ctx context.Context, limit int) ([]*types.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationListLimit
	}
	if limit > maxNotificationListLimit {
		limit = maxNotificationListLimit
	}
	list, err := s.notifications.ListNotifications(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return list, nil
}

func (s *NotificationService) loadMatch(ctx context.Context, matchID string) (*types.Match, error) {
	if matchID == "" {
		return nil, apperrors.ValidationFailed("Missing match", "matchId is required")
	}
	match, err := s.matches.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Match", matchID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return match, nil
}

// send fans n out and records the outcome. A failure to store the record is
// logged only; the devices have already been notified.
func (s *NotificationService) send(ctx context.Context, n *types.Notification) (*types.Notification, error) {
	report, err := s.push.Broadcast(ctx, &PushNotification{
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to send push notification")
	}

	n.Sent = report.Sent
	n.Failed = report.Failed
	n.InvalidTokens = report.InvalidTokens

	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.log.Errorw("Failed to record notification", "type", n.Type, "error", err)
	}

	s.log.Infow("Notification sent",
		"type", n.Type,
		"matchId", n.MatchID,
		"total", report.Total,
		"sent", report.Sent,
		"failed", report.Failed,
		"invalidTokens", report.InvalidTokens)
	return n, nil
}

// AttendanceJob builds a background job that announces an attendance change.
func (s *NotificationService) AttendanceJob(kind types.NotificationType, req types.AttendanceNotificationRequest) Job {
	return Job{
		Kind:    "notification",
		Name:    fmt.Sprintf("%s:%s", kind, req.MatchID),
		Timeout: 30 * time.Second,
		Execute: func(ctx context.Context) error {
			_, err := s.NotifyAttendance(ctx, kind, req)
			return err
		},
	}
}
