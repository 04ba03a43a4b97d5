package types

import "time"

// PushToken is a registered device. MemberID is optional because devices may
// subscribe before their owner is known.
type PushToken struct {
	Token      string     `json:"token"`
	MemberID   string     `json:"memberId,omitempty"`
	Platform   string     `json:"platform,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

type RegisterPushTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	MemberID string `json:"memberId"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

type DeregisterPushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type NotificationType string

const (
	NotificationMatchCreated      NotificationType = "MATCH_CREATED"
	NotificationAttendanceCreated NotificationType = "ATTENDANCE_CREATED"
	NotificationAttendanceDeleted NotificationType = "ATTENDANCE_DELETED"
	NotificationManual            NotificationType = "MANUAL"
)

// Notification is the stored record of one fan-out.
type Notification struct {
	ID            string                 `json:"id"`
	Type          NotificationType       `json:"type"`
	Title         string                 `json:"title"`
	Body          string                 `json:"body"`
	MatchID       string                 `json:"matchId,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
	Sent          int                    `json:"sent"`
	Failed        int                    `json:"failed"`
	InvalidTokens int                    `json:"invalidTokens"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// DeliveryReport counts per-token outcomes of one fan-out.
type DeliveryReport struct {
	Total         int `json:"total"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
	InvalidTokens int `json:"invalidTokens"`
}

// Add folds another batch report into r.
func (r *DeliveryReport) Add(other DeliveryReport) {
	r.Total += other.Total
	r.Sent += other.Sent
	r.Failed += other.Failed
	r.InvalidTokens += other.InvalidTokens
}

type MatchNotificationRequest struct {
	MatchID string `json:"matchId" binding:"required"`
}

type AttendanceNotificationRequest struct {
	MatchID    string `json:"matchId" binding:"required"`
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
}

type ManualNotificationRequest struct {
	Title string                 `json:"title" binding:"required"`
	Body  string                 `json:"body" binding:"required"`
	Data  map[string]interface{} `json:"data"`
}
