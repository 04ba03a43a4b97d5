package store

import (
	"context"
	"encoding/json"

	"github.com/matchfund/matchfund-backend/types"
)

// MemberStore handles the member directory.
type MemberStore interface {
	CreateMember(ctx context.Context, member *types.Member) error
	GetMember(ctx context.Context, id string) (*types.Member, error)
	ListMembers(ctx context.Context) ([]*types.Member, error)
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*types.Member, error)
	UpdateMemberFlags(ctx context.Context, id string, update types.MemberFlagsUpdate) (*types.Member, error)
	SetAvatarURL(ctx context.Context, id, avatarURL string) error
}

// MatchStore handles matches, their rosters, shares, attendance and ratings.
type MatchStore interface {
	CreateMatch(ctx context.Context, match *types.Match) error
	GetMatch(ctx context.Context, id string) (*types.Match, error)

	// ReplaceShares swaps the roster and every unpaid share of a match in one
	// transaction. It returns ErrAlreadyPaid if any share is settled.
	ReplaceShares(ctx context.Context, roster *types.Roster, shares []*types.Share) error
	ListShares(ctx context.Context, matchID string) ([]*types.Share, error)
	GetSharesByIDs(ctx context.Context, ids []string) ([]*types.Share, error)

	// AddAttendance returns false when the member was already attending.
	AddAttendance(ctx context.Context, matchID, memberID string) (bool, error)
	RemoveAttendance(ctx context.Context, matchID, memberID string) (bool, error)
	ListAttendance(ctx context.Context, matchID string) ([]types.Attendance, error)

	ListRatingSummaries(ctx context.Context, matchID string) ([]types.RatingSummary, error)
}

// LiveEventStore keeps the append-only live event log.
type LiveEventStore interface {
	CreateLiveEvent(ctx context.Context, event *types.LiveEvent) error
	DeleteLiveEvent(ctx context.Context, matchID, eventID string) error
	ListLiveEvents(ctx context.Context, matchID string) ([]types.LiveEvent, error)
}

// PaymentStore persists payment requests and applies settlements.
type PaymentStore interface {
	CreatePaymentRequest(ctx context.Context, req *types.PaymentRequest) error
	GetPaymentRequest(ctx context.Context, orderCode int64) (*types.PaymentRequest, error)

	// Settle marks the request and its pending shares paid and writes the
	// attached ratings. Unknown or already-paid order codes are reported in
	// the result, not as errors.
	Settle(ctx context.Context, orderCode int64, meta types.SettlementMeta) (*types.Settlement, error)
}

// PushTokenStore handles registered push devices.
type PushTokenStore interface {
	RegisterToken(ctx context.Context, token *types.PushToken) error
	DeleteToken(ctx context.Context, token string) error
	ListTokens(ctx context.Context) ([]*types.PushToken, error)
	UpdateTokenLastUsed(ctx context.Context, token string) error
}

// NotificationStore records sent notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *types.Notification) error
	ListNotifications(ctx context.Context, limit int) ([]*types.Notification, error)
}

// ConfigStore holds scoring action configs and free-form JSON settings.
type ConfigStore interface {
	ListActionConfigs(ctx context.Context) ([]types.ActionConfig, error)
	UpsertActionConfig(ctx context.Context, cfg types.ActionConfig) error
	// SeedActionConfigs inserts the given rows, skipping existing keys unless
	// overwrite is set. It returns the number of rows written.
	SeedActionConfigs(ctx context.Context, cfgs []types.ActionConfig, overwrite bool) (int64, error)

	GetConfig(ctx context.Context, key string) (json.RawMessage, error)
	PutConfig(ctx context.Context, key string, value json.RawMessage) error
}
