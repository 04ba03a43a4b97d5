package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/internal/store/mocks"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPushService struct {
	mock.Mock
}

func (m *mockPushService) Broadcast(ctx context.Context, n *PushNotification) (types.DeliveryReport, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(types.DeliveryReport), args.Error(1)
}

func (m *mockPushService) SendToTokens(ctx context.Context, tokens []string, n *PushNotification) types.DeliveryReport {
	args := m.Called(ctx, tokens, n)
	return args.Get(0).(types.DeliveryReport)
}

func newTestNotificationService() (*NotificationService, *mockPushService, *mocks.NotificationStore, *mocks.MatchStore) {
	push := new(mockPushService)
	notifications := new(mocks.NotificationStore)
	matches := new(mocks.MatchStore)
	return NewNotificationService(push, notifications, matches), push, notifications, matches
}

func TestNotificationService_NotifyMatchCreated(t *testing.T) {
	svc, push, notifications, matches := newTestNotificationService()
	ctx := context.Background()

	kickoff := time.Date(2026, 10, 23, 12, 0, 0, 0, time.UTC)
	matches.On("GetMatch", ctx, "match-1").Return(&types.Match{
		ID: "match-1", Title: "Friday five-a-side", Location: "Pitch 3", ScheduledAt: kickoff,
	}, nil)
	report := types.DeliveryReport{Total: 3, Sent: 2, Failed: 1, InvalidTokens: 1}
	push.On("Broadcast", ctx, mock.MatchedBy(func(n *PushNotification) bool {
		return n.Title == "New match: Friday five-a-side" &&
			n.Body == "19:00 23/10 @ Pitch 3" &&
			n.Data["matchId"] == "match-1"
	})).Return(report, nil)
	notifications.On("CreateNotification", ctx, mock.AnythingOfType("*types.Notification")).Return(nil)

	n, err := svc.NotifyMatchCreated(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, types.NotificationMatchCreated, n.Type)
	assert.Equal(t, 2, n.Sent)
	assert.Equal(t, 1, n.Failed)
	assert.Equal(t, 1, n.InvalidTokens)
	assert.Equal(t, "match-1", n.MatchID)
	push.AssertExpectations(t)
	notifications.AssertExpectations(t)
}

func TestNotificationService_NotifyMatchCreated_UnknownMatch(t *testing.T) {
	svc, push, _, matches := newTestNotificationService()
	ctx := context.Background()

	matches.On("GetMatch", ctx, "missing").Return(nil, store.ErrNotFound)

	_, err := svc.NotifyMatchCreated(ctx, "missing")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.GetHTTPStatus())
	push.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestNotificationService_NotifyAttendance(t *testing.T) {
	tests := []struct {
		name     string
		kind     types.NotificationType
		req      types.AttendanceNotificationRequest
		wantBody string
	}{
		{
			name:     "joined",
			kind:     types.NotificationAttendanceCreated,
			req:      types.AttendanceNotificationRequest{MatchID: "m1", MemberID: "p1", MemberName: "Tuan"},
			wantBody: "Tuan is in",
		},
		{
			name:     "left without a name",
			kind:     types.NotificationAttendanceDeleted,
			req:      types.AttendanceNotificationRequest{MatchID: "m1"},
			wantBody: "Someone dropped out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, push, notifications, matches := newTestNotificationService()
			ctx := context.Background()

			matches.On("GetMatch", ctx, "m1").Return(&types.Match{ID: "m1", Title: "Sunday"}, nil)
			push.On("Broadcast", ctx, mock.MatchedBy(func(n *PushNotification) bool {
				return n.Body == tt.wantBody && n.Title == "Attendance: Sunday"
			})).Return(types.DeliveryReport{Total: 1, Sent: 1}, nil)
			notifications.On("CreateNotification", ctx, mock.Anything).Return(nil)

			n, err := svc.NotifyAttendance(ctx, tt.kind, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, n.Type)
			if tt.req.MemberID != "" {
				assert.Equal(t, tt.req.MemberID, n.Data["memberId"])
			} else {
				assert.NotContains(t, n.Data, "memberId")
			}
			push.AssertExpectations(t)
		})
	}
}

func TestNotificationService_NotifyAttendance_RejectsOtherKinds(t *testing.T) {
	svc, _, _, matches := newTestNotificationService()

	_, err := svc.NotifyAttendance(context.Background(), types.NotificationManual,
		types.AttendanceNotificationRequest{MatchID: "m1"})
	require.Error(t, err)
	matches.AssertNotCalled(t, "GetMatch", mock.Anything, mock.Anything)
}

func TestNotificationService_SendManual(t *testing.T) {
	t.Run("records even when storing fails", func(t *testing.T) {
		svc, push, notifications, _ := newTestNotificationService()
		ctx := context.Background()

		push.On("Broadcast", ctx, mock.Anything).Return(types.DeliveryReport{Total: 4, Sent: 4}, nil)
		notifications.On("CreateNotification", ctx, mock.Anything).Return(errors.New("insert failed"))

		n, err := svc.SendManual(ctx, types.ManualNotificationRequest{Title: "Pitch moved", Body: "Now at field B"})
		require.NoError(t, err)
		assert.Equal(t, 4, n.Sent)
	})

	t.Run("push failure", func(t *testing.T) {
		svc, push, notifications, _ := newTestNotificationService()
		ctx := context.Background()

		push.On("Broadcast", ctx, mock.Anything).Return(types.DeliveryReport{}, errors.New("db down"))

		_, err := svc.SendManual(ctx, types.ManualNotificationRequest{Title: "t", Body: "b"})
		require.Error(t, err)
		notifications.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("missing body", func(t *testing.T) {
		svc, _, _, _ := newTestNotificationService()
		_, err := svc.SendManual(context.Background(), types.ManualNotificationRequest{Title: "t"})
		require.Error(t, err)
	})
}

func TestNotificationService_ListRecent_ClampsLimit(t *testing.T) {
	svc, _, notifications, _ := newTestNotificationService()
	ctx := context.Background()

	notifications.On("ListNotifications", ctx, 20).Return([]*types.Notification{}, nil).Once()
	notifications.On("ListNotifications", ctx, 100).Return([]*types.Notification{{ID: "n1"}}, nil).Once()

	_, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	list, err := svc.ListRecent(ctx, 5000)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	notifications.AssertExpectations(t)
}
