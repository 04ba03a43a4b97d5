package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchfund/matchfund-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_CreateNotification(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewNotificationStore(mock)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(pgxmock.AnyArg(), types.NotificationManual, "Pitch moved", "Field 2 tonight",
			pgxmock.AnyArg(), pgxmock.AnyArg(), 3, 1, 1).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	n := &types.Notification{
		Type:          types.NotificationManual,
		Title:         "Pitch moved",
		Body:          "Field 2 tonight",
		Data:          map[string]interface{}{"type": "manual"},
		Sent:          3,
		Failed:        1,
		InvalidTokens: 1,
	}
	require.NoError(t, s.CreateNotification(ctx, n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, now, n.CreatedAt)
}

func TestNotificationStore_ListNotifications(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewNotificationStore(mock)
	now := time.Now()

	mock.ExpectQuery("FROM notifications").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "title", "body", "match_id", "data", "sent", "failed", "invalid_tokens", "created_at"}).
			AddRow("n2", types.NotificationManual, "Hi", "All", "", []byte(`{"type":"manual"}`), 4, 0, 0, now).
			AddRow("n1", types.NotificationMatchCreated, "Match", "19:00", "m1", []byte(nil), 2, 1, 1, now.Add(-time.Hour)))

	list, err := s.ListNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "manual", list[0].Data["type"])
	assert.Empty(t, list[0].MatchID)
	assert.Equal(t, "m1", list[1].MatchID)
	assert.Nil(t, list[1].Data)
	assert.Equal(t, 1, list[1].InvalidTokens)
}

func TestNotificationStore_ListNotificationsError(t *testing.T) {
	mock := newMockDB(t)
	s := NewNotificationStore(mock)

	mock.ExpectQuery("FROM notifications").WithArgs(20).WillReturnError(errors.New("boom"))

	_, err := s.ListNotifications(context.Background(), 20)
	assert.ErrorContains(t, err, "failed to list notifications")
}
