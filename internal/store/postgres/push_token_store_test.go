package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/matchfund/matchfund-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTokenStore_RegisterToken(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewPushTokenStore(mock)
	now := time.Now()

	var noMember *string
	mock.ExpectQuery("INSERT INTO notification_tokens").
		WithArgs("ExponentPushToken[abc]", noMember, "ios").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	tok := &types.PushToken{Token: "ExponentPushToken[abc]", Platform: "ios"}
	require.NoError(t, s.RegisterToken(ctx, tok))
	assert.Equal(t, now, tok.CreatedAt)
}

func TestPushTokenStore_ListTokens(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewPushTokenStore(mock)
	now := time.Now()

	mock.ExpectQuery("FROM notification_tokens").
		WillReturnRows(pgxmock.NewRows([]string{"token", "member_id", "platform", "created_at", "last_used_at"}).
			AddRow("ExponentPushToken[a]", "m1", "ios", now, &now).
			AddRow("ExponentPushToken[b]", "", "android", now, nil))

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "m1", tokens[0].MemberID)
	assert.NotNil(t, tokens[0].LastUsedAt)
	assert.Empty(t, tokens[1].MemberID)
	assert.Nil(t, tokens[1].LastUsedAt)
}

func TestPushTokenStore_DeleteAndTouch(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	s := NewPushTokenStore(mock)

	mock.ExpectExec("DELETE FROM notification_tokens").WithArgs("ExponentPushToken[gone]").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("UPDATE notification_tokens SET last_used_at").WithArgs("ExponentPushToken[a]").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.DeleteToken(ctx, "ExponentPushToken[gone]"))
	require.NoError(t, s.UpdateTokenLastUsed(ctx, "ExponentPushToken[a]"))
}
