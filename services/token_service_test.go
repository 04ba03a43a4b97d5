package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/internal/store/mocks"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPushToken = "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"

func TestIsExpoPushToken(t *testing.T) {
	assert.True(t, IsExpoPushToken(testPushToken))
	assert.True(t, IsExpoPushToken("ExpoPushToken[abc]"))
	assert.False(t, IsExpoPushToken("ExponentPushToken[]"))
	assert.False(t, IsExpoPushToken("fcm:abc"))
	assert.False(t, IsExpoPushToken("ExponentPushToken[abc"))
}

func TestTokenService_Register(t *testing.T) {
	tokens := new(mocks.PushTokenStore)
	members := new(mocks.MemberStore)
	svc := NewTokenService(tokens, members)
	ctx := context.Background()

	members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1}, nil)
	tokens.On("RegisterToken", ctx, mock.MatchedBy(func(pt *types.PushToken) bool {
		return pt.Token == testPushToken && pt.MemberID == member1 && pt.Platform == "ios"
	})).Return(nil)

	pt, err := svc.Register(ctx, types.RegisterPushTokenRequest{
		Token: " " + testPushToken + " ", MemberID: member1, Platform: "ios",
	})
	require.NoError(t, err)
	assert.Equal(t, testPushToken, pt.Token)
	tokens.AssertExpectations(t)
}

func TestTokenService_Register_Anonymous(t *testing.T) {
	tokens := new(mocks.PushTokenStore)
	members := new(mocks.MemberStore)
	svc := NewTokenService(tokens, members)
	ctx := context.Background()

	tokens.On("RegisterToken", ctx, mock.Anything).Return(nil)

	_, err := svc.Register(ctx, types.RegisterPushTokenRequest{Token: testPushToken})
	require.NoError(t, err)
	members.AssertNotCalled(t, "GetMember", mock.Anything, mock.Anything)
}

func TestTokenService_Register_Invalid(t *testing.T) {
	tokens := new(mocks.PushTokenStore)
	members := new(mocks.MemberStore)
	svc := NewTokenService(tokens, members)
	ctx := context.Background()

	members.On("GetMember", ctx, member2).Return(nil, store.ErrNotFound)

	_, err := svc.Register(ctx, types.RegisterPushTokenRequest{Token: "not-a-token"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, types.RegisterPushTokenRequest{Token: testPushToken, MemberID: "abc"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, types.RegisterPushTokenRequest{Token: testPushToken, MemberID: member2})
	requireStatus(t, err, http.StatusBadRequest)

	tokens.AssertNotCalled(t, "RegisterToken", mock.Anything, mock.Anything)
}

func TestTokenService_Unregister(t *testing.T) {
	tokens := new(mocks.PushTokenStore)
	svc := NewTokenService(tokens, new(mocks.MemberStore))
	ctx := context.Background()

	tokens.On("DeleteToken", ctx, testPushToken).Return(nil).Once()
	tokens.On("DeleteToken", ctx, testPushToken).Return(errors.New("conn closed")).Once()

	require.NoError(t, svc.Unregister(ctx, testPushToken))

	err := svc.Unregister(ctx, testPushToken)
	requireStatus(t, err, http.StatusInternalServerError)

	err = svc.Unregister(ctx, "  ")
	requireStatus(t, err, http.StatusBadRequest)
}
