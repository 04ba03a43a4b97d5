package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

type TokenService struct {
	tokens  store.PushTokenStore
	members store.MemberStore
	log     *zap.SugaredLogger
}

func NewTokenService(tokens store.PushTokenStore, members store.MemberStore) *TokenService {
	return &TokenService{
		tokens:  tokens,
		members: members,
		log:     logger.GetLogger().Named("push_tokens"),
	}
}

// IsExpoPushToken accepts both token spellings Expo has issued.
func IsExpoPushToken(token string) bool {
	for _, prefix := range []string{"ExponentPushToken[", "ExpoPushToken["} {
		if strings.HasPrefix(token, prefix) && strings.HasSuffix(token, "]") && len(token) > len(prefix)+1 {
			return true
		}
	}
	return false
}

// Register upserts a device token. Registering the same token again only
// updates its owner and platform.
func (s *TokenService) Register(ctx context.Context, req types.RegisterPushTokenRequest) (*types.PushToken, error) {
	token := strings.TrimSpace(req.Token)
	if !IsExpoPushToken(token) {
		return nil, apperrors.ValidationFailed("Invalid push token", "expected an Expo push token")
	}
	if req.MemberID != "" {
		if _, err := uuid.Parse(req.MemberID); err != nil {
			return nil, apperrors.ValidationFailed("Invalid member id", req.MemberID)
		}
		if _, err := s.members.GetMember(ctx, req.MemberID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.ValidationFailed("Unknown member", req.MemberID)
			}
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	pt := &types.PushToken{Token: token, MemberID: req.MemberID, Platform: req.Platform}
	if err := s.tokens.RegisterToken(ctx, pt); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Push token registered", "token", logger.MaskPushToken(token), "platform", pt.Platform)
	return pt, nil
}

func (s *TokenService) Unregister(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ValidationFailed("Missing token", "token is required")
	}
	if err := s.tokens.DeleteToken(ctx, token); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Push token removed", "token", logger.MaskPushToken(token))
	return nil
}
