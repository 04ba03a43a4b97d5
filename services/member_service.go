package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/storage"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

type MemberService struct {
	members        store.MemberStore
	files          storage.FileStorage
	maxAvatarBytes int64
	log            *zap.SugaredLogger
}

// NewMemberService builds the member directory service. files may be nil, in
// which case avatar uploads are refused.
func NewMemberService(members store.MemberStore, files storage.FileStorage, maxAvatarBytes int64) *MemberService {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = 2 << 20
	}
	return &MemberService{
		members:        members,
		files:          files,
		maxAvatarBytes: maxAvatarBytes,
		log:            logger.GetLogger().Named("members"),
	}
}

func (s *MemberService) CreateMember(ctx context.Context, req types.MemberCreate) (*types.Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ValidationFailed("Missing name", "name is required")
	}
	member := &types.Member{
		Name:                name,
		Nickname:            strings.TrimSpace(req.Nickname),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		IsExemptFromPayment: req.IsExemptFromPayment,
		IsCreditor:          req.IsCreditor,
	}
	if err := s.members.CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewConflictError("Member already exists", member.Email)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Member created", "memberID", member.ID)
	return member, nil
}

func (s *MemberService) GetMember(ctx context.Context, id string) (*types.Member, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Member", id)
	}
	member, err := s.members.GetMember(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Member", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return member, nil
}

func (s *MemberService) ListMembers(ctx context.Context) ([]*types.Member, error) {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return members, nil
}

func (s *MemberService) UpdateFlags(ctx context.Context, id string, update types.MemberFlagsUpdate) (*types.Member, error) {
	if update.IsExemptFromPayment == nil && update.IsCreditor == nil {
		return nil, apperrors.ValidationFailed("Nothing to update", "set isExemptFromPayment or isCreditor")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Member", id)
	}
	member, err := s.members.UpdateMemberFlags(ctx, id, update)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Member", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Member flags updated",
		"memberID", id,
		"exempt", member.IsExemptFromPayment,
		"creditor", member.IsCreditor)
	return member, nil
}

// UploadAvatar stores an image for the member and points avatar_url at it.
// The previous avatar is removed on a best effort basis.
func (s *MemberService) UploadAvatar(ctx context.Context, id string, r io.Reader) (*types.Member, error) {
	if s.files == nil {
		return nil, &apperrors.AppError{
			Type:       apperrors.StorageError,
			Message:    "Avatar uploads are disabled",
			HTTPStatus: http.StatusServiceUnavailable,
		}
	}
	member, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(r, s.maxAvatarBytes+1))
	if err != nil {
		return nil, apperrors.ValidationFailed("Could not read upload", err.Error())
	}
	if len(content) == 0 {
		return nil, apperrors.ValidationFailed("Empty upload", "the avatar file is empty")
	}
	if int64(len(content)) > s.maxAvatarBytes {
		return nil, apperrors.ValidationFailed("Avatar too large",
			fmt.Sprintf("maximum size is %d bytes", s.maxAvatarBytes))
	}

	mime, ext, err := storage.DetectImage(content)
	if err != nil {
		return nil, apperrors.ValidationFailed("Unsupported file type", err.Error())
	}

	key := fmt.Sprintf("avatars/%s/%d%s", member.ID, time.Now().UnixNano(), ext)
	if err := s.files.Save(ctx, key, bytes.NewReader(content), int64(len(content)), mime); err != nil {
		s.log.Errorw("Avatar upload failed", "memberID", member.ID, "error", err)
		return nil, apperrors.NewStorageError(err)
	}

	url := s.files.PublicURL(key)
	if err := s.members.SetAvatarURL(ctx, member.ID, url); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.log.Warnw("Failed to remove orphaned avatar", "key", key, "error", delErr)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Member", member.ID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if oldKey, ok := s.keyFromURL(member.AvatarURL); ok {
		if err := s.files.Delete(ctx, oldKey); err != nil {
			s.log.Warnw("Failed to remove previous avatar", "key", oldKey, "error", err)
		}
	}

	member.AvatarURL = url
	s.log.Infow("Avatar updated", "memberID", member.ID, "mime", mime, "bytes", len(content))
	return member, nil
}

// keyFromURL recovers the storage key of a URL this service produced.
func (s *MemberService) keyFromURL(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	prefix := s.files.PublicURL("")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, strings.HasPrefix(key, "avatars/")
}
