package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/internal/store/mocks"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const avatarBase = "https://cdn.example.com/"

type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) Save(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *mockFileStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockFileStorage) PublicURL(key string) string {
	return avatarBase + key
}

var pngHeader = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestMemberService_CreateMember(t *testing.T) {
	members := new(mocks.MemberStore)
	svc := NewMemberService(members, nil, 0)
	ctx := context.Background()

	members.On("CreateMember", ctx, mock.MatchedBy(func(m *types.Member) bool {
		return m.Name == "Nguyen Van A" && m.Email == "a@example.com" && m.Nickname == "Tí"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Member).ID = member1
	}).Return(nil)

	member, err := svc.CreateMember(ctx, types.MemberCreate{
		Name: " Nguyen Van A ", Nickname: "Tí", Email: " A@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, member1, member.ID)

	_, err = svc.CreateMember(ctx, types.MemberCreate{Name: "   "})
	requireStatus(t, err, http.StatusBadRequest)
	members.AssertNumberOfCalls(t, "CreateMember", 1)
}

func TestMemberService_CreateMember_Conflict(t *testing.T) {
	members := new(mocks.MemberStore)
	svc := NewMemberService(members, nil, 0)
	ctx := context.Background()

	members.On("CreateMember", ctx, mock.Anything).Return(store.ErrConflict)

	_, err := svc.CreateMember(ctx, types.MemberCreate{Name: "B", Email: "b@example.com"})
	requireStatus(t, err, http.StatusConflict)
}

func TestMemberService_GetMember(t *testing.T) {
	members := new(mocks.MemberStore)
	svc := NewMemberService(members, nil, 0)
	ctx := context.Background()

	members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1, Name: "A"}, nil)
	members.On("GetMember", ctx, member2).Return(nil, store.ErrNotFound)
	members.On("GetMember", ctx, member3).Return(nil, errors.New("conn reset"))

	member, err := svc.GetMember(ctx, member1)
	require.NoError(t, err)
	assert.Equal(t, "A", member.Name)

	_, err = svc.GetMember(ctx, member2)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.GetMember(ctx, member3)
	requireStatus(t, err, http.StatusInternalServerError)

	_, err = svc.GetMember(ctx, "42")
	requireStatus(t, err, http.StatusNotFound)
}

func TestMemberService_UpdateFlags(t *testing.T) {
	members := new(mocks.MemberStore)
	svc := NewMemberService(members, nil, 0)
	ctx := context.Background()
	exempt := true

	update := types.MemberFlagsUpdate{IsExemptFromPayment: &exempt}
	members.On("UpdateMemberFlags", ctx, member1, update).
		Return(&types.Member{ID: member1, IsExemptFromPayment: true}, nil)
	members.On("UpdateMemberFlags", ctx, member2, update).Return(nil, store.ErrNotFound)

	member, err := svc.UpdateFlags(ctx, member1, update)
	require.NoError(t, err)
	assert.True(t, member.IsExemptFromPayment)

	_, err = svc.UpdateFlags(ctx, member2, update)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.UpdateFlags(ctx, member1, types.MemberFlagsUpdate{})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestMemberService_UploadAvatar(t *testing.T) {
	members := new(mocks.MemberStore)
	files := new(mockFileStorage)
	svc := NewMemberService(members, files, 1024)
	ctx := context.Background()

	oldURL := avatarBase + "avatars/" + member1 + "/1.png"
	members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1, AvatarURL: oldURL}, nil)

	var savedKey string
	files.On("Save", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "avatars/"+member1+"/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, int64(len(pngHeader)), "image/png").Run(func(args mock.Arguments) {
		savedKey = args.String(1)
	}).Return(nil)
	members.On("SetAvatarURL", ctx, member1, mock.MatchedBy(func(url string) bool {
		return url == avatarBase+savedKey
	})).Return(nil)
	files.On("Delete", ctx, "avatars/"+member1+"/1.png").Return(errors.New("gone"))

	member, err := svc.UploadAvatar(ctx, member1, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, avatarBase+savedKey, member.AvatarURL)
	files.AssertExpectations(t)
	members.AssertExpectations(t)
}

func TestMemberService_UploadAvatar_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("storage disabled", func(t *testing.T) {
		svc := NewMemberService(new(mocks.MemberStore), nil, 1024)
		_, err := svc.UploadAvatar(ctx, member1, bytes.NewReader(pngHeader))
		requireStatus(t, err, http.StatusServiceUnavailable)
	})

	cases := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, 1024)...)},
		{"not an image", []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			members := new(mocks.MemberStore)
			files := new(mockFileStorage)
			svc := NewMemberService(members, files, 1024)
			members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1}, nil)

			_, err := svc.UploadAvatar(ctx, member1, bytes.NewReader(tc.content))
			requireStatus(t, err, http.StatusBadRequest)
			files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMemberService_UploadAvatar_StorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("save fails", func(t *testing.T) {
		members := new(mocks.MemberStore)
		files := new(mockFileStorage)
		svc := NewMemberService(members, files, 1024)
		members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1}, nil)
		files.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("403"))

		_, err := svc.UploadAvatar(ctx, member1, bytes.NewReader(pngHeader))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.StorageError, appErr.Type)
		members.AssertNotCalled(t, "SetAvatarURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("db fails after upload", func(t *testing.T) {
		members := new(mocks.MemberStore)
		files := new(mockFileStorage)
		svc := NewMemberService(members, files, 1024)
		members.On("GetMember", ctx, member1).Return(&types.Member{ID: member1}, nil)
		files.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		members.On("SetAvatarURL", ctx, member1, mock.Anything).Return(errors.New("deadlock"))
		files.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "avatars/"+member1+"/")
		})).Return(nil).Once()

		_, err := svc.UploadAvatar(ctx, member1, bytes.NewReader(pngHeader))
		requireStatus(t, err, http.StatusInternalServerError)
		files.AssertExpectations(t)
	})
}
