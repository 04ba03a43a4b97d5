package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

// multipartOverhead leaves room for form boundaries around the avatar file.
const multipartOverhead = 1 << 20

type MemberHandler struct {
	members        *services.MemberService
	maxAvatarBytes int64
}

func NewMemberHandler(members *services.MemberService, maxAvatarBytes int64) *MemberHandler {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = 2 << 20
	}
	return &MemberHandler{members: members, maxAvatarBytes: maxAvatarBytes}
}

// ListMembers godoc
// @Summary List members
// @Tags members
// @Produce json
// @Success 200 {array} types.Member
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.members.ListMembers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// CreateMember godoc
// @Summary Add a member
// @Tags members
// @Accept json
// @Produce json
// @Param request body types.MemberCreate true "Member"
// @Success 201 {object} types.Member
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Failure 409 {object} docs.ErrorResponse "Email already used"
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req types.MemberCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	member, err := h.members.CreateMember(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMember godoc
// @Summary Get a member
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} types.Member
// @Failure 404 {object} docs.ErrorResponse "Member not found"
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.members.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// UpdateFlags godoc
// @Summary Toggle payment flags
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body types.MemberFlagsUpdate true "Flags to change"
// @Success 200 {object} types.Member
// @Failure 400 {object} docs.ErrorResponse "Nothing to update"
// @Failure 404 {object} docs.ErrorResponse "Member not found"
// @Router /members/{id}/flags [patch]
func (h *MemberHandler) UpdateFlags(c *gin.Context) {
	var req types.MemberFlagsUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	member, err := h.members.UpdateFlags(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// UploadAvatar godoc
// @Summary Upload a member avatar
// @Description Multipart upload in the "file" field. Only images are accepted; the type is sniffed from the content.
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Member ID"
// @Param file formData file true "Image"
// @Success 200 {object} types.Member
// @Failure 400 {object} docs.ErrorResponse "Missing, oversized or non-image file"
// @Failure 404 {object} docs.ErrorResponse "Member not found"
// @Failure 503 {object} docs.ErrorResponse "Storage not configured"
// @Router /members/{id}/avatar [post]
func (h *MemberHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxAvatarBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(h.maxAvatarBytes); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid multipart upload", err.Error()))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Missing file field", err.Error()))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Unreadable file", err.Error()))
		return
	}
	defer file.Close()

	member, err := h.members.UploadAvatar(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}
