package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

// PushTokenHandler registers Expo device tokens.
type PushTokenHandler struct {
	tokens *services.TokenService
}

func NewPushTokenHandler(tokens *services.TokenService) *PushTokenHandler {
	return &PushTokenHandler{tokens: tokens}
}

// RegisterPushToken godoc
// @Summary Register a push notification token
// @Description Registers or refreshes an Expo push token. The member is optional.
// @Tags notification-tokens
// @Accept json
// @Produce json
// @Param request body types.RegisterPushTokenRequest true "Push token registration"
// @Success 200 {object} types.PushToken
// @Failure 400 {object} docs.ErrorResponse "Invalid token or member"
// @Failure 500 {object} docs.ErrorResponse "Internal Server Error"
// @Router /notification-tokens [post]
func (h *PushTokenHandler) RegisterPushToken(c *gin.Context) {
	var req types.RegisterPushTokenRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	token, err := h.tokens.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// DeregisterPushToken godoc
// @Summary Remove a push notification token
// @Tags notification-tokens
// @Accept json
// @Produce json
// @Param request body types.DeregisterPushTokenRequest true "Token to remove"
// @Success 200 {object} docs.SuccessResponse
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Router /notification-tokens [delete]
func (h *PushTokenHandler) DeregisterPushToken(c *gin.Context) {
	var req types.DeregisterPushTokenRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	if err := h.tokens.Unregister(c.Request.Context(), req.Token); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
