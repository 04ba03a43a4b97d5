package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

const maxConfigBody = 256 << 10

// ConfigHandler serves scoring actions and free-form JSON settings.
type ConfigHandler struct {
	configs *services.ConfigService
}

func NewConfigHandler(configs *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// ListActionConfigs godoc
// @Summary Scoring actions
// @Description Built-in actions first (with their stored or default weight), then custom ones
// @Tags configs
// @Produce json
// @Success 200 {array} types.ActionConfig
// @Router /action-configs [get]
func (h *ConfigHandler) ListActionConfigs(c *gin.Context) {
	list, err := h.configs.ListActionConfigs(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpsertActionConfig godoc
// @Summary Create or change a scoring action
// @Tags configs
// @Accept json
// @Produce json
// @Param key path string true "Action key"
// @Param request body types.ActionConfigUpdate true "Action"
// @Success 200 {object} types.ActionConfig
// @Failure 400 {object} docs.ErrorResponse "Invalid key or weight"
// @Router /action-configs/{key} [put]
func (h *ConfigHandler) UpsertActionConfig(c *gin.Context) {
	var req types.ActionConfigUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	cfg, err := h.configs.UpsertActionConfig(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetConfig godoc
// @Summary Read a JSON setting
// @Tags configs
// @Produce json
// @Param key path string true "Setting key, e.g. last_match"
// @Success 200 {object} object
// @Failure 404 {object} docs.ErrorResponse "Unknown key"
// @Router /configs/{key} [get]
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	value, err := h.configs.GetConfig(c.Request.Context(), c.Param("key"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

// PutConfig godoc
// @Summary Store a JSON setting
// @Description The body is stored as-is and must be valid JSON
// @Tags configs
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body object true "Any JSON value"
// @Success 200 {object} docs.SuccessResponse
// @Failure 400 {object} docs.ErrorResponse "Invalid key or JSON"
// @Router /configs/{key} [put]
func (h *ConfigHandler) PutConfig(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxConfigBody))
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Unreadable body", err.Error()))
		return
	}
	if err := h.configs.PutConfig(c.Request.Context(), c.Param("key"), json.RawMessage(body)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
