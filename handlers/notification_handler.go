package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

// NotificationHandler exposes push fan-out and the notification history.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// SendMatchNotification godoc
// @Summary Announce a new match
// @Description Pushes the match title, place and kick-off time to every registered device
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body types.MatchNotificationRequest true "Match to announce"
// @Success 200 {object} types.Notification
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Failure 500 {object} docs.ErrorResponse "Internal Server Error"
// @Router /send-match-notification [post]
func (h *NotificationHandler) SendMatchNotification(c *gin.Context) {
	var req types.MatchNotificationRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	n, err := h.notifications.NotifyMatchCreated(c.Request.Context(), req.MatchID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// AttendanceCreated godoc
// @Summary Announce a member joining a match
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body types.AttendanceNotificationRequest true "Attendance change"
// @Success 200 {object} types.Notification
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /notify/attendance-created [post]
func (h *NotificationHandler) AttendanceCreated(c *gin.Context) {
	h.attendance(c, types.NotificationAttendanceCreated)
}

// AttendanceDeleted godoc
// @Summary Announce a member leaving a match
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body types.AttendanceNotificationRequest true "Attendance change"
// @Success 200 {object} types.Notification
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /notify/attendance-deleted [post]
func (h *NotificationHandler) AttendanceDeleted(c *gin.Context) {
	h.attendance(c, types.NotificationAttendanceDeleted)
}

func (h *NotificationHandler) attendance(c *gin.Context, kind types.NotificationType) {
	var req types.AttendanceNotificationRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	n, err := h.notifications.NotifyAttendance(c.Request.Context(), kind, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// SendManual godoc
// @Summary Send a free-form push
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body types.ManualNotificationRequest true "Message"
// @Success 200 {object} types.Notification
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Router /notify/manual [post]
func (h *NotificationHandler) SendManual(c *gin.Context) {
	var req types.ManualNotificationRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	n, err := h.notifications.SendManual(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// ListNotifications godoc
// @Summary Recent notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Number of notifications to return (default 20, max 100)"
// @Success 200 {array} types.Notification
// @Failure 400 {object} docs.ErrorResponse "Invalid limit"
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = c.Error(apperrors.ValidationFailed("Invalid limit parameter", raw))
			return
		}
		limit = n
	}
	list, err := h.notifications.ListRecent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}
