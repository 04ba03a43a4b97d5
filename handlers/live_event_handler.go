package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

type LiveEventHandler struct {
	events *services.LiveEventService
}

func NewLiveEventHandler(events *services.LiveEventService) *LiveEventHandler {
	return &LiveEventHandler{events: events}
}

// AddEvent godoc
// @Summary Record a live match action
// @Tags live-events
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body types.LiveEventCreate true "Action"
// @Success 201 {object} types.LiveEvent
// @Failure 400 {object} docs.ErrorResponse "Unknown action or member"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/live-events [post]
func (h *LiveEventHandler) AddEvent(c *gin.Context) {
	var req types.LiveEventCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	event, err := h.events.AddEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// DeleteEvent godoc
// @Summary Undo a live match action
// @Tags live-events
// @Param id path string true "Match ID"
// @Param eventId path string true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} docs.ErrorResponse "Match or event not found"
// @Router /matches/{id}/live-events/{eventId} [delete]
func (h *LiveEventHandler) DeleteEvent(c *gin.Context) {
	if err := h.events.DeleteEvent(c.Request.Context(), c.Param("id"), c.Param("eventId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEvents godoc
// @Summary Live actions of a match in order
// @Tags live-events
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {array} types.LiveEvent
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/live-events [get]
func (h *LiveEventHandler) ListEvents(c *gin.Context) {
	events, err := h.events.ListEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Stats godoc
// @Summary Leaderboard of a match
// @Description Aggregates the live actions with the configured weights and attaches average ratings
// @Tags live-events
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} services.MatchStats
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/stats [get]
func (h *LiveEventHandler) Stats(c *gin.Context) {
	stats, err := h.events.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
