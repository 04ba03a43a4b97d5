package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

// MatchHandler covers matches, their cost split and attendance.
type MatchHandler struct {
	matches *services.MatchService
}

func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// CreateMatch godoc
// @Summary Schedule a match
// @Tags matches
// @Accept json
// @Produce json
// @Param request body types.MatchCreate true "Match details"
// @Success 201 {object} types.Match
// @Failure 400 {object} docs.ErrorResponse "Invalid request"
// @Failure 500 {object} docs.ErrorResponse "Internal Server Error"
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req types.MatchCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	match, err := h.matches.CreateMatch(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// GetMatch godoc
// @Summary Get a match
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} types.Match
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matches.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// FinalizeShares godoc
// @Summary Split the field cost into shares
// @Description Replaces the roster and every unpaid share of the match. Fails with 409 once any share is paid.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body types.FinalizeSharesRequest true "Total and teams"
// @Success 200 {array} types.Share
// @Failure 400 {object} docs.ErrorResponse "Invalid teams or percentages"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Failure 409 {object} docs.ErrorResponse "Shares already paid"
// @Router /matches/{id}/shares [post]
func (h *MatchHandler) FinalizeShares(c *gin.Context) {
	var req types.FinalizeSharesRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	shares, err := h.matches.FinalizeShares(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, shares)
}

// ListShares godoc
// @Summary List the shares of a match
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {array} types.Share
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/shares [get]
func (h *MatchHandler) ListShares(c *gin.Context) {
	shares, err := h.matches.ListShares(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, shares)
}

// AddAttendance godoc
// @Summary Mark a member as playing
// @Tags matches
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body types.AttendanceRequest true "Member"
// @Success 200 {object} types.AttendanceChange
// @Failure 400 {object} docs.ErrorResponse "Invalid member id"
// @Failure 404 {object} docs.ErrorResponse "Match or member not found"
// @Router /matches/{id}/attendance [post]
func (h *MatchHandler) AddAttendance(c *gin.Context) {
	var req types.AttendanceRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	matchID := c.Param("id")
	changed, err := h.matches.AddAttendance(c.Request.Context(), matchID, req.MemberID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AttendanceChange{MatchID: matchID, MemberID: req.MemberID, Changed: changed})
}

// RemoveAttendance godoc
// @Summary Unmark a member
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Param memberId path string true "Member ID"
// @Success 200 {object} types.AttendanceChange
// @Failure 404 {object} docs.ErrorResponse "Match or member not found"
// @Router /matches/{id}/attendance/{memberId} [delete]
func (h *MatchHandler) RemoveAttendance(c *gin.Context) {
	matchID, memberID := c.Param("id"), c.Param("memberId")
	changed, err := h.matches.RemoveAttendance(c.Request.Context(), matchID, memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AttendanceChange{MatchID: matchID, MemberID: memberID, Changed: changed})
}

// ListAttendance godoc
// @Summary Members playing a match
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {array} types.Attendance
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/attendance [get]
func (h *MatchHandler) ListAttendance(c *gin.Context) {
	list, err := h.matches.ListAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}
