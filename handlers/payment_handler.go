package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreatePaymentLink godoc
// @Summary Create a payOS checkout link
// @Description Bundles the member's pending shares (and optional post-match ratings) into one payOS order
// @Tags payments
// @Accept json
// @Produce json
// @Param request body types.CreatePaymentLinkRequest true "Shares to pay"
// @Success 200 {object} types.PaymentLinkResponse
// @Failure 400 {object} docs.ErrorResponse "Invalid shares or ratings"
// @Failure 404 {object} docs.ErrorResponse "Unknown member or share"
// @Failure 429 {object} docs.ErrorResponse "Too many requests"
// @Failure 500 {object} docs.ErrorResponse "Gateway or database failure"
// @Router /create-payment-link [post]
func (h *PaymentHandler) CreatePaymentLink(c *gin.Context) {
	var req types.CreatePaymentLinkRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	link, err := h.payments.CreatePaymentLink(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Webhook godoc
// @Summary payOS payment notification
// @Description Verifies the checksum and settles the order. Anything other than a storage failure is acknowledged with 200 so payOS stops retrying.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} docs.WebhookAck
// @Failure 500 {object} docs.ErrorResponse "Settlement failed; payOS will retry"
// @Router /payos-webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.GetLogger().Named("payments").Warnw("Unreadable webhook body", "error", err)
		_ = c.Error(apperrors.ValidationFailed("Unreadable body", err.Error()))
		return
	}

	if _, err := h.payments.HandleWebhook(c.Request.Context(), body); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
