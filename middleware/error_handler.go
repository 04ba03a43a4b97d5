package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/logger"
)

// ErrorResponse is the body of every failed request. Error repeats Message
// for clients that only read {error}.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func newErrorResponse(errType errors.ErrorType, message string, status int) ErrorResponse {
	return ErrorResponse{
		Type:    string(errType),
		Message: message,
		Code:    strconv.Itoa(status),
		Error:   message,
	}
}

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		if appError, ok := errors.As(err); ok {
			status := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, status, fmt.Sprintf("%s error", appError.Type))

			resp := newErrorResponse(appError.Type, appError.Message, status)
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == errors.ValidationError ||
				appError.Type == errors.NotFoundError ||
				appError.Type == errors.ConflictError ||
				appError.Type == errors.RateLimitError) {
				resp.Details = appError.Detail
			}
			c.JSON(status, resp)
			return
		}

		switch last.Type {
		case gin.ErrorTypeBind:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			resp := newErrorResponse(errors.ValidationError, "Failed to bind request", http.StatusBadRequest)
			resp.Details = err.Error()
			c.JSON(http.StatusBadRequest, resp)
		case gin.ErrorTypePublic:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Public error")
			c.JSON(http.StatusBadRequest, newErrorResponse(errors.ValidationError, err.Error(), http.StatusBadRequest))
		default:
			logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
			resp := newErrorResponse(errors.ServerError, "Internal Server Error", http.StatusInternalServerError)
			if gin.IsDebugging() {
				resp.Details = err.Error()
			}
			c.JSON(http.StatusInternalServerError, resp)
		}
	}
}
