package handlers

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
)

// bindJSONOrError binds the body and records a validation error on failure.
// Callers return when it reports false.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request payload", err.Error()))
		return false
	}
	return true
}
