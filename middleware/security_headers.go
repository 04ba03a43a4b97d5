package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/config"
)

// SecurityHeadersMiddleware sets the static hardening headers. API responses
// carry payment data and are never cached.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	hsts := cfg.IsProduction()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
