// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sameOriginOnly rejects requests carrying a foreign Origin header. cors
// passes an Origin equal to the request host and aborts with 403 for any
// origin the func does not allow, which is all of them.
func sameOriginOnly() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return false },
		AllowMethods:    []string{http.MethodGet, http.MethodPost},
		MaxAge:          time.Hour,
	})
}

// rejectCrossSite refuses state-changing requests that the browser marks
// as coming from another site, covering clients that omit Origin.
func rejectCrossSite(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		switch c.GetHeader("Sec-Fetch-Site") {
		case "", "same-origin", "none":
			c.Next()
		default:
			logger.Warn("rejected cross-site request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")))
			c.AbortWithStatus(http.StatusForbidden)
		}
	}
}
