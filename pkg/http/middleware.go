package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"liyu1981.xyz/iot-access-telemetry/pkg/auth"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
)

const (
	ctxKeyRequestID = "request_id"
	ctxKeySubject   = "subject"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(common.HeaderRequestID, id)
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		common.GetLoggerWith(common.LoggerNameRestfulServer).Info("request",
			zap.String(common.LoggerFieldRequestID, c.GetString(ctxKeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// AdminAuth requires an HS256 bearer token with role=admin. With an empty
// secret every request passes.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		tokenString, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			return
		}

		claims, err := auth.ParseAdminToken(secret, tokenString)
		if err != nil {
			common.GetLoggerWith(common.LoggerNameRestfulServer).Warn("admin token rejected",
				zap.String(common.LoggerFieldRequestID, c.GetString(ctxKeyRequestID)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		c.Set(ctxKeySubject, claims.Subject)
		c.Next()
	}
}
