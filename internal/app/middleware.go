package app

import (
	"time"

	"github.com/hirmezb/tasktracker/internal/auth"
	"github.com/hirmezb/tasktracker/internal/logging"

	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per completed request.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"duration", time.Since(start).String(),
		}
		if uid := auth.UserIDFromContext(c); uid != "" {
			args = append(args, "user_id", uid)
		}
		ctx := c.Request.Context()
		switch {
		case c.Writer.Status() >= 500:
			log.Error(ctx, "http_request", args...)
		case c.Writer.Status() >= 400:
			log.Warn(ctx, "http_request", args...)
		default:
			log.Info(ctx, "http_request", args...)
		}
	}
}
