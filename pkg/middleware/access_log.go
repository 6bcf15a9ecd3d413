package middleware

import (
	"net/http"
	"time"

	"NeighborWatch/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog writes one line per request.
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			l.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 JSON detail instead of a dropped connection.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		l.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
		response.Fail(c, http.StatusInternalServerError, "unexpected error")
	})
}
