package config

import (
	"time"

	"reservation-system/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequestThreshold = 200 * time.Millisecond

// PerformanceLogger logs every request with its timing and flags slow ones.
func PerformanceLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLog := log.With(zap.String("request_id", c.GetString(utils.ContextRequestID)))
		c.Set(contextLogger, requestLog)

		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		requestLog.Info("HTTP request", fields...)
		if latency > slowRequestThreshold {
			requestLog.Warn("Slow request", fields...)
		}
	}
}
