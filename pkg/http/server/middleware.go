package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id. Its lowercase form is the gRPC
// metadata key, so handlers can forward it with grpcsrv.WithRequestID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID returns the id assigned by RequestLogger, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger assigns every request an id and logs its outcome.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("HTTP request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case c.Writer.Status() >= 400:
			logger.Warn("HTTP request rejected", fields...)
		default:
			logger.Info("HTTP request completed", fields...)
		}
	}
}
