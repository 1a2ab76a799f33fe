package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell-press/inkwell/log"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// HTTPLogMiddleware logs every request with a trace ID and stores a
// request-scoped logger in the request context.
func HTTPLogMiddleware(moduleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Header(HeaderRequestID, requestID)
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
			c.Header(HeaderTraceID, traceID)
		}

		logger := log.New(moduleName).WithTraceID(traceID).
			WithField("request_id", requestID).
			WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithField("client_ip", c.ClientIP())

		ctx := logger.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"status":     statusCode,
			"latency_ms": latency.Milliseconds(),
			"bytes":      c.Writer.Size(),
			"errors":     c.Errors.String(),
		}
		msg := c.Request.Method + " " + c.Request.URL.Path

		switch {
		case len(c.Errors) > 0 || statusCode >= 500:
			logger.Error(nil, msg, fields)
		case statusCode >= 400:
			logger.Warn(msg, fields)
		default:
			logger.Info(msg, fields)
		}
	}
}

// GetRequestLogger retrieves the request-scoped logger.
func GetRequestLogger(c *gin.Context) *log.Logger {
	return log.FromContext(c.Request.Context())
}

// RequestInfo logs an info message for the current request.
func RequestInfo(c *gin.Context, msg string, fields ...map[string]interface{}) {
	GetRequestLogger(c).Info(msg, fields...)
}

// RequestWarn logs a warning message for the current request.
func RequestWarn(c *gin.Context, msg string, fields ...map[string]interface{}) {
	GetRequestLogger(c).Warn(msg, fields...)
}

// RequestError logs an error message for the current request.
func RequestError(c *gin.Context, err error, msg string, fields ...map[string]interface{}) {
	GetRequestLogger(c).Error(err, msg, fields...)
}
