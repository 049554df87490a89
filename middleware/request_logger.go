package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id and logs it once it completes.
func RequestLogger(c *gin.Context) {
	start := time.Now()
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Writer.Header().Set(RequestIDHeader, requestID)

	c.Next()

	status := c.Writer.Status()
	fields := []interface{}{
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"latency_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
	}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Errorw("HTTP request", fields...)
	case status >= http.StatusBadRequest:
		logger.Warnw("HTTP request", fields...)
	default:
		logger.Infow("HTTP request", fields...)
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Panic recovered", "path", c.Request.URL.Path, "panic", r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, types.DataResponse{
				Status:  false,
				Code:    string(types.KindOrchestration),
				Message: "Error interno del servidor",
			})
		}
	}()
	c.Next()
}
