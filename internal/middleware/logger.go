package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// HeaderCorrelationID carries the id that ties a request to its
	// validation result and log lines.
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"

	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID reads X-Correlation-ID (falling back to X-Request-ID) or
// generates one, stores it in the context and echoes it on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if id == "" {
			id = c.GetHeader(HeaderRequestID)
		}
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyCorrelationID, id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" outside CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// Logger logs each HTTP request with method, path, status, and latency.
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"correlation_id": GetCorrelationID(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         status,
			"latency":        time.Since(start).String(),
			"client_ip":      c.ClientIP(),
		})
		if subject := GetSubject(c); subject != "" {
			entry = entry.WithField("subject", subject)
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("http request")
		case status >= http.StatusBadRequest:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

// Recovery recovers from panics, logs them and returns a 500 envelope.
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"correlation_id": GetCorrelationID(c),
			"path":           c.Request.URL.Path,
			"panic":          recovered,
		}).Error("middleware.Recovery: panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
