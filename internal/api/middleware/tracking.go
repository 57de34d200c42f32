package middleware

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
)

const (
	requestIDHeader    = "X-Request-ID"
	sentryFlushTimeout = 2 * time.Second
)

// RequestTracking assigns a request id, logs the outcome and feeds route metrics.
// An incoming X-Request-ID is reused so gateway and service logs line up.
func RequestTracking(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(keyRequestID, requestID)
		c.Header(requestIDHeader, requestID)

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("request_id", requestID)
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		status := c.Writer.Status()
		fields := logger.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"route":       route,
			"status_code": status,
			"duration_ms": elapsed.Milliseconds(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", nil, fields)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields)
		default:
			logger.Info("Request completed", fields)
		}

		recorder.APIRequest(c.Request.Context(), route, status, elapsed)
	}
}

// SentryMiddleware attaches a Sentry hub to every request
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: sentryFlushTimeout,
	})
}

// RecoverWithSentry turns a handler panic into a 500 and reports it with the caller attached
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			requestID := GetRequestID(c)
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetRequest(c.Request)
					scope.SetTag("request_id", requestID)
					if userID, ok := GetUserID(c); ok {
						scope.SetUser(sentry.User{ID: userID})
					}
					hub.RecoverWithContext(c.Request.Context(), recovered)
				})
			}

			logger.Error("Panic recovered", nil, logger.Fields{
				"request_id": requestID,
				"panic":      recovered,
				"path":       c.Request.URL.Path,
			})

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"code":       "INTERNAL_ERROR",
				"request_id": requestID,
				"timestamp":  time.Now().UTC().Format(time.RFC3339),
			})
		}()
		c.Next()
	}
}
