package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// gin context keys shared by the auth modes
const (
	keyRequestID = "request_id"
	keyUserID    = "user_id_str"
	keyUserEmail = "user_email"
	keyUserRole  = "user_role"

	anonymousUser = "anonymous"
)

func setIdentity(c *gin.Context, userID, email, role string) {
	c.Set(keyUserID, userID)
	if email != "" {
		c.Set(keyUserEmail, email)
	}
	if role != "" {
		c.Set(keyUserRole, role)
	}
}

func unauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     reason,
		"code":      "UNAUTHORIZED",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetUserID returns the caller identity set by the active auth mode
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(keyUserID)
	return id, id != ""
}

// GetUserEmail returns the caller email when the auth mode provides one
func GetUserEmail(c *gin.Context) (string, bool) {
	email := c.GetString(keyUserEmail)
	return email, email != ""
}

// GetRequestID returns the id assigned by RequestTracking
func GetRequestID(c *gin.Context) string {
	return c.GetString(keyRequestID)
}
