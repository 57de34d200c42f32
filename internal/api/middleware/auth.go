package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth marks every caller as anonymous (AUTH_MODE=none)
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, anonymousUser, "", "")
		c.Next()
	}
}

// GatewayAuth trusts the X-User-* headers written by an upstream gateway
// (AUTH_MODE=gateway). Only deploy it where the gateway is the sole ingress.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			unauthorized(c, "Missing X-User-ID header from gateway")
			return
		}
		setIdentity(c, userID, c.GetHeader("X-User-Email"), c.GetHeader("X-User-Role"))
		c.Next()
	}
}
