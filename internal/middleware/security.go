package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the response headers every JSON API response carries.
// Responses may contain patient data so they are never cached.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
