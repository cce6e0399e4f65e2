package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge  time.Duration
	Private bool
	Vary    []string
}

// Cache lets GET responses be reused for MaxAge. It overrides the no-store
// default of SecurityHeaders, so mount it only on routes that may be cached.
func Cache(config CacheConfig) gin.HandlerFunc {
	scope := "public"
	if config.Private {
		scope = "private"
	}
	value := scope + ", max-age=" + strconv.Itoa(int(config.MaxAge.Seconds()))

	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		c.Header("Cache-Control", value)
		for _, v := range config.Vary {
			c.Writer.Header().Add("Vary", v)
		}
		c.Next()
	}
}
