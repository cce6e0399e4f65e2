package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	HeaderAcceptVersion = "Accept-Version"
	HeaderAPIVersion    = "X-API-Version"
	ContextAPIVersion   = "api_version"
)

// VersionConfig represents version middleware configuration
type VersionConfig struct {
	Current   string
	Supported []string
}

func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		Current:   "1.0",
		Supported: []string{"1.0"},
	}
}

// Version checks the Accept-Version header against the supported versions.
// Requests without the header get the current version.
func Version(config VersionConfig) gin.HandlerFunc {
	supported := make(map[string]struct{}, len(config.Supported))
	for _, v := range config.Supported {
		supported[v] = struct{}{}
	}

	return func(c *gin.Context) {
		requested := c.GetHeader(HeaderAcceptVersion)
		if requested == "" {
			requested = config.Current
		}

		if _, ok := supported[requested]; !ok {
			httputil.RespondWithStatus(c, http.StatusNotAcceptable, "API version "+requested+" is not supported", config.Supported)
			return
		}

		c.Set(ContextAPIVersion, requested)
		c.Header(HeaderAPIVersion, requested)
		c.Next()
	}
}
