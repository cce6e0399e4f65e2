package middleware

import (
	"compress/gzip"
	"strings"

	"github.com/gin-gonic/gin"
)

// gzipWriter starts compressing on the first body write, so empty responses
// such as 204 go out untouched
type gzipWriter struct {
	gin.ResponseWriter
	level int
	gz    *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	if g.gz == nil {
		h := g.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")

		gz, err := gzip.NewWriterLevel(g.ResponseWriter, g.level)
		if err != nil {
			return 0, err
		}
		g.gz = gz
	}
	return g.gz.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// CompressConfig represents compression configuration
type CompressConfig struct {
	Level int
	// Paths with these prefixes are never compressed
	Skip []string
}

func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Level: gzip.DefaultCompression,
		Skip:  []string{"/api/v1/health"},
	}
}

// Compress gzips responses for clients that accept it
func Compress(config CompressConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.Skip {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		w := &gzipWriter{ResponseWriter: c.Writer, level: config.Level}
		c.Writer = w
		// Middleware further out may still write, e.g. ErrorHandler
		defer func() {
			if w.gz != nil {
				w.gz.Close()
			}
			c.Writer = w.ResponseWriter
		}()

		c.Next()
	}
}
