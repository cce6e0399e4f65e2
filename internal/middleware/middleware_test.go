package middleware

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(engine *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := perform(engine, "GET", "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	w = perform(engine, "GET", "/", "", map[string]string{HeaderXRequestID: "abc"})
	assert.Equal(t, "abc", w.Header().Get(HeaderXRequestID))
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Recovery())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := perform(engine, "GET", "/", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestErrorHandler(t *testing.T) {
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/missing", func(c *gin.Context) {
		c.Error(apperrors.NewPersistenceError(apperrors.PersistenceNotFound, "staffData", "x", nil))
	})
	engine.GET("/auth", func(c *gin.Context) {
		c.Error(apperrors.NewAuthError(apperrors.EmailInUse, nil))
	})
	engine.GET("/plain", func(c *gin.Context) {
		c.Error(errors.New("something broke"))
	})

	assert.Equal(t, http.StatusNotFound, perform(engine, "GET", "/missing", "", nil).Code)
	assert.Equal(t, http.StatusConflict, perform(engine, "GET", "/auth", "", nil).Code)

	w := perform(engine, "GET", "/plain", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "something broke")
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: 2})
	engine := gin.New()
	engine.Use(limiter.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(engine, "GET", "/", "", nil).Code)
	assert.Equal(t, http.StatusOK, perform(engine, "GET", "/", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(engine, "GET", "/", "", nil).Code)

	// other clients have their own bucket
	w := perform(engine, "GET", "/", "", map[string]string{"X-Forwarded-For": "10.1.2.3"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowOrigins = []string{"http://clinic.test"}
	engine := gin.New()
	engine.Use(CORS(config))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(engine, "OPTIONS", "/", "", map[string]string{"Origin": "http://clinic.test"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://clinic.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = perform(engine, "OPTIONS", "/", "", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(engine, "GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8}))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(engine, "POST", "/", `{"a":"0123456789"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, http.StatusOK, perform(engine, "POST", "/", `{}`, nil).Code)
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(engine, "GET", "/", "", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

type lineItemRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Role   string `json:"role" binding:"required,role"`
	Timing string `json:"timing" binding:"omitempty,timing"`
}

func TestBindJSON(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	engine := gin.New()
	engine.POST("/", func(c *gin.Context) {
		var req lineItemRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})

	w := perform(engine, "POST", "/", `{"email":"doc@example.com","role":"doctor","timing":"bedtime"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(engine, "POST", "/", `{"email":"nope","role":"janitor","timing":"noon"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	details, err := json.Marshal(resp.Error.Details)
	require.NoError(t, err)
	var fields []ValidationError
	require.NoError(t, json.Unmarshal(details, &fields))
	assert.ElementsMatch(t, []ValidationError{
		{Field: "email", Message: errorMessages["email"]},
		{Field: "role", Message: errorMessages["role"]},
		{Field: "timing", Message: errorMessages["timing"]},
	}, fields)

	w = perform(engine, "POST", "/", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, decode(t, w).Error.Details)
}

func TestRoleValidatorMatchesModel(t *testing.T) {
	assert.True(t, model.RoleDoctor.Valid())
	assert.False(t, model.Role("admin").Valid())
}

func TestCompress(t *testing.T) {
	engine := gin.New()
	engine.Use(Compress(DefaultCompressConfig()))
	engine.GET("/data", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"name": strings.Repeat("a", 100)}) })
	engine.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(engine, "GET", "/data", "", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"`+strings.Repeat("a", 100)+`"}`, string(body))

	w = perform(engine, "GET", "/data", "", nil)
	assert.Empty(t, w.Header().Get("Content-Encoding"))

	w = perform(engine, "GET", "/empty", "", map[string]string{"Accept-Encoding": "gzip"})
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Zero(t, w.Body.Len())
}

func TestVersion(t *testing.T) {
	engine := gin.New()
	engine.Use(Version(DefaultVersionConfig()))
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextAPIVersion)) })

	w := perform(engine, "GET", "/", "", nil)
	assert.Equal(t, "1.0", w.Body.String())
	assert.Equal(t, "1.0", w.Header().Get(HeaderAPIVersion))

	w = perform(engine, "GET", "/", "", map[string]string{HeaderAcceptVersion: "2.0"})
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestCache(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders())
	cached := engine.Group("", Cache(CacheConfig{MaxAge: 5 * time.Second}))
	cached.GET("/queue", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "public, max-age=5", perform(engine, "GET", "/queue", "", nil).Header().Get("Cache-Control"))
	assert.Equal(t, "no-store", perform(engine, "GET", "/private", "", nil).Header().Get("Cache-Control"))
}
