package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/guard"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/session"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const ContextSession = "session"

type AuthMiddleware struct {
	sessions *session.Store
}

func NewAuthMiddleware(sessions *session.Store) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the bearer token to a session and stores it in the
// context. Requests without a usable token are sent to the login page.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, "missing authorization header", guard.LoginPath)
			return
		}

		sess, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("rejected session token")
			httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, "invalid or expired session", guard.LoginPath)
			return
		}

		c.Set(ContextSession, sess)
		c.Next()
	}
}

// RequireRole lets the request through only when the session's role is
// role. A session that is still loading is waited for.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, "authentication required", guard.LoginPath)
			return
		}

		decision := guard.Authorize(role, sess.State())
		if decision == guard.Pending {
			select {
			case <-sess.Ready():
				decision = guard.Authorize(role, sess.State())
			case <-c.Request.Context().Done():
				httputil.RespondWithStatus(c, http.StatusServiceUnavailable, "session is still loading", nil)
				return
			}
		}

		switch decision {
		case guard.Allow:
			c.Next()
		case guard.RedirectToLogin:
			httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, "authentication required", decision.Location())
		default:
			httputil.RespondWithErrorRedirect(c, http.StatusForbidden, "this area is restricted to the "+string(role)+" role", decision.Location())
		}
	}
}

// SessionFrom returns the session Authenticate stored, or nil
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// Identity returns the signed-in identity of the request's session, or nil
func Identity(c *gin.Context) *model.Identity {
	sess := SessionFrom(c)
	if sess == nil {
		return nil
	}
	return sess.State().Identity
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
