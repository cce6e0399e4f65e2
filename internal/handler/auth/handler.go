package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/guard"
	"github.com/jwalitptl/clinic-api/internal/identity"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/session"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	sessions *session.Store
	accounts *identity.Service
	staff    repository.StaffRepository
	auth     *middleware.AuthMiddleware
}

func NewHandler(sessions *session.Store, accounts *identity.Service, staff repository.StaffRepository,
	auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		sessions: sessions,
		accounts: accounts,
		staff:    staff,
		auth:     auth,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/signup/:role", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.GET("/verify-email", h.VerifyEmail)

		signedIn := auth.Group("", h.auth.Authenticate())
		signedIn.POST("/logout", h.Logout)
		signedIn.POST("/resend-verification", h.ResendVerification)
		signedIn.GET("/me", h.Me)
	}
}

// SignUp creates an account and its staff profile and signs the new
// identity in. The role comes from the path when present.
func (h *Handler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if param := c.Param("role"); param != "" {
		req.Role = model.Role(param)
	}
	if !req.Role.Valid() {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "role must be doctor or receptionist", nil)
		return
	}

	sess := h.sessions.New()
	created, err := sess.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		h.sessions.Remove(sess.ID)
		h.respondAuthError(c, err)
		return
	}

	resp, err := h.sessionResponse(c, sess, created)
	if err != nil {
		c.Error(err)
		return
	}
	resp.Redirect = guard.LoginPath
	c.JSON(http.StatusCreated, httputil.Response{Success: true, Data: resp, Redirect: resp.Redirect})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	sess := h.sessions.New()
	signedIn, err := sess.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.sessions.Remove(sess.ID)
		h.respondAuthError(c, err)
		return
	}

	resp, err := h.sessionResponse(c, sess, signedIn)
	if err != nil {
		c.Error(err)
		return
	}
	httputil.RespondWithRedirect(c, http.StatusOK, resp, resp.Redirect)
}

func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if err := sess.SignOut(c.Request.Context()); err != nil {
		h.respondAuthError(c, err)
		return
	}
	h.sessions.Revoke(sess.ID)

	httputil.RespondWithRedirect(c, http.StatusOK, "logged out successfully", guard.LoginPath)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.EmailRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	sess := h.sessions.New()
	defer h.sessions.Remove(sess.ID)

	if err := sess.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "if the address is registered, a reset link has been sent")
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondAuthError(c, err)
		return
	}

	httputil.RespondWithRedirect(c, http.StatusOK, "password updated", guard.LoginPath)
}

// VerifyEmail completes the emailed verification link and marks the staff
// profile verified
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "verification token is required", nil)
		return
	}

	verified, continueURL, err := h.accounts.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	if err := h.staff.MarkEmailVerified(c.Request.Context(), verified.UID); err != nil {
		if !errors.IsNotFound(err) {
			c.Error(err)
			return
		}
		log.Warn().Str("uid", verified.UID).Msg("verified account has no staff profile")
	}

	if continueURL == "" {
		continueURL = guard.LoginPath
	}
	httputil.RespondWithRedirect(c, http.StatusOK, verified, continueURL)
}

func (h *Handler) ResendVerification(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if err := sess.ResendVerification(c.Request.Context()); err != nil {
		if err == session.ErrNotSignedIn {
			httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, err.Error(), guard.LoginPath)
			return
		}
		h.respondAuthError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "verification email sent")
}

// Me reports the session as the guard sees it
func (h *Handler) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	select {
	case <-sess.Ready():
	case <-c.Request.Context().Done():
		httputil.RespondWithStatus(c, http.StatusServiceUnavailable, "session is still loading", nil)
		return
	}

	state := sess.State()
	if state.Identity == nil {
		httputil.RespondWithErrorRedirect(c, http.StatusUnauthorized, "not signed in", guard.LoginPath)
		return
	}

	resp := &model.SessionResponse{
		Identity: state.Identity,
		Role:     state.Role,
		Redirect: HomeFor(state.Role),
	}
	if profile, err := h.staff.Get(c.Request.Context(), state.Identity.UID); err == nil {
		resp.Profile = profile
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) sessionResponse(c *gin.Context, sess *session.Session, signedIn *model.Identity) (*model.SessionResponse, error) {
	token, err := h.sessions.Issue(sess, signedIn)
	if err != nil {
		return nil, err
	}

	role := sess.CurrentRole()
	resp := &model.SessionResponse{
		Token:    token,
		Identity: signedIn,
		Role:     role,
		Redirect: HomeFor(role),
	}
	if profile, err := h.staff.Get(c.Request.Context(), signedIn.UID); err == nil {
		resp.Profile = profile
	}
	return resp, nil
}

func (h *Handler) respondAuthError(c *gin.Context, err error) {
	if httputil.StatusOf(err) >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("identity provider failure")
	}
	httputil.RespondWithError(c, err)
}

// HomeFor returns the dashboard path of role
func HomeFor(role *model.Role) string {
	if role == nil {
		return guard.HomePath
	}
	return "/" + string(*role) + "/dashboard"
}
