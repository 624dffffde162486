package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
	"github.com/frezendesp/GroupManagement/pkg/session"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers handles sign-in, sign-out and the current user
type AuthHandlers struct {
	service     *auth.Service
	sessions    *session.Manager
	permissions *rbac.PermissionChecker
	cookie      CookieConfig
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(service *auth.Service, sessions *session.Manager, permissions *rbac.PermissionChecker, cookie CookieConfig) *AuthHandlers {
	return &AuthHandlers{
		service:     service,
		sessions:    sessions,
		permissions: permissions,
		cookie:      cookie,
	}
}

// RegisterRoutes registers authentication routes. A nil limiter leaves
// login unthrottled.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router, limiter middleware.Limiter, logger *observability.Logger) {
	var login http.Handler = http.HandlerFunc(h.Login)
	if limiter != nil {
		login = middleware.RateLimit(limiter, logger)(login)
	}
	router.Handle("/auth/login", login).Methods("POST")
	router.Handle("/auth/logout", middleware.RequireAuthenticated(http.HandlerFunc(h.Logout))).Methods("POST")
	router.Handle("/auth/me", middleware.RequireAuthenticated(http.HandlerFunc(h.Me))).Methods("GET")
}

// LoginRequest is the body of a login request
type LoginRequest struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Password string `json:"password" validate:"required,max=200"`
}

// SessionResponse describes the signed-in user
type SessionResponse struct {
	User        *auth.User         `json:"user"`
	Permissions rbac.PermissionSet `json:"permissions"`
	Token       string             `json:"token,omitempty"`
	ExpiresAt   *time.Time         `json:"expires_at,omitempty"`
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	ip := httputil.ClientIP(r)
	user, err := h.service.Login(r.Context(), req.Username, req.Password, ip)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "Invalid username or password")
		return
	case errors.Is(err, auth.ErrInactiveUser):
		httputil.WriteForbidden(w, "Your account has been deactivated")
		return
	case err != nil:
		httputil.WriteDomainError(w, r, err)
		return
	}

	token, sess, err := h.sessions.Create(r.Context(), user.ID, ip)
	if err != nil {
		httputil.WriteDomainError(w, r, errs.Failed("create session", err))
		return
	}

	perms, err := h.permissions.EffectivePermissions(r.Context(), user)
	if err != nil {
		httputil.WriteDomainError(w, r, errs.Failed("load permissions", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	expires := sess.ExpiresAt
	httputil.WriteSuccess(w, SessionResponse{
		User:        user,
		Permissions: perms,
		Token:       token,
		ExpiresAt:   &expires,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), middleware.CurrentUser(r), httputil.ClientIP(r))

	if err := h.sessions.Destroy(r.Context(), middleware.TokenFromRequest(r, h.cookie.Name)); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("Failed to destroy session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, map[string]string{"message": "You have been logged out."})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	perms, err := h.permissions.EffectivePermissions(r.Context(), authCtx.User)
	if err != nil {
		httputil.WriteDomainError(w, r, errs.Failed("load permissions", err))
		return
	}

	resp := SessionResponse{User: authCtx.User, Permissions: perms}
	if !authCtx.ExpiresAt.IsZero() {
		expires := authCtx.ExpiresAt
		resp.ExpiresAt = &expires
	}
	httputil.WriteSuccess(w, resp)
}
