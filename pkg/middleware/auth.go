package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/contextkeys"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/session"
)

// UserLoader loads the user a session belongs to
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*auth.User, error)
}

// SessionMiddleware attaches the signed-in user to requests
type SessionMiddleware struct {
	sessions   *session.Manager
	users      UserLoader
	cookieName string
	logger     *observability.Logger
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(sessions *session.Manager, users UserLoader, cookieName string, logger *observability.Logger) *SessionMiddleware {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &SessionMiddleware{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Handler resolves the session, if any, and continues with or without a user
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r, m.cookieName)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		authCtx := m.resolve(r.Context(), token)
		if authCtx == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID := strconv.FormatInt(authCtx.User.ID, 10)
		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		ctx = contextkeys.WithUserID(ctx, userID)
		ctx = observability.WithLogger(ctx, observability.FromContext(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) resolve(ctx context.Context, token string) *auth.AuthContext {
	s, err := m.sessions.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			m.logger.WithError(err).Error("Session lookup failed")
		}
		return nil
	}

	user, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		if !errs.IsNotFound(err) {
			m.logger.WithError(err).WithField("user_id", s.UserID).Error("Failed to load session user")
			return nil
		}
		user = nil
	}

	if user == nil || !user.Active {
		// the account is gone or was deactivated after sign-in
		if err := m.sessions.Destroy(ctx, token); err != nil {
			m.logger.WithError(err).Warn("Failed to drop stale session")
		}
		return nil
	}

	return &auth.AuthContext{
		User:      user,
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt,
	}
}

// TokenFromRequest returns the session token from the cookie or the
// Authorization header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	authCtx, ok := contextkeys.Auth(r.Context()).(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// CurrentUser returns the signed-in user or nil
func CurrentUser(r *http.Request) *auth.User {
	authCtx := GetAuthContext(r)
	if authCtx == nil {
		return nil
	}
	return authCtx.User
}

// RequireAuthenticated rejects requests without a signed-in user
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CurrentUser(r).IsAuthenticated() {
			httputil.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
