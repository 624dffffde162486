package rbac

import (
	"net/http"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
)

// RequirePermission creates middleware that requires perm for the session user
func (g *Guard) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Authorize(r.Context(), middleware.CurrentUser(r), perm)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if d.Reason == ReasonUnauthenticated {
				httputil.WriteUnauthorized(w, "Authentication required")
				return
			}
			httputil.WriteForbidden(w, "Insufficient permissions")
		})
	}
}
