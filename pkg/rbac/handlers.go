package rbac

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
)

// Handlers provides HTTP handlers for permission administration
type Handlers struct {
	admin *Admin
}

// NewHandlers creates new permission handlers
func NewHandlers(admin *Admin) *Handlers {
	return &Handlers{admin: admin}
}

// RegisterRoutes registers permission routes on an admin router
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/{id}/permissions", h.ListPermissions).Methods("GET")
	router.HandleFunc("/users/{id}/permissions", h.GrantPermission).Methods("POST")
	router.HandleFunc("/users/{id}/permissions/{permission}", h.RevokePermission).Methods("DELETE")
}

// GrantPermissionRequest is the body of a grant request
type GrantPermissionRequest struct {
	Permission string `json:"permission_type" validate:"required,oneof=full_admin group_manager manage_groups user_editor"`
	Scope      string `json:"scope" validate:"max=100"`
}

// ListPermissions handles GET /users/{id}/permissions
func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	perms, err := h.admin.UserPermissions(r.Context(), middleware.CurrentUser(r), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, perms)
}

// GrantPermission handles POST /users/{id}/permissions
func (h *Handlers) GrantPermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req GrantPermissionRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	perm := Permission(req.Permission)
	granted, err := h.admin.GrantPermission(r.Context(), middleware.CurrentUser(r), userID, perm, req.Scope, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	body := map[string]interface{}{
		"user_id":         userID,
		"permission_type": perm,
		"granted":         granted,
	}
	if !granted {
		httputil.WriteSuccess(w, body)
		return
	}
	httputil.WriteCreated(w, body)
}

// RevokePermission handles DELETE /users/{id}/permissions/{permission}
func (h *Handlers) RevokePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	perm := Permission(mux.Vars(r)["permission"])
	scope := httputil.ParseQueryString(r, "scope", "")

	revoked, err := h.admin.RevokePermission(r.Context(), middleware.CurrentUser(r), userID, perm, scope, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user_id":         userID,
		"permission_type": perm,
		"revoked":         revoked,
	})
}
