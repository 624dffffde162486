package groups

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
)

// Handlers provides HTTP handlers for distribution groups
type Handlers struct {
	manager *Manager
	guard   *rbac.Guard
}

// NewHandlers creates new group handlers. When guard is set, mutating
// routes are rejected before the body is read.
func NewHandlers(manager *Manager, guard *rbac.Guard) *Handlers {
	return &Handlers{manager: manager, guard: guard}
}

// RegisterRoutes registers group routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/groups", h.ListGroups).Methods("GET")
	router.Handle("/groups", h.manageGroups(h.CreateGroup)).Methods("POST")
	router.HandleFunc("/groups/{id:[0-9]+}", h.GetGroup).Methods("GET")
	router.Handle("/groups/{id:[0-9]+}/members", h.manageGroups(h.AddMember)).Methods("POST")
	router.Handle("/groups/{id:[0-9]+}/members/{user_id:[0-9]+}", h.manageGroups(h.RemoveMember)).Methods("DELETE")
	router.HandleFunc("/users/{id:[0-9]+}/groups", h.UserGroups).Methods("GET")
}

func (h *Handlers) manageGroups(fn http.HandlerFunc) http.Handler {
	if h.guard == nil {
		return fn
	}
	return h.guard.RequirePermission(rbac.ManageGroups)(fn)
}

// AddMemberRequest is the body of an add member request
type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// MembershipResponse reports the outcome of a membership change
type MembershipResponse struct {
	GroupID int64            `json:"group_id"`
	UserID  int64            `json:"user_id"`
	Result  MembershipResult `json:"result"`
	Changed bool             `json:"changed"`
}

// ListGroups handles GET /groups
func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.manager.ListGroups(r.Context(), ListFilter{
		Search: httputil.ParseQueryString(r, "search", ""),
		Page:   page,
	})
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

// CreateGroup handles POST /groups
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.manager.CreateGroup(r.Context(), middleware.CurrentUser(r), req, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteCreated(w, group)
}

// GetGroup handles GET /groups/{id}
func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.manager.GetGroupDetail(r.Context(), middleware.CurrentUser(r), id)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, detail)
}

// AddMember handles POST /groups/{id}/members
func (h *Handlers) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.manager.AddMember(r.Context(), middleware.CurrentUser(r), groupID, req.UserID, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	resp := MembershipResponse{GroupID: groupID, UserID: req.UserID, Result: result, Changed: result.Changed()}
	if result.Changed() {
		httputil.WriteCreated(w, resp)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// RemoveMember handles DELETE /groups/{id}/members/{user_id}
func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathInt64OrError(w, r, "user_id")
	if !ok {
		return
	}

	result, err := h.manager.RemoveMember(r.Context(), middleware.CurrentUser(r), groupID, userID, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, MembershipResponse{GroupID: groupID, UserID: userID, Result: result, Changed: result.Changed()})
}

// UserGroups handles GET /users/{id}/groups
func (h *Handlers) UserGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	groups, err := h.manager.GroupsForUser(r.Context(), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, groups)
}
