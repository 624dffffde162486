package directory

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
)

// Handlers provides HTTP handlers for the user directory
type Handlers struct {
	manager *Manager
}

// NewHandlers creates new directory handlers
func NewHandlers(manager *Manager) *Handlers {
	return &Handlers{manager: manager}
}

// RegisterRoutes registers directory routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/users/departments", h.ListDepartments).Methods("GET")
	router.HandleFunc("/users/search", h.SearchUsers).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods("PUT")
}

// UpdateUserRequest carries the profile fields to change. Omitted fields
// are left alone. Lengths are checked by the manager, and only for fields
// the actor may edit.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Location    *string `json:"location"`
	Role        *string `json:"role"`
	Manager     *string `json:"manager"`
	Department  *string `json:"department"`
	Phone       *string `json:"phone"`
}

// Fields returns the supplied values keyed by field
func (req *UpdateUserRequest) Fields() map[Field]string {
	fields := make(map[Field]string)
	set := func(f Field, v *string) {
		if v != nil {
			fields[f] = *v
		}
	}
	set(FieldDisplayName, req.DisplayName)
	set(FieldLocation, req.Location)
	set(FieldRole, req.Role)
	set(FieldManager, req.Manager)
	set(FieldDepartment, req.Department)
	set(FieldPhone, req.Phone)
	return fields
}

// ListUsers handles GET /users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.manager.ListUsers(r.Context(), ListFilter{
		Search:     httputil.ParseQueryString(r, "search", ""),
		Department: httputil.ParseQueryString(r, "department", ""),
		Page:       page,
	})
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

// ListDepartments handles GET /users/departments
func (h *Handlers) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.manager.Departments(r.Context())
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, departments)
}

// SearchUsers handles GET /users/search?q=
func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	results, err := h.manager.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, results)
}

// GetUser handles GET /users/{id}
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.manager.GetUser(r.Context(), middleware.CurrentUser(r), id)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, detail)
}

// UpdateUser handles PUT /users/{id}
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.manager.UpdateUser(r.Context(), middleware.CurrentUser(r), id, req.Fields(), httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, user)
}
