package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
)

// Handlers provides HTTP handlers for the dashboard and admin overview
type Handlers struct {
	service *Service
}

// NewHandlers creates new dashboard handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the dashboard route
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
}

// RegisterAdminRoutes registers the overview on an admin router
func (h *Handlers) RegisterAdminRoutes(router *mux.Router) {
	router.HandleFunc("/overview", h.GetOverview).Methods("GET")
}

// GetDashboard handles GET /dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), middleware.CurrentUser(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, d)
}

// GetOverview handles GET /admin/overview
func (h *Handlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Overview(r.Context(), middleware.CurrentUser(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, o)
}
