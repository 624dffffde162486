package report

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
)

// Handlers serves membership reports
type Handlers struct {
	generator *Generator
}

// NewHandlers creates new report handlers
func NewHandlers(generator *Generator) *Handlers {
	return &Handlers{generator: generator}
}

// RegisterRoutes registers report routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/groups/{id:[0-9]+}/report", h.GroupReport).Methods("GET")
}

// GroupReport handles GET /groups/{id}/report?format=html|pdf
func (h *Handlers) GroupReport(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	format := httputil.ParseQueryString(r, "format", DefaultFormat)

	out, err := h.generator.Generate(r.Context(), middleware.CurrentUser(r), id, format, httputil.ClientIP(r))
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	disposition := "attachment"
	if out.Format == FormatHTML {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, out.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
