package audit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/httputil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Handlers provides HTTP handlers for the audit log API
type Handlers struct {
	store Store
}

// NewHandlers creates new audit handlers
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes registers audit log routes. Callers mount them behind the
// full_admin guard.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/audit/events", h.listEvents).Methods("GET")
	router.HandleFunc("/audit/events/{id}", h.getEvent).Methods("GET")
	router.HandleFunc("/audit/export", h.exportEvents).Methods("GET")
}

// listEvents handles GET /audit/events
func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	events, err := h.store.Search(r.Context(), filter)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	total, err := h.store.Count(r.Context(), filter)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"events": events,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// getEvent handles GET /audit/events/{id}
func (h *Handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	event, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, event)
}

// exportEvents handles GET /audit/export
func (h *Handlers) exportEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}
	filter.Limit = 0
	filter.Offset = 0

	format := ExportFormat(httputil.ParseQueryString(r, "format", string(ExportFormatJSON)))

	data, err := h.store.Export(r.Context(), filter, format)
	if err != nil {
		httputil.WriteDomainError(w, r, err)
		return
	}

	switch format {
	case ExportFormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	case ExportFormatNDJSON:
		w.Header().Set("Content-Type", "application/x-ndjson")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=audit-logs.%s", format))

	w.Write(data)
}

// parseFilter parses a search filter from query parameters
func parseFilter(r *http.Request) (SearchFilter, error) {
	query := r.URL.Query()
	filter := SearchFilter{
		TargetType: query.Get("target_type"),
		IPAddress:  query.Get("ip_address"),
		Text:       strings.TrimSpace(query.Get("q")),
		SortOrder:  query.Get("sort_order"),
	}

	var err error
	if filter.StartTime, err = parseTime(query.Get("start_time"), "start_time"); err != nil {
		return filter, err
	}
	if filter.EndTime, err = parseTime(query.Get("end_time"), "end_time"); err != nil {
		return filter, err
	}
	if filter.UserID, err = parseID(query.Get("user_id"), "user_id"); err != nil {
		return filter, err
	}
	if filter.TargetID, err = parseID(query.Get("target_id"), "target_id"); err != nil {
		return filter, err
	}

	for _, a := range strings.Split(query.Get("actions"), ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !Action(a).Valid() {
			return filter, errs.NewValidationError("actions", "unknown action: "+a)
		}
		filter.Actions = append(filter.Actions, Action(a))
	}

	filter.Limit, err = httputil.ParseQueryInt(r, "limit", defaultPageSize)
	if err != nil || filter.Limit <= 0 || filter.Limit > maxPageSize {
		return filter, errs.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
	}
	filter.Offset, err = httputil.ParseQueryInt(r, "offset", 0)
	if err != nil || filter.Offset < 0 {
		return filter, errs.NewValidationError("offset", "offset must be a non-negative integer")
	}

	return filter, nil
}

func parseTime(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errs.NewValidationError(field, field+" must be an RFC3339 timestamp")
	}
	return &t, nil
}

func parseID(value, field string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, errs.NewValidationError(field, field+" must be an integer")
	}
	return &id, nil
}
