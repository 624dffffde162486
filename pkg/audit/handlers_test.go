package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/errs"
)

type mockStore struct {
	entries    []*Entry
	lastFilter SearchFilter
}

func (m *mockStore) Recent(ctx context.Context, limit int, actorID *int64) ([]*Entry, error) {
	return m.entries, nil
}

func (m *mockStore) Search(ctx context.Context, filter SearchFilter) ([]*Entry, error) {
	m.lastFilter = filter
	return m.entries, nil
}

func (m *mockStore) Get(ctx context.Context, id int64) (*Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errs.NewNotFoundError("audit entry", id)
}

func (m *mockStore) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockStore) Export(ctx context.Context, filter SearchFilter, format ExportFormat) ([]byte, error) {
	m.lastFilter = filter
	switch format {
	case ExportFormatCSV:
		return exportCSV(m.entries)
	case ExportFormatNDJSON:
		return exportNDJSON(m.entries)
	case ExportFormatJSON:
		return exportJSON(m.entries)
	}
	return nil, errs.NewValidationError("format", "format must be one of: json, csv, ndjson")
}

func (m *mockStore) Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error) {
	return 0, nil
}

func newTestRouter(store Store) *mux.Router {
	router := mux.NewRouter()
	NewHandlers(store).RegisterRoutes(router)
	return router
}

func testEntries() []*Entry {
	return []*Entry{{
		ID:        1,
		Timestamp: time.Now().UTC(),
		UserID:    Int64Ptr(1),
		Username:  "admin",
		Action:    ActionCreateGroup,
		Details:   "Created new group: Finance",
	}}
}

func TestHandlers_ListEvents(t *testing.T) {
	store := &mockStore{entries: testEntries()}
	router := newTestRouter(store)

	req := httptest.NewRequest("GET", "/audit/events?limit=10&actions=create_group,login&user_id=1&q=finance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []Entry `json:"events"`
		Total  int64   `json:"total"`
		Limit  int     `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Events, 1)
	assert.Equal(t, int64(1), body.Total)
	assert.Equal(t, 10, body.Limit)

	assert.Equal(t, []Action{ActionCreateGroup, ActionLogin}, store.lastFilter.Actions)
	assert.Equal(t, int64(1), *store.lastFilter.UserID)
	assert.Equal(t, "finance", store.lastFilter.Text)
}

func TestHandlers_ListEvents_BadFilters(t *testing.T) {
	router := newTestRouter(&mockStore{})

	for _, query := range []string{
		"actions=drop_table",
		"limit=0",
		"limit=10000",
		"offset=-1",
		"user_id=abc",
		"start_time=yesterday",
	} {
		t.Run(query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", "/audit/events?"+query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlers_GetEvent(t *testing.T) {
	router := newTestRouter(&mockStore{entries: testEntries()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/audit/events/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/audit/events/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/audit/events/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_Export(t *testing.T) {
	store := &mockStore{entries: testEntries()}
	router := newTestRouter(store)

	tests := []struct {
		format      string
		contentType string
		status      int
	}{
		{"", "application/json", http.StatusOK},
		{"csv", "text/csv", http.StatusOK},
		{"ndjson", "application/x-ndjson", http.StatusOK},
		{"xml", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", "/audit/export?format="+tt.format, nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
				assert.Zero(t, store.lastFilter.Limit)
			}
		})
	}
}
