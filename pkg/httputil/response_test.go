package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/errs"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusCreated, map[string]int{"id": 7}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "validation",
			err:        errs.NewValidationError("name", "a group with this name already exists"),
			wantStatus: http.StatusBadRequest,
			wantError:  "a group with this name already exists",
			wantField:  "name",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("lookup: %w", errs.NewNotFoundError("group", 9)),
			wantStatus: http.StatusNotFound,
			wantError:  "group 9 not found",
		},
		{
			name:       "unauthenticated",
			err:        errs.ErrUnauthenticated,
			wantStatus: http.StatusUnauthorized,
			wantError:  "authentication required",
		},
		{
			name:       "authorization",
			err:        &errs.AuthorizationError{Permission: "manage_groups"},
			wantStatus: http.StatusForbidden,
			wantError:  "access denied: manage_groups required",
		},
		{
			name:       "storage failure hides cause",
			err:        errs.Failed("insert membership", errors.New("pq: connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/groups", nil)

			WriteDomainError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
