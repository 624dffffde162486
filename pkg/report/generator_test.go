package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/contextkeys"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

type fakeSource struct {
	groups  map[int64]*groups.Group
	members map[int64][]groups.Member
	err     error
}

func (f *fakeSource) GetByID(ctx context.Context, id int64) (*groups.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.groups[id]
	if !ok {
		return nil, errs.NewNotFoundError("group", id)
	}
	return g, nil
}

func (f *fakeSource) Members(ctx context.Context, groupID int64) ([]groups.Member, error) {
	return f.members[groupID], nil
}

type captureRecorder struct {
	mu      sync.Mutex
	records []audit.Record
}

func (c *captureRecorder) Record(ctx context.Context, r audit.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

var reader = &auth.User{ID: 3, Username: "gp.user", DisplayName: "GP User"}

func newTestGenerator(t *testing.T) (*Generator, *captureRecorder, *observability.Metrics) {
	t.Helper()
	source := &fakeSource{
		groups: map[int64]*groups.Group{
			1: {ID: 1, Name: "All Staff", Email: "all@company.com"},
		},
		members: map[int64][]groups.Member{
			1: {{UserID: 3, DisplayName: "GP User", Email: "gp.user@company.com"}},
		},
	}
	recorder := &captureRecorder{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewGenerator(source, recorder, metrics, nil), recorder, metrics
}

func TestGenerator_Generate(t *testing.T) {
	gen, recorder, metrics := newTestGenerator(t)
	ctx := context.Background()

	out, err := gen.Generate(ctx, reader, 1, "", "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, out.Format)
	assert.Contains(t, string(out.Body), "Generated By")

	out, err = gen.Generate(ctx, reader, 1, "PDF", "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, out.Format)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "group_report_All_Staff.pdf", out.Filename)
	assert.True(t, strings.HasPrefix(string(out.Body), "%PDF-"))

	require.Len(t, recorder.records, 2)
	rec := recorder.records[0]
	assert.Equal(t, audit.ActionGenerateReport, rec.Action)
	assert.Equal(t, audit.TargetGroup, rec.TargetType)
	assert.Equal(t, int64(1), *rec.TargetID)
	assert.Equal(t, "Generated HTML report for group All Staff", rec.Details)
	assert.Equal(t, "10.0.0.9", rec.IPAddress)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReportsGeneratedTotal.WithLabelValues("pdf")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReportsGeneratedTotal.WithLabelValues("html")))
}

func TestGenerator_Errors(t *testing.T) {
	gen, recorder, _ := newTestGenerator(t)
	ctx := context.Background()

	_, err := gen.Generate(ctx, nil, 1, "pdf", "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = gen.Generate(ctx, reader, 1, "docx", "")
	assert.True(t, errs.IsValidation(err))

	_, err = gen.Generate(ctx, reader, 42, "pdf", "")
	assert.True(t, errs.IsNotFound(err))

	gen.source = &fakeSource{err: errors.New("db down")}
	_, err = gen.Generate(ctx, reader, 1, "pdf", "")
	assert.ErrorIs(t, err, errs.ErrOperationFailed)

	assert.Empty(t, recorder.records)
}

func TestHandlers_GroupReport(t *testing.T) {
	gen, _, _ := newTestGenerator(t)
	router := mux.NewRouter()
	NewHandlers(gen).RegisterRoutes(router)

	get := func(path string, actor *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		if actor != nil {
			req = req.WithContext(contextkeys.WithAuth(req.Context(), &auth.AuthContext{User: actor}))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/groups/1/report?format=pdf", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="group_report_All_Staff.pdf"`, rec.Header().Get("Content-Disposition"))

	rec = get("/groups/1/report", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Group Membership Report</title>")
	assert.Contains(t, rec.Body.String(), "All Staff")

	assert.Equal(t, http.StatusUnauthorized, get("/groups/1/report", nil).Code)
	assert.Equal(t, http.StatusNotFound, get("/groups/7/report", reader).Code)
	assert.Equal(t, http.StatusBadRequest, get("/groups/1/report?format=xml", reader).Code)
}
