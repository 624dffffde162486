package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/session"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

const testCookie = "gm_test_session"

type testEnv struct {
	server  *Server
	db      *sql.DB
	metrics *observability.Metrics
}

func setupServer(t *testing.T, limiter middleware.Limiter) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(context.Background(), Migrations()...)
	require.NoError(t, err)

	authn, err := auth.NewStubAuthenticator(auth.DefaultSeedAccounts(), bcrypt.MinCost)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	server, err := NewServer(Options{
		DB:            db,
		Sessions:      session.NewManager(session.NewMemoryStore(100, time.Hour), time.Hour),
		Authenticator: authn,
		LoginLimiter:  limiter,
		Metrics:       metrics,
		CookieName:    testCookie,
	})
	require.NoError(t, err)

	return &testEnv{server: server, db: db, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:51000"
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the session cookie
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	require.NoError(t, err)

	rec := e.do(t, "POST", "/api/auth/login", string(body), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("login response has no %s cookie", testCookie)
	return nil
}
