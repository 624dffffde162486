package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/dashboard"
	"github.com/frezendesp/GroupManagement/pkg/directory"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/httputil"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
	"github.com/frezendesp/GroupManagement/pkg/report"
	"github.com/frezendesp/GroupManagement/pkg/session"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

// Options configures a Server. DB, Sessions and Authenticator are required.
type Options struct {
	DB            *sql.DB
	Sessions      *session.Manager
	Authenticator auth.Authenticator

	// LoginLimiter throttles login attempts per client address; nil disables it
	LoginLimiter middleware.Limiter

	// Recorder overrides the database audit recorder
	Recorder audit.Recorder

	Metrics *observability.Metrics
	Logger  *observability.Logger

	CookieName   string
	CookieSecure bool
	MaxBodyBytes int64
	Tracing      bool
}

// Migrations returns every schema set in dependency order
func Migrations() [][]storage.Migration {
	return [][]storage.Migration{
		directory.Migrations(),
		groups.Migrations(),
		rbac.Migrations(),
		audit.Migrations(),
	}
}

// RouteRegistrar is implemented by every handler group
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *observability.Logger

	Users    *directory.Store
	Groups   *groups.Store
	Grants   *rbac.Store
	Audit    *audit.DBStore
	Guard    *rbac.Guard
	Auth     *auth.Service
	Sessions *session.Manager
}

// NewServer creates the API server and registers every route
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if opts.CookieName == "" {
		opts.CookieName = "gm_session"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	recorder := opts.Recorder
	if recorder == nil {
		dbRecorder, err := audit.NewDBRecorder(opts.DB, logger.WithField("component", "audit"), opts.Metrics)
		if err != nil {
			return nil, err
		}
		recorder = dbRecorder
	}

	s := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		Users:    directory.NewStore(opts.DB),
		Groups:   groups.NewStore(opts.DB),
		Grants:   rbac.NewStore(opts.DB),
		Audit:    audit.NewDBStore(opts.DB),
		Sessions: opts.Sessions,
	}
	s.Guard = rbac.NewGuard(s.Grants, logger.WithField("component", "rbac"))
	s.Auth = auth.NewService(opts.Authenticator, s.Users, recorder, opts.Metrics, logger.WithField("component", "auth"))

	directoryManager := directory.NewManager(s.Users, recorder, opts.Metrics, logger.WithField("component", "directory"))
	groupManager := groups.NewManager(s.Groups, s.Users, s.Guard, recorder, opts.Metrics, logger.WithField("component", "groups"))
	generator := report.NewGenerator(s.Groups, recorder, opts.Metrics, logger.WithField("component", "report"))
	dashboards := dashboard.NewService(s.Users, s.Groups, s.Audit, s.Guard)
	permissionAdmin := rbac.NewAdmin(s.Guard, s.Grants, s.Users, recorder, logger.WithField("component", "rbac"))

	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}

	apiRouter := s.router.PathPrefix("/api").Subrouter()

	authHandlers := NewAuthHandlers(s.Auth, opts.Sessions, rbac.NewPermissionChecker(s.Grants), CookieConfig{
		Name:   opts.CookieName,
		Secure: opts.CookieSecure,
	})
	authHandlers.RegisterRoutes(apiRouter, opts.LoginLimiter, logger)

	// everything below requires a signed-in user
	sessionRouter := apiRouter.NewRoute().Subrouter()
	sessionRouter.Use(middleware.RequireAuthenticated)

	dashboardHandlers := dashboard.NewHandlers(dashboards)
	s.register(sessionRouter,
		dashboardHandlers,
		directory.NewHandlers(directoryManager),
		groups.NewHandlers(groupManager, s.Guard),
		report.NewHandlers(generator),
	)

	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(s.Guard.RequirePermission(rbac.FullAdmin))
	dashboardHandlers.RegisterAdminRoutes(adminRouter)
	s.register(adminRouter,
		rbac.NewHandlers(permissionAdmin),
		audit.NewHandlers(s.Audit),
	)

	sessions := middleware.NewSessionMiddleware(opts.Sessions, s.Users, opts.CookieName, logger.WithField("component", "session"))

	var handler http.Handler = s.router
	handler = httputil.Chain(
		httputil.RequestIDMiddleware(logger),
		httputil.ClientIPMiddleware,
		httputil.LoggingMiddleware,
		httputil.RecoveryMiddleware,
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
		sessions.Handler,
	)(handler)
	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "groupadmin",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}))
	}
	s.handler = handler

	return s, nil
}

func (s *Server) register(router *mux.Router, registrars ...RouteRegistrar) {
	for _, r := range registrars {
		r.RegisterRoutes(router)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the underlying router for additional routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// HTTPServer returns an http.Server serving s on addr
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
