package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/frezendesp/GroupManagement/pkg/api"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/config"
	"github.com/frezendesp/GroupManagement/pkg/middleware"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/session"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("Group admin server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *observability.Logger) error {
	tracerProvider, err := observability.InitTracing(ctx, cfg.Observability.OTel(), logger)
	if err != nil {
		return err
	}
	meterProvider, err := observability.InitMetrics(ctx, cfg.Observability.OTel(), logger)
	if err != nil {
		return err
	}

	db, dialect, err := storage.Open(ctx, storage.Config{
		Driver:          cfg.Database.Driver,
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	logger.WithField("driver", string(dialect)).Info("Database connected")

	applied, err := storage.NewMigrator(db, dialect, logger.WithField("component", "migrate")).Migrate(ctx, api.Migrations()...)
	if err != nil {
		return err
	}
	logger.Infof("Applied %d migrations", applied)

	accounts := auth.DefaultSeedAccounts()
	if cfg.Auth.SeedFile != "" {
		accounts, err = auth.LoadSeedAccounts(cfg.Auth.SeedFile)
		if err != nil {
			return err
		}
	}
	authenticator, err := auth.NewStubAuthenticator(accounts, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		redisClient, err = session.NewRedisClient(ctx, session.RedisConfig{
			URL:      cfg.Session.RedisURL,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err != nil {
			return err
		}
		store = session.NewRedisStore(redisClient)
	default:
		store = session.NewMemoryStore(cfg.Session.MaxSessions, cfg.Session.TTL)
	}
	sessions := session.NewManager(store, cfg.Session.TTL)

	var limiter middleware.Limiter
	if cfg.Auth.LoginRateLimit > 0 {
		limits := &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Auth.LoginRateLimit,
			WindowDuration:    cfg.Auth.LoginRateWindow,
		}
		if redisClient != nil {
			limiter = middleware.NewDistributedRateLimiter(redisClient, limits, "gm:login")
		} else {
			memory := middleware.NewRateLimiter(limits)
			memory.StartCleanup(ctx)
			limiter = memory
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
		go reportDBStats(ctx, db, metrics)
	}

	server, err := api.NewServer(api.Options{
		DB:            db,
		Sessions:      sessions,
		Authenticator: authenticator,
		LoginLimiter:  limiter,
		Metrics:       metrics,
		Logger:        logger,
		CookieName:    cfg.Session.CookieName,
		CookieSecure:  cfg.Session.CookieSecure,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		Tracing:       cfg.Observability.OTelEnabled,
	})
	if err != nil {
		return err
	}

	if cfg.Database.SeedUsers {
		created, err := server.Auth.SeedUsers(ctx, authenticator.Profiles())
		if err != nil {
			return err
		}
		logger.Infof("Seeded %d directory users", created)
	}

	httpServer := server.HTTPServer(cfg.Server.ListenAddr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient, cfg.Observability.OTelServiceVersion))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              cfg.Server.HealthAddr(),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.Register("database", func(context.Context) error { return db.Close() })
	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
	}
	if tracerProvider != nil {
		shutdown.Register("tracing", tracerProvider.Shutdown)
	}
	if meterProvider != nil {
		shutdown.Register("otel metrics", meterProvider.Shutdown)
	}

	serverErrs := make(chan error, 2)
	for _, srv := range []*http.Server{httpServer, healthServer} {
		go func(srv *http.Server) {
			logger.Infof("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrs <- err
			}
		}(srv)
	}

	waitCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case err := <-serverErrs:
			logger.WithError(err).Error("HTTP server failed")
			stop()
		case <-waitCtx.Done():
		}
	}()

	return shutdown.WaitForSignal(waitCtx)
}

func reportDBStats(ctx context.Context, db *sql.DB, metrics *observability.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBStats(db.Stats())
		case <-ctx.Done():
			return
		}
	}
}
