package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/frezendesp/GroupManagement/pkg/api"
	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/config"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

var (
	schedule = flag.String("schedule", "", "Cron schedule for retention cleanup (defaults to GM_AUDIT_RETENTION_SCHEDULE)")
	days     = flag.Int("retention-days", 0, "Days of audit history to keep (defaults to GM_AUDIT_RETENTION_DAYS)")
	runOnce  = flag.Bool("run-once", false, "Run cleanup once and exit")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	policy := audit.RetentionPolicy{RetentionDays: cfg.Audit.RetentionDays}
	if *days > 0 {
		policy.RetentionDays = *days
	}
	spec := cfg.Audit.CronSchedule
	if *schedule != "" {
		spec = *schedule
	}

	ctx := context.Background()
	db, dialect, err := storage.Open(ctx, storage.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// the worker may start before the API server on a fresh install
	if _, err := migrateSchema(ctx, db, dialect); err != nil {
		logger.Fatalf("Failed to migrate schema: %v", err)
	}

	store := audit.NewDBStore(db)

	if *runOnce {
		if err := cleanup(ctx, store, policy, logger); err != nil {
			logger.Fatalf("Retention cleanup failed: %v", err)
		}
		return
	}

	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc(spec, func() {
		if err := cleanup(context.Background(), store, policy, logger); err != nil {
			logger.WithError(err).Error("Retention cleanup failed")
		}
	})
	if err != nil {
		logger.Fatalf("Failed to schedule retention cleanup: %v", err)
	}

	c.Start()
	logger.WithFields(logrus.Fields{
		"schedule":       spec,
		"retention_days": policy.RetentionDays,
	}).Info("Audit retention worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Audit retention worker stopped")
}

// migrateSchema applies the full schema; audit_logs references users
func migrateSchema(ctx context.Context, db *sql.DB, dialect storage.Dialect) (int, error) {
	return storage.NewMigrator(db, dialect, nil).Migrate(ctx, api.Migrations()...)
}

func cleanup(ctx context.Context, store *audit.DBStore, policy audit.RetentionPolicy, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	removed, err := store.Cleanup(ctx, policy)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"removed":  removed,
		"duration": time.Since(start).String(),
	}).Info("Audit retention cleanup complete")
	return nil
}
