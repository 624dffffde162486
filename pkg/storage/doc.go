// Package storage opens the SQL connection pool and applies schema
// migrations for PostgreSQL and SQLite.
//
// # Drivers
//
// Both drivers are registered by this package. Open validates the driver
// name, sizes the pool and pings the database:
//
//	db, dialect, err := storage.Open(ctx, storage.Config{
//		Driver: "postgres",
//		URL:    "postgres://groupadmin@localhost/groupadmin?sslmode=disable",
//	})
//
// SQLite connections are limited to a single open connection.
//
// # Migrations
//
// Each package owns its tables and exposes them as a []Migration with a
// version range of its own. The migrator merges the sets, rejects
// duplicate versions and applies pending ones in order, each in its own
// transaction:
//
//	applied, err := storage.NewMigrator(db, dialect, logger).Migrate(ctx,
//		directory.Migrations(),
//		groups.Migrations(),
//	)
//
// # Queries
//
// Statements use $n placeholders, which both drivers accept. Substring
// search goes through ContainsPattern and LikeEscape so that % and _ in
// user input match literally. IsUniqueViolation and ConstraintName
// classify constraint errors from either driver.
package storage
