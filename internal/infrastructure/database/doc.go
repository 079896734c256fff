// Package database provides SQLite connectivity for the biosignal daemon.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations read from an fs.FS (additive-only)
//   - Connection lifecycle and health checks
//
// The store holds the device status history written by
// device.SQLiteStatusHistoryRepository.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql. Migrations
// only move forward, so new columns must be NULLABLE or carry a DEFAULT so
// that a rollback of the binary keeps working.
package database
