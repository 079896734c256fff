package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SQLiteStatusHistoryRepository implements StatusHistoryRepository using SQLite.
//
// Rows live in the status_history table created by the embedded migrations.
type SQLiteStatusHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteStatusHistoryRepository creates a new SQLite status history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
func NewSQLiteStatusHistoryRepository(db *sql.DB) *SQLiteStatusHistoryRepository {
	return &SQLiteStatusHistoryRepository{db: db}
}

// RecordTransition inserts a new history row.
//
// Returns:
//   - error: nil on success, otherwise a validation or database error
func (r *SQLiteStatusHistoryRepository) RecordTransition(ctx context.Context, entry StatusHistoryEntry) error {
	if entry.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if !entry.To.IsValid() {
		return fmt.Errorf("invalid target status %q", entry.To)
	}
	from := entry.From
	if from == "" {
		from = StatusDisconnected
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_history (device_id, session_id, from_status, to_status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.DeviceID,
		entry.SessionID,
		string(from),
		string(entry.To),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting status history: %w", err)
	}

	return nil
}

// GetHistory returns recent transitions for a device, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Unique device identifier
//   - limit: Maximum entries to return (default 50, max 500)
func (r *SQLiteStatusHistoryRepository) GetHistory(ctx context.Context, deviceID string, limit int) ([]StatusHistoryEntry, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, session_id, from_status, to_status, created_at
		 FROM status_history
		 WHERE device_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	entries := make([]StatusHistoryEntry, 0, limit)
	for rows.Next() {
		var entry StatusHistoryEntry
		var from, to, createdAt string

		if err := rows.Scan(&entry.ID, &entry.DeviceID, &entry.SessionID, &from, &to, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}
		entry.From = Status(from)
		entry.To = Status(to)

		timestamp, err := parseHistoryTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes entries older than the given duration.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteStatusHistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM status_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting status history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseHistoryTimestamp parses a timestamp stored in SQLite.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return timestamp, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
