package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupStatusHistoryTestDB creates an in-memory SQLite database with the status_history table.
func setupStatusHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database alive across queries.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE status_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_status_history_device ON status_history(device_id, id DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestRecordTransition(t *testing.T) {
	db := setupStatusHistoryTestDB(t)
	repo := NewSQLiteStatusHistoryRepository(db)
	ctx := context.Background()

	err := repo.RecordTransition(ctx, StatusHistoryEntry{
		DeviceID:  "amp-1",
		SessionID: "sess-1",
		From:      StatusDisconnected,
		To:        StatusConnecting,
	})
	if err != nil {
		t.Fatalf("RecordTransition() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, "amp-1", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries length = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.DeviceID != "amp-1" || entry.SessionID != "sess-1" {
		t.Errorf("entry ids = %q/%q", entry.DeviceID, entry.SessionID)
	}
	if entry.From != StatusDisconnected || entry.To != StatusConnecting {
		t.Errorf("entry transition = %s -> %s", entry.From, entry.To)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestRecordTransition_Validation(t *testing.T) {
	repo := NewSQLiteStatusHistoryRepository(setupStatusHistoryTestDB(t))
	ctx := context.Background()

	if err := repo.RecordTransition(ctx, StatusHistoryEntry{To: StatusConnected}); err == nil {
		t.Error("expected error for empty device id")
	}
	if err := repo.RecordTransition(ctx, StatusHistoryEntry{DeviceID: "x", To: "bogus"}); err == nil {
		t.Error("expected error for invalid status")
	}
	if _, err := repo.GetHistory(ctx, "", 10); err == nil {
		t.Error("expected error for empty device id in GetHistory")
	}
}

func TestGetHistory_NewestFirstAndLimit(t *testing.T) {
	repo := NewSQLiteStatusHistoryRepository(setupStatusHistoryTestDB(t))
	ctx := context.Background()

	sequence := []Status{StatusConnecting, StatusConnected, StatusDisconnecting, StatusDisconnected}
	from := StatusDisconnected
	for _, to := range sequence {
		if err := repo.RecordTransition(ctx, StatusHistoryEntry{DeviceID: "amp-1", From: from, To: to}); err != nil {
			t.Fatalf("RecordTransition() error = %v", err)
		}
		from = to
	}
	_ = repo.RecordTransition(ctx, StatusHistoryEntry{DeviceID: "other", To: StatusConnecting})

	entries, err := repo.GetHistory(ctx, "amp-1", 2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries length = %d, want 2", len(entries))
	}
	if entries[0].To != StatusDisconnected || entries[1].To != StatusDisconnecting {
		t.Errorf("order = %s, %s; want disconnected, disconnecting", entries[0].To, entries[1].To)
	}

	all, _ := repo.GetHistory(ctx, "amp-1", 0)
	if len(all) != len(sequence) {
		t.Errorf("default limit returned %d entries, want %d", len(all), len(sequence))
	}
}

func TestPruneHistory(t *testing.T) {
	repo := NewSQLiteStatusHistoryRepository(setupStatusHistoryTestDB(t))
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	_ = repo.RecordTransition(ctx, StatusHistoryEntry{DeviceID: "amp-1", To: StatusConnecting, CreatedAt: old})
	_ = repo.RecordTransition(ctx, StatusHistoryEntry{DeviceID: "amp-1", To: StatusConnected})

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := repo.PruneHistory(ctx, 0); err == nil {
		t.Error("expected error for non-positive duration")
	}
}

// failingHistoryRepo always fails writes.
type failingHistoryRepo struct{ calls int }

func (f *failingHistoryRepo) RecordTransition(context.Context, StatusHistoryEntry) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingHistoryRepo) GetHistory(context.Context, string, int) ([]StatusHistoryEntry, error) {
	return nil, nil
}

func TestHistoryRecorder_Track(t *testing.T) {
	repo := NewSQLiteStatusHistoryRepository(setupStatusHistoryTestDB(t))
	recorder := NewHistoryRecorder(repo)

	m := newMockDriver(t)
	recorder.Track(m.Device)

	_ = m.Connect()
	_ = m.Disconnect()

	entries, err := repo.GetHistory(context.Background(), m.ID(), 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	// Newest first.
	want := []struct{ from, to Status }{
		{StatusDisconnecting, StatusDisconnected},
		{StatusConnected, StatusDisconnecting},
		{StatusConnecting, StatusConnected},
		{StatusDisconnected, StatusConnecting},
	}
	for i, w := range want {
		if entries[i].From != w.from || entries[i].To != w.to {
			t.Errorf("entry %d = %s -> %s, want %s -> %s", i, entries[i].From, entries[i].To, w.from, w.to)
		}
		if entries[i].SessionID != m.Telemetry().ID() {
			t.Errorf("entry %d session = %q, want %q", i, entries[i].SessionID, m.Telemetry().ID())
		}
	}
}

func TestHistoryRecorder_UntrackAndFailures(t *testing.T) {
	repo := &failingHistoryRepo{}
	recorder := NewHistoryRecorder(repo)
	recorder.SetLogger(nil)

	m := newMockDriver(t)
	recorder.Track(m.Device)
	recorder.Track(m.Device) // replaces the first subscription

	if err := m.Connect(); err != nil {
		t.Fatalf("Connect() should not be affected by journal failures: %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("RecordTransition calls = %d, want 2", repo.calls)
	}

	recorder.Untrack(m.ID())
	_ = m.Disconnect()
	if repo.calls != 2 {
		t.Errorf("RecordTransition calls after Untrack = %d, want 2", repo.calls)
	}
}
