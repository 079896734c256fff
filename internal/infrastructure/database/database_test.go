package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/biosignal-hal/internal/infrastructure/config"
)

// openTestDB opens a fresh database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		db := openTestDB(t)

		if _, err := os.Stat(db.Path()); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(context.Background(), config.DatabaseConfig{Path: dbPath, BusyTimeout: 1})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Open(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
		if err == nil {
			t.Error("Open() with cancelled context should fail")
		}
	})
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    []string
		notWant []string
	}{
		{
			name: "wal enabled",
			cfg:  config.DatabaseConfig{Path: "/data/a.db", WALMode: true, BusyTimeout: 5},
			want: []string{"file:/data/a.db?", "_busy_timeout=5000", "_foreign_keys=on", "_journal_mode=WAL"},
		},
		{
			name:    "wal disabled",
			cfg:     config.DatabaseConfig{Path: "/data/a.db", BusyTimeout: 1},
			want:    []string{"_busy_timeout=1000"},
			notWant: []string{"_journal_mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := connectionString(tt.cfg)
			for _, s := range tt.want {
				if !strings.Contains(dsn, s) {
					t.Errorf("connectionString() = %q, want %q", dsn, s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(dsn, s) {
					t.Errorf("connectionString() = %q, should not contain %q", dsn, s)
				}
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	db.Close() //nolint:errcheck // Closed on purpose
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() after Close should fail")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := (&DB{}).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
