package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/biosignal-hal/internal/device"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/config"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/database"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/logging"
	"github.com/nerrad567/biosignal-hal/internal/reliability"
	"github.com/nerrad567/biosignal-hal/migrations"
)

// writeTestConfig writes a config with MQTT and InfluxDB disabled.
func writeTestConfig(t *testing.T, dbPath, devices string) string {
	t.Helper()
	content := `
site:
  id: test-site
database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: false
influxdb:
  enabled: false
logging:
  level: warn
  format: text
retry:
  max_attempts: 3
  backoff: immediate
` + devices
	path := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("BSA_CONFIG", "/nonexistent/config.yaml")

	if err := run(context.Background()); err == nil {
		t.Error("run() should fail with missing config")
	}
}

func TestRun_UnsupportedDeviceKind(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("BSA_CONFIG", writeTestConfig(t, dbPath, `
devices:
  - id: amp-1
    kind: bluetooth
    address: "bt://amp-1"
`))

	if err := run(context.Background()); err == nil {
		t.Error("run() should reject an unsupported device kind")
	}
}

func TestRun_StartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("BSA_CONFIG", writeTestConfig(t, dbPath, `
devices:
  - id: amp-1
    kind: simulated
    address: "sim://amp-1"
    fail_connects: 1
  - id: amp-bad
    kind: simulated
    address: "usb://amp-bad"
`))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// The status journal survives the daemon
	db, err := database.Open(context.Background(), config.DatabaseConfig{Path: dbPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup
	repo := device.NewSQLiteStatusHistoryRepository(db.DB)

	history, err := repo.GetHistory(context.Background(), "amp-1", 50)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) == 0 {
		t.Fatal("no history recorded for amp-1")
	}
	if history[0].To != device.StatusDisconnected {
		t.Errorf("latest amp-1 status = %s, want disconnected", history[0].To)
	}
	connected := false
	for _, e := range history {
		if e.To == device.StatusConnected {
			connected = true
		}
	}
	if !connected {
		t.Error("amp-1 never reached connected")
	}

	bad, err := repo.GetHistory(context.Background(), "amp-bad", 50)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(bad) == 0 || bad[0].To != device.StatusError {
		t.Errorf("amp-bad history = %+v, want latest status error", bad)
	}
}

func TestPruneHistory(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := device.NewSQLiteStatusHistoryRepository(db.DB)
	old := time.Now().Add(-48 * time.Hour)
	for _, e := range []device.StatusHistoryEntry{
		{DeviceID: "amp-1", To: device.StatusConnecting, CreatedAt: old},
		{DeviceID: "amp-1", To: device.StatusConnected},
	} {
		if err := repo.RecordTransition(ctx, e); err != nil {
			t.Fatalf("RecordTransition() error = %v", err)
		}
	}

	log := logging.Default()

	// Zero retention keeps everything
	pruneHistory(ctx, repo, 0, log)
	if got, _ := repo.GetHistory(ctx, "amp-1", 10); len(got) != 2 {
		t.Fatalf("after zero retention len = %d, want 2", len(got))
	}

	pruneHistory(ctx, repo, 24*time.Hour, log)
	got, err := repo.GetHistory(ctx, "amp-1", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(got) != 1 || got[0].To != device.StatusConnected {
		t.Errorf("history after prune = %+v, want only the connected entry", got)
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		Retry: config.RetryConfig{MaxAttempts: 2, Backoff: config.BackoffImmediate},
		Devices: []config.DeviceConfig{
			{ID: "amp-1", Kind: config.DeviceKindSimulated, Address: "sim://1", Multifrequency: true},
			{ID: "amp-2", Kind: config.DeviceKindSimulated, Address: "sim://2"},
		},
	}

	registry, err := buildRegistry(cfg, logging.Default())
	if err != nil {
		t.Fatalf("buildRegistry() error = %v", err)
	}
	if registry.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", registry.Count())
	}

	m, err := registry.Get("amp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if m.Engine().Address() != "sim://1" {
		t.Errorf("Address() = %q", m.Engine().Address())
	}
	// Telemetry disabled in this config
	if got := m.Engine().Telemetry().Snapshot().Counters; len(got) != 0 {
		t.Errorf("counters = %v, want none with telemetry disabled", got)
	}
}

func TestBuildRegistry_DuplicateID(t *testing.T) {
	cfg := &config.Config{
		Devices: []config.DeviceConfig{
			{ID: "amp-1", Kind: config.DeviceKindSimulated, Address: "sim://1"},
			{ID: "amp-1", Kind: config.DeviceKindSimulated, Address: "sim://2"},
		},
	}

	if _, err := buildRegistry(cfg, logging.Default()); err == nil {
		t.Error("buildRegistry() should reject duplicate IDs")
	}
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RetryConfig
		want reliability.Backoff
	}{
		{
			name: "immediate",
			cfg:  config.RetryConfig{Backoff: config.BackoffImmediate},
			want: reliability.Immediate{},
		},
		{
			name: "fixed",
			cfg:  config.RetryConfig{Backoff: config.BackoffFixed, InitialDelay: time.Second},
			want: reliability.Fixed{Interval: time.Second},
		},
		{
			name: "exponential",
			cfg: config.RetryConfig{
				Backoff:      config.BackoffExponential,
				InitialDelay: 50 * time.Millisecond,
				MaxDelay:     time.Second,
				Multiplier:   3,
				Jitter:       0.1,
			},
			want: reliability.Exponential{Initial: 50 * time.Millisecond, Max: time.Second, Multiplier: 3, Jitter: 0.1},
		},
		{
			name: "unknown falls back to immediate",
			cfg:  config.RetryConfig{Backoff: ""},
			want: reliability.Immediate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.MaxAttempts = 4
			tt.cfg.MaxElapsed = time.Minute

			policy := retryPolicy(tt.cfg)
			if policy.Backoff != tt.want {
				t.Errorf("Backoff = %#v, want %#v", policy.Backoff, tt.want)
			}
			if policy.MaxAttempts != 4 || policy.MaxElapsed != time.Minute {
				t.Errorf("policy = %+v", policy)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("BSA_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("BSA_CONFIG", "/etc/biosignald.yaml")
	if got := getConfigPath(); got != "/etc/biosignald.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}

func TestHealthCheck_OptionalClients(t *testing.T) {
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	if err := healthCheck(context.Background(), db, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}
}
