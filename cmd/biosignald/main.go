// biosignald manages biosignal acquisition devices.
//
// It builds the configured devices, connects them through the retrying
// lifecycle engine and keeps them connected until it receives SIGINT or
// SIGTERM. Every status transition is journalled to SQLite and mirrored to
// MQTT as a retained message; per-device counters are exported to InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/biosignal-hal/internal/device"
	"github.com/nerrad567/biosignal-hal/internal/drivers/simulated"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/config"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/database"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/influxdb"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/logging"
	"github.com/nerrad567/biosignal-hal/internal/infrastructure/mqtt"
	"github.com/nerrad567/biosignal-hal/internal/reliability"
	"github.com/nerrad567/biosignal-hal/internal/telemetry"
	"github.com/nerrad567/biosignal-hal/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/biosignald.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the daemon logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting biosignald",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version, cfg.Site.ID)
	log.Info("configuration loaded", "path", configPath, "devices", len(cfg.Devices))

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	historyRepo := device.NewSQLiteStatusHistoryRepository(db.DB)
	pruneHistory(ctx, historyRepo, cfg.Database.HistoryRetention, log)

	history := device.NewHistoryRecorder(historyRepo)
	history.SetLogger(log.Component("history"))

	// MQTT (optional)
	var mqttClient *mqtt.Client
	var statusPublisher *device.StatusPublisher
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		statusPublisher = device.NewStatusPublisher(device.StatusPublisherConfig{
			Publisher: mqttClient,
			Topic:     mqtt.Topics{}.DeviceStatus,
			QoS:       byte(cfg.MQTT.QoS),
		})
		statusPublisher.SetLogger(log.Component("status"))
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return fmt.Errorf("building devices: %w", err)
	}
	registry.SetLogger(log.Component("registry"))
	defer func() {
		log.Info("closing devices", "count", registry.Count())
		if closeErr := registry.CloseAll(); closeErr != nil {
			log.Warn("errors while closing devices", "error", closeErr)
		}
	}()

	for _, m := range registry.List() {
		d := m.Engine()
		history.Track(d)
		if statusPublisher != nil {
			statusPublisher.Track(d)
		}
		if influxClient != nil {
			d.OnStatusChanged(func(d *device.Device) {
				influxClient.WriteDeviceStatus(d.ID(), d.Status().String(), time.Now())
			})
		}
	}

	// Retained statuses are republished after every broker reconnect
	if mqttClient != nil {
		mqttClient.SetOnConnect(func() {
			for _, m := range registry.List() {
				if pubErr := statusPublisher.PublishNow(m.Engine()); pubErr != nil {
					log.Warn("republishing device status failed", "device_id", m.Engine().ID(), "error", pubErr)
				}
			}
		})
	}

	if influxClient != nil && cfg.Telemetry.Enabled {
		reporter := telemetry.NewReporter(telemetry.ReporterConfig{
			Site:     cfg.Site.ID,
			Interval: cfg.Telemetry.ReportInterval,
			Source:   registry,
			Sink:     influxClient,
		})
		reporter.SetLogger(log.Component("telemetry"))
		reporter.Start(ctx)
		// Runs before CloseAll so the final report still sees open sessions
		defer reporter.Stop()
	}

	if connectErr := registry.ConnectAll(); connectErr != nil {
		log.Warn("some devices failed to connect", "error", connectErr)
	}
	log.Info("devices started", "statuses", registry.StatusCounts())

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// buildRegistry creates one device per config entry.
func buildRegistry(cfg *config.Config, log *logging.Logger) (*device.Registry, error) {
	factory := telemetry.Disabled
	if cfg.Telemetry.Enabled {
		factory = telemetry.Recording
	}
	policy := retryPolicy(cfg.Retry)

	registry := device.NewRegistry()
	for _, dc := range cfg.Devices {
		opts := []device.Option{
			device.WithID(dc.ID),
			device.WithPolicy(policy),
			device.WithTelemetry(factory),
			device.WithLogger(log.Component("device")),
		}

		var m device.Managed
		switch dc.Kind {
		case config.DeviceKindSimulated:
			amp, err := simulated.New(simulated.Config{
				Address:        dc.Address,
				FailConnects:   dc.FailConnects,
				FailDisconnect: dc.FailDisconnect,
				Terminal:       dc.Terminal,
				Multifrequency: dc.Multifrequency,
				ImpedanceCheck: dc.ImpedanceCheck,
			}, opts...)
			if err != nil {
				return nil, fmt.Errorf("device %s: %w", dc.ID, err)
			}
			m = amp
		default:
			return nil, fmt.Errorf("device %s: unsupported kind %q", dc.ID, dc.Kind)
		}

		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("device %s: %w", dc.ID, err)
		}
	}

	return registry, nil
}

// retryPolicy converts the retry section into an executor policy.
func retryPolicy(rc config.RetryConfig) reliability.Policy {
	policy := reliability.Policy{
		MaxAttempts: rc.MaxAttempts,
		MaxElapsed:  rc.MaxElapsed,
	}

	switch rc.Backoff {
	case config.BackoffFixed:
		policy.Backoff = reliability.Fixed{Interval: rc.InitialDelay}
	case config.BackoffExponential:
		policy.Backoff = reliability.Exponential{
			Initial:    rc.InitialDelay,
			Max:        rc.MaxDelay,
			Multiplier: rc.Multiplier,
			Jitter:     rc.Jitter,
		}
	default:
		policy.Backoff = reliability.Immediate{}
	}

	return policy
}

// historyPruner deletes journal entries older than a retention window.
type historyPruner interface {
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// pruneHistory applies the status history retention. A zero retention keeps
// everything. Failures are logged; the daemon starts regardless.
func pruneHistory(ctx context.Context, repo historyPruner, retention time.Duration, log *logging.Logger) {
	if retention <= 0 {
		return
	}
	deleted, err := repo.PruneHistory(ctx, retention)
	if err != nil {
		log.Warn("pruning status history failed", "error", err)
		return
	}
	log.Info("status history pruned", "deleted", deleted, "retention", retention)
}

// getConfigPath returns the configuration file path.
// Uses BSA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BSA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
