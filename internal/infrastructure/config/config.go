package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backoff kinds accepted by retry.backoff.
const (
	BackoffImmediate   = "immediate"
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Device kinds accepted by devices[].kind.
const (
	DeviceKindSimulated = "simulated"
)

// Config is the root configuration structure for the biosignal daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retry     RetryConfig     `yaml:"retry"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Devices   []DeviceConfig  `yaml:"devices"`
}

// SiteConfig identifies the acquisition station.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetention is how long status history is kept. Older entries
	// are pruned at startup. Zero keeps everything.
	HistoryRetention time.Duration `yaml:"history_retention"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// RetryConfig is the retry policy applied to device connects.
type RetryConfig struct {
	// MaxAttempts is the total number of ConnectCore calls, including the first.
	MaxAttempts int `yaml:"max_attempts"`

	// Backoff is one of "immediate", "fixed" or "exponential".
	Backoff string `yaml:"backoff"`

	// InitialDelay is the fixed interval, or the first exponential delay.
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps exponential delays.
	MaxDelay time.Duration `yaml:"max_delay"`

	// Multiplier is the exponential growth factor.
	Multiplier float64 `yaml:"multiplier"`

	// Jitter is the random fraction added to each exponential delay (0-1).
	Jitter float64 `yaml:"jitter"`

	// MaxElapsed bounds the whole retry sequence. Zero means unbounded.
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

// TelemetryConfig controls per-device counters and their export.
type TelemetryConfig struct {
	// Enabled selects recording sessions; when false devices use no-op sessions.
	Enabled bool `yaml:"enabled"`

	// ReportInterval is how often counter snapshots are written to InfluxDB.
	ReportInterval time.Duration `yaml:"report_interval"`
}

// DeviceConfig declares one device instance managed by the daemon.
type DeviceConfig struct {
	ID      string `yaml:"id"`
	Kind    string `yaml:"kind"`
	Address string `yaml:"address"`

	// Simulated driver settings.
	FailConnects   int  `yaml:"fail_connects"`
	FailDisconnect bool `yaml:"fail_disconnect"`
	Terminal       bool `yaml:"terminal"`
	Multifrequency bool `yaml:"multifrequency"`
	ImpedanceCheck bool `yaml:"impedance_check"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BSA_SECTION_KEY
// For example: BSA_DATABASE_PATH, BSA_RETRY_MAX_ATTEMPTS
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "station-001",
			Name: "Biosignal Station",
		},
		Database: DatabaseConfig{
			Path:             "./data/biosignal.db",
			WALMode:          true,
			BusyTimeout:      5,
			HistoryRetention: 30 * 24 * time.Hour,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "biosignald",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			Backoff:      BackoffImmediate,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
		Telemetry: TelemetryConfig{
			Enabled:        true,
			ReportInterval: 30 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BSA_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// Site
	if v := os.Getenv("BSA_SITE_ID"); v != "" {
		cfg.Site.ID = v
	}

	// Database
	if v := os.Getenv("BSA_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BSA_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BSA_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BSA_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BSA_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("BSA_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("BSA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Retry
	if v := os.Getenv("BSA_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BSA_RETRY_MAX_ATTEMPTS: %w", err)
		}
		cfg.Retry.MaxAttempts = n
	}
	if v := os.Getenv("BSA_RETRY_BACKOFF"); v != "" {
		cfg.Retry.Backoff = v
	}

	// Telemetry
	if v := os.Getenv("BSA_TELEMETRY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BSA_TELEMETRY_ENABLED: %w", err)
		}
		cfg.Telemetry.Enabled = b
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.HistoryRetention < 0 {
		errs = append(errs, "database.history_retention must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// Retry validation
	errs = append(errs, c.Retry.validate()...)

	// Telemetry validation
	if c.Telemetry.ReportInterval < 0 {
		errs = append(errs, "telemetry.report_interval must not be negative")
	}

	// Devices validation
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		switch {
		case d.ID == "":
			errs = append(errs, fmt.Sprintf("devices[%d].id is required", i))
		case seen[d.ID]:
			errs = append(errs, fmt.Sprintf("devices[%d].id %q is duplicated", i, d.ID))
		}
		seen[d.ID] = true

		if d.Kind != DeviceKindSimulated {
			errs = append(errs, fmt.Sprintf("devices[%d].kind %q is not supported", i, d.Kind))
		}
		if d.FailConnects < 0 {
			errs = append(errs, fmt.Sprintf("devices[%d].fail_connects must not be negative", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate checks the retry section.
func (r RetryConfig) validate() []string {
	var errs []string

	if r.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be at least 1")
	}
	switch r.Backoff {
	case BackoffImmediate, BackoffFixed, BackoffExponential:
	default:
		errs = append(errs, fmt.Sprintf("retry.backoff %q must be immediate, fixed, or exponential", r.Backoff))
	}
	if r.InitialDelay < 0 || r.MaxDelay < 0 || r.MaxElapsed < 0 {
		errs = append(errs, "retry delays must not be negative")
	}
	if r.Jitter < 0 || r.Jitter > 1 {
		errs = append(errs, "retry.jitter must be between 0 and 1")
	}

	return errs
}
