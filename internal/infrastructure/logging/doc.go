// Package logging provides structured logging for the biosignal daemon.
//
// This package wraps Go's standard log/slog package so that every component
// (device engines, the registry, the telemetry reporter, MQTT and InfluxDB
// clients) logs through one handler with the same default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version, cfg.Site.ID)
//	logger.Info("starting daemon", "devices", len(cfg.Devices))
//	registry.SetLogger(logger.Component("registry"))
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
