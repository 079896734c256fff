package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/biosignal-hal/internal/infrastructure/config"
)

// ServiceName is attached to every log entry.
const ServiceName = "biosignald"

// Logger wraps slog.Logger with daemon-wide default fields.
//
// A *Logger satisfies the Logger interfaces declared by the device,
// telemetry and infrastructure packages, so the same value is handed to
// every component.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (JSON for production, text for development)
//   - Log level filtering
//   - Default fields (service name, version, site)
//   - Output destination
//
// Parameters:
//   - cfg: Logging configuration from the daemon config
//   - version: Application version for default field
//   - site: Station identifier for default field (omitted when empty)
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version, site string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	return &Logger{Logger: slog.New(newHandler(output, cfg, version, site))}
}

// newHandler builds the slog handler writing to w.
func newHandler(w io.Writer, cfg config.LoggingConfig, version, site string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	attrs := []slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	}
	if site != "" {
		attrs = append(attrs, slog.String("site", site))
	}

	return handler.WithAttrs(attrs)
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	ampLogger := logger.With("device_id", "amp-1")
//	ampLogger.Info("connected") // Includes device_id=amp-1
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Component returns a child logger tagged with component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stdout in JSON format at info level.
// It should only be used during early startup before config is available.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev", "")
}
