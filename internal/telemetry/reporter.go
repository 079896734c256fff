package telemetry

import (
	"context"
	"sync"
	"time"
)

// Measurement is the InfluxDB measurement name for counter snapshots.
const Measurement = "device_telemetry"

// DefaultReportInterval is used when ReporterConfig.Interval is zero.
const DefaultReportInterval = 30 * time.Second

// Source lists the sessions to report. device.Registry implements it.
type Source interface {
	Sessions() []Session
}

// Sink receives one point per session per report.
// This is typically implemented by the InfluxDB client.
type Sink interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
}

// Logger is the logging interface used by the reporter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ReporterConfig holds configuration for the reporter.
type ReporterConfig struct {
	// Site tags every point.
	Site string

	// Interval is how often to report. Default: 30 seconds.
	Interval time.Duration

	Source Source
	Sink   Sink
}

// Reporter exports session snapshots on a fixed interval.
type Reporter struct {
	site     string
	interval time.Duration
	source   Source
	sink     Sink

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// NewReporter creates a reporter. Call Start to begin reporting.
func NewReporter(cfg ReporterConfig) *Reporter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultReportInterval
	}

	return &Reporter{
		site:     cfg.Site,
		interval: interval,
		source:   cfg.Source,
		sink:     cfg.Sink,
		done:     make(chan struct{}),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for this reporter.
func (r *Reporter) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.loggerMu.Lock()
	r.logger = logger
	r.loggerMu.Unlock()
}

func (r *Reporter) getLogger() Logger {
	r.loggerMu.RLock()
	defer r.loggerMu.RUnlock()
	return r.logger
}

// Start begins periodic reporting until ctx is cancelled or Stop is called.
func (r *Reporter) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.reportLoop(ctx)
}

// Stop halts reporting and writes one final report.
// Safe to call multiple times.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.ReportNow()
	})
}

// ReportNow writes a point for every open session with counters.
//
// Returns:
//   - int: Number of points written
func (r *Reporter) ReportNow() int {
	if r.source == nil || r.sink == nil {
		return 0
	}

	written := 0
	for _, s := range r.source.Sessions() {
		if s == nil || s.Closed() {
			continue
		}
		snap := s.Snapshot()
		if len(snap.Counters) == 0 {
			continue
		}

		fields := make(map[string]interface{}, len(snap.Counters))
		for c, v := range snap.Counters {
			fields[string(c)] = v
		}
		tags := map[string]string{
			"device_id":  snap.Owner,
			"session_id": snap.SessionID,
		}
		if r.site != "" {
			tags["site"] = r.site
		}

		r.sink.WritePointWithTime(Measurement, tags, fields, snap.Taken)
		written++
	}

	r.getLogger().Debug("telemetry reported", "points", written)
	return written
}

// reportLoop runs the periodic reporting.
func (r *Reporter) reportLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			r.ReportNow()
		}
	}
}
