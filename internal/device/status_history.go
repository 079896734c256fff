package device

import (
	"context"
	"sync"
	"time"
)

// defaultHistoryWriteTimeout bounds a single journal write.
const defaultHistoryWriteTimeout = 2 * time.Second

// StatusHistoryEntry is one recorded status transition.
type StatusHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the unique identifier of the device.
	DeviceID string `json:"device_id"`

	// SessionID is the telemetry session active during the transition.
	SessionID string `json:"session_id"`

	From Status `json:"from"`
	To   Status `json:"to"`

	// CreatedAt is the timestamp of the transition (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// StatusHistoryRepository stores and retrieves status transitions.
//
// Implementations must be thread-safe and use UTC timestamps.
type StatusHistoryRepository interface {
	// RecordTransition appends one transition to the journal.
	RecordTransition(ctx context.Context, entry StatusHistoryEntry) error

	// GetHistory returns recent transitions for the device, newest first.
	// Implementations may clamp limit.
	GetHistory(ctx context.Context, deviceID string, limit int) ([]StatusHistoryEntry, error)
}

// HistoryRecorder journals the transitions of tracked devices.
//
// Journal writes happen synchronously inside the status observer, bounded
// by a short timeout. Write failures are logged and do not affect the
// device.
type HistoryRecorder struct {
	repo    StatusHistoryRepository
	timeout time.Duration

	mu      sync.Mutex
	last    map[string]Status
	cancels map[string]func()
	logger  Logger
}

// NewHistoryRecorder creates a recorder writing to repo.
func NewHistoryRecorder(repo StatusHistoryRepository) *HistoryRecorder {
	return &HistoryRecorder{
		repo:    repo,
		timeout: defaultHistoryWriteTimeout,
		last:    make(map[string]Status),
		cancels: make(map[string]func()),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
func (h *HistoryRecorder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	h.mu.Lock()
	h.logger = logger
	h.mu.Unlock()
}

// Track starts journaling transitions of d. Tracking the same device twice
// replaces the earlier subscription.
func (h *HistoryRecorder) Track(d *Device) {
	h.mu.Lock()
	if cancel, ok := h.cancels[d.ID()]; ok {
		cancel()
	}
	h.last[d.ID()] = d.Status()
	h.mu.Unlock()

	cancel := d.OnStatusChanged(h.record)

	h.mu.Lock()
	h.cancels[d.ID()] = cancel
	h.mu.Unlock()
}

// Untrack stops journaling transitions of the device with the given ID.
func (h *HistoryRecorder) Untrack(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cancel, ok := h.cancels[id]; ok {
		cancel()
		delete(h.cancels, id)
		delete(h.last, id)
	}
}

// record is the status observer.
func (h *HistoryRecorder) record(d *Device) {
	to := d.Status()

	h.mu.Lock()
	from := h.last[d.ID()]
	h.last[d.ID()] = to
	logger := h.logger
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	entry := StatusHistoryEntry{
		DeviceID:  d.ID(),
		SessionID: d.Telemetry().ID(),
		From:      from,
		To:        to,
	}
	if err := h.repo.RecordTransition(ctx, entry); err != nil {
		logger.Warn("recording status transition failed",
			"device_id", d.ID(),
			"to", to,
			"error", err,
		)
	}
}
