package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/biosignal-hal/internal/telemetry"
)

// Managed is what the registry stores: any driver embedding *Device.
type Managed interface {
	Driver
	Engine() *Device
}

// Engine returns d itself. Drivers embedding *Device satisfy Managed
// through this method.
func (d *Device) Engine() *Device { return d }

// Registry is the inventory of live devices, keyed by ID.
//
// Devices are kept in registration order; CloseAll releases them in
// reverse order.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Managed
	order   []string
	logger  Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]Managed),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

func (r *Registry) getLogger() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// Register adds a device.
// Returns ErrDeviceExists if the ID is already registered.
func (r *Registry) Register(m Managed) error {
	if m == nil || m.Engine() == nil {
		return ErrNilDriver
	}
	id := m.Engine().ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[id]; exists {
		return fmt.Errorf("%w: %s", ErrDeviceExists, id)
	}
	r.devices[id] = m
	r.order = append(r.order, id)

	r.logger.Info("device registered", "device_id", id, "address", m.Engine().Address())
	return nil
}

// Get returns the device with the given ID.
// Returns ErrDeviceNotFound if it is not registered.
func (r *Registry) Get(id string) (Managed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return m, nil
}

// List returns all devices in registration order.
func (r *Registry) List() []Managed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Managed, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.devices[id])
	}
	return out
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Remove unregisters a device without closing it.
// Returns ErrDeviceNotFound if it is not registered.
func (r *Registry) Remove(id string) (Managed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	delete(r.devices, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("device removed", "device_id", id)
	return m, nil
}

// ConnectAll connects every device in registration order.
// Failures do not stop the loop; all errors are joined.
func (r *Registry) ConnectAll() error {
	logger := r.getLogger()

	var errs []error
	for _, m := range r.List() {
		d := m.Engine()
		if err := d.Connect(); err != nil {
			logger.Error("device connect failed", "device_id", d.ID(), "error", err)
			errs = append(errs, fmt.Errorf("connecting %s: %w", d.ID(), err))
			continue
		}
		logger.Info("device connected", "device_id", d.ID(), "address", d.Address())
	}
	return errors.Join(errs...)
}

// CloseAll closes every device in reverse registration order and empties
// the registry.
func (r *Registry) CloseAll() error {
	devices := r.List()

	r.mu.Lock()
	r.devices = make(map[string]Managed)
	r.order = nil
	logger := r.logger
	r.mu.Unlock()

	var errs []error
	for i := len(devices) - 1; i >= 0; i-- {
		d := devices[i].Engine()
		if err := d.Close(); err != nil {
			logger.Warn("device close failed", "device_id", d.ID(), "error", err)
			errs = append(errs, fmt.Errorf("closing %s: %w", d.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Sessions returns the telemetry session of every device.
// It implements telemetry.Source.
func (r *Registry) Sessions() []telemetry.Session {
	devices := r.List()
	out := make([]telemetry.Session, 0, len(devices))
	for _, m := range devices {
		out = append(out, m.Engine().Telemetry())
	}
	return out
}

// StatusCounts returns the number of devices in each state.
func (r *Registry) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, m := range r.List() {
		counts[m.Engine().Status()]++
	}
	return counts
}
