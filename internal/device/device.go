package device

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nerrad567/biosignal-hal/internal/feature"
	"github.com/nerrad567/biosignal-hal/internal/reliability"
	"github.com/nerrad567/biosignal-hal/internal/telemetry"
)

// Type is the root of the device type hierarchy.
// Intermediate types (acquisition devices) and concrete drivers derive from it.
var Type = feature.NewType("Device", nil)

// Driver is implemented by concrete device drivers.
//
// Hooks must report I/O problems as *Failure so the engine can classify
// them; any other error is propagated without retry.
type Driver interface {
	feature.Instance

	// ConnectCore opens the link to the physical device.
	ConnectCore() error

	// DisconnectCore closes the link. It is never retried.
	DisconnectCore() error
}

// ErrorHandler is optionally implemented by drivers that want to see every
// structured error the engine handles (after telemetry and logging).
type ErrorHandler interface {
	HandleErrors(errs []HardwareError)
}

// Logger defines the logging interface used by the device package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StatusObserver is called after every actual status transition.
type StatusObserver func(d *Device)

type observerEntry struct {
	id uint64
	fn StatusObserver
}

// Device is the lifecycle engine of one hardware device.
//
// Thread Safety:
//   - The state check and the move into Connecting or Disconnecting happen
//     under one mutex; hooks and observers run outside it.
//   - Status, ID, Address and Features may be called from any goroutine.
type Device struct {
	id      string
	address string
	driver  Driver
	exec    *reliability.Executor
	session telemetry.Session
	logger  Logger

	opMu   sync.Mutex // guards check-then-act transitions
	closed bool       // guarded by opMu

	status atomic.Value // Status

	obsMu     sync.RWMutex
	observers []observerEntry
	nextObsID uint64
}

// Option customises a Device at construction.
type Option func(*options)

type options struct {
	id        string
	exec      *reliability.Executor
	telemetry telemetry.Factory
	logger    Logger
}

// WithID sets the device ID. Default: a random UUID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithExecutor sets the executor used for ConnectCore.
// Default: DefaultPolicy with Classify.
func WithExecutor(exec *reliability.Executor) Option {
	return func(o *options) {
		o.exec = exec
	}
}

// WithPolicy is shorthand for WithExecutor(NewExecutor(policy)).
func WithPolicy(policy reliability.Policy) Option {
	return func(o *options) {
		o.exec = NewExecutor(policy)
	}
}

// WithTelemetry selects how the telemetry session is created.
// Default: telemetry.Recording.
func WithTelemetry(factory telemetry.Factory) Option {
	return func(o *options) {
		o.telemetry = factory
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a disconnected device.
//
// Parameters:
//   - address: Driver-specific device address (may be empty)
//   - driver: Concrete driver; usually the struct embedding the returned *Device
//   - opts: Optional settings
//
// Returns:
//   - *Device: Engine in StatusDisconnected with a fresh telemetry session
//   - error: ErrNilDriver if driver is nil
func New(address string, driver Driver, opts ...Option) (*Device, error) {
	if driver == nil {
		return nil, ErrNilDriver
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.exec == nil {
		o.exec = NewExecutor(reliability.DefaultPolicy())
	}
	if o.telemetry == nil {
		o.telemetry = telemetry.Recording
	}
	if o.logger == nil {
		o.logger = noopLogger{}
	}

	d := &Device{
		id:      o.id,
		address: address,
		driver:  driver,
		exec:    o.exec,
		session: o.telemetry(o.id),
		logger:  o.logger,
	}
	d.status.Store(StatusDisconnected)
	return d, nil
}

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Address returns the address the driver connects to.
func (d *Device) Address() string { return d.address }

// Status returns the current connection state.
func (d *Device) Status() Status {
	return d.status.Load().(Status) //nolint:forcetypeassert // only Status is ever stored
}

// Features returns a capability query bound to the concrete driver.
func (d *Device) Features() feature.Query {
	return feature.For(d.driver)
}

// Telemetry returns the device's telemetry session.
func (d *Device) Telemetry() telemetry.Session {
	return d.session
}

// String returns "address [status]".
func (d *Device) String() string {
	return fmt.Sprintf("%s [%s]", d.address, d.Status())
}

// Connect opens the device.
//
// Connecting or Connected devices are left untouched. From Disconnected or
// Error the device moves to Connecting and ConnectCore runs under the
// executor's retry policy, blocking the caller until it settles.
//
// Returns:
//   - error: nil once Connected; ErrClosed after Close; a state-conflict
//     *Failure when Disconnecting; otherwise the last hook error (the device
//     is then in StatusError)
func (d *Device) Connect() error {
	d.opMu.Lock()
	if d.closed {
		d.opMu.Unlock()
		return ErrClosed
	}
	current := d.Status()
	if current.IsAnyOf(StatusConnecting, StatusConnected) {
		d.opMu.Unlock()
		return nil
	}
	if !current.IsAnyOf(StatusDisconnected, StatusError) {
		d.opMu.Unlock()
		return stateConflict("Cannot connect while in %s state.", current)
	}
	d.status.Store(StatusConnecting)
	d.opMu.Unlock()

	d.announce(current, StatusConnecting)

	err := d.exec.Execute(d.driver.ConnectCore,
		func(err error) {
			d.handleFailure("connect", err, false)
		},
		func(err error) {
			d.session.Increment(telemetry.FailedConnections, 1)
			d.handleFailure("connect", err, true)
		},
	)
	if err != nil {
		d.setStatus(StatusError)
		return err
	}

	d.setStatus(StatusConnected)
	d.session.Increment(telemetry.SuccessfulConnections, 1)
	return nil
}

// Disconnect closes the device.
//
// Disconnecting or Disconnected devices are left untouched. Only a
// Connected device may be disconnected. DisconnectCore is called once;
// if it fails the device is still considered Disconnected.
//
// Returns:
//   - error: nil on success; ErrClosed after Close; a state-conflict
//     *Failure when Connecting or in Error; otherwise the hook error
func (d *Device) Disconnect() error {
	return d.disconnect(false)
}

// disconnect performs Disconnect. Close passes closing=true to bypass the
// closed guard it has just set.
func (d *Device) disconnect(closing bool) error {
	d.opMu.Lock()
	if d.closed && !closing {
		d.opMu.Unlock()
		return ErrClosed
	}
	current := d.Status()
	if current.IsAnyOf(StatusDisconnecting, StatusDisconnected) {
		d.opMu.Unlock()
		return nil
	}
	if current != StatusConnected {
		d.opMu.Unlock()
		return stateConflict("Cannot disconnect while in %s state.", current)
	}
	d.status.Store(StatusDisconnecting)
	d.opMu.Unlock()

	d.announce(current, StatusDisconnecting)

	err := d.driver.DisconnectCore()
	if err != nil && Classify(err) != reliability.Unclassified {
		d.session.Increment(telemetry.FailedConnections, 1)
		d.handleFailure("disconnect", err, true)
	}

	// Physical state is unknown after a failed disconnect; treat it as closed.
	d.setStatus(StatusDisconnected)
	return err
}

// Close releases the device. A Connected device is disconnected first and
// the telemetry session is closed. Calling Close again is a no-op.
//
// A device still Connecting is not interrupted: the in-flight Connect
// completes on a closed device. Avoid closing devices mid-connect.
//
// Returns:
//   - error: The disconnect error, if the implicit Disconnect failed
func (d *Device) Close() error {
	d.opMu.Lock()
	if d.closed {
		d.opMu.Unlock()
		return nil
	}
	d.closed = true
	connected := d.Status() == StatusConnected
	d.opMu.Unlock()

	var err error
	if connected {
		err = d.disconnect(true)
	}

	d.session.Close()
	d.logger.Debug("device closed", "device_id", d.id)
	return err
}

// Closed reports whether Close has been called.
func (d *Device) Closed() bool {
	d.opMu.Lock()
	defer d.opMu.Unlock()
	return d.closed
}

// OnStatusChanged registers an observer for status transitions.
//
// Observers run synchronously, in registration order, after the new status
// is visible through Status. A panicking observer is logged and skipped.
//
// Returns:
//   - func(): Removes the observer; safe to call more than once
func (d *Device) OnStatusChanged(fn StatusObserver) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	d.obsMu.Lock()
	d.nextObsID++
	id := d.nextObsID
	d.observers = append(d.observers, observerEntry{id: id, fn: fn})
	d.obsMu.Unlock()

	return func() {
		d.obsMu.Lock()
		defer d.obsMu.Unlock()
		for i, e := range d.observers {
			if e.id == id {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// setStatus stores s and announces the change if it differs from the
// current state.
func (d *Device) setStatus(s Status) {
	previous, _ := d.status.Swap(s).(Status)
	if previous != s {
		d.announce(previous, s)
	}
}

// announce logs a transition and notifies observers.
func (d *Device) announce(from, to Status) {
	d.logger.Debug("device status changed",
		"device_id", d.id,
		"from", from,
		"to", to,
	)
	d.notify()
}

// notify calls every observer, recovering from panics.
func (d *Device) notify() {
	d.obsMu.RLock()
	observers := make([]StatusObserver, len(d.observers))
	for i, e := range d.observers {
		observers[i] = e.fn
	}
	d.obsMu.RUnlock()

	for _, fn := range observers {
		d.callObserver(fn)
	}
}

func (d *Device) callObserver(fn StatusObserver) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("status observer panic recovered",
				"device_id", d.id,
				"panic", r,
			)
		}
	}()
	fn(d)
}

// handleFailure accounts for a classified hook failure: telemetry, log, and
// the driver's ErrorHandler.
func (d *Device) handleFailure(op string, err error, final bool) {
	var f *Failure
	if !errors.As(err, &f) {
		return
	}
	errs := f.Errors()
	d.session.Increment(telemetry.Errors, int64(len(errs)))

	if final {
		d.logger.Error("device operation failed",
			"device_id", d.id,
			"operation", op,
			"errors", len(errs),
			"error", err,
		)
	} else {
		d.logger.Warn("device operation failed, retrying",
			"device_id", d.id,
			"operation", op,
			"errors", len(errs),
			"error", err,
		)
	}

	if h, ok := d.driver.(ErrorHandler); ok {
		h.HandleErrors(errs)
	}
}
