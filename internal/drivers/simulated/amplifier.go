// Package simulated provides a software-only acquisition amplifier.
//
// The simulated amplifier behaves like a real driver from the engine's point
// of view: it has an address, a feature table and connect/disconnect hooks
// that can be told to fail. It is used by the daemon when no hardware is
// attached and by tests that need a realistic driver.
package simulated

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/biosignal-hal/internal/acquisition"
	"github.com/nerrad567/biosignal-hal/internal/device"
	"github.com/nerrad567/biosignal-hal/internal/feature"
)

// AddressScheme prefixes every valid simulated address.
const AddressScheme = "sim://"

// Type is the simulated amplifier level of the device hierarchy.
var Type = feature.NewType("SimulatedAmplifier", acquisition.Type)

// ImpedanceCheck: the amplifier can measure electrode impedance.
var ImpedanceCheck = feature.MustNew(Type, "ImpedanceCheck")

type impedanceProber interface {
	IsImpedanceCheckAvailable() bool
}

func init() {
	Type.MustDeclare(ImpedanceCheck, feature.Method(impedanceProber.IsImpedanceCheckAvailable), nil)
}

var errSimulatedTimeout = errors.New("simulated link timeout")

// Config controls the simulated hardware.
type Config struct {
	// Address must start with "sim://"; anything else fails to connect with
	// a configuration error.
	Address string

	// FailConnects is the number of initial ConnectCore calls that fail with
	// a recoverable communication error.
	FailConnects int

	// FailDisconnect makes every DisconnectCore call fail.
	FailDisconnect bool

	// Terminal turns injected connect failures into configuration errors.
	Terminal bool

	// ConnectDelay is slept inside every ConnectCore call.
	ConnectDelay time.Duration

	Multifrequency bool
	ImpedanceCheck bool
}

// Amplifier is a simulated acquisition amplifier.
type Amplifier struct {
	*device.Device
	acquisition.Defaults

	cfg Config

	mu              sync.Mutex
	linkUp          bool
	connectCalls    int
	disconnectCalls int
	handled         []device.HardwareError
}

// New creates a simulated amplifier.
//
// Parameters:
//   - cfg: Simulated hardware behaviour
//   - opts: Engine options (ID, executor, telemetry, logger)
func New(cfg Config, opts ...device.Option) (*Amplifier, error) {
	a := &Amplifier{cfg: cfg}
	d, err := device.New(cfg.Address, a, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating simulated amplifier: %w", err)
	}
	a.Device = d
	return a, nil
}

// FeatureType returns the simulated amplifier type.
func (a *Amplifier) FeatureType() *feature.Type { return Type }

// IsMultifrequencyAvailable reports the configured capability.
func (a *Amplifier) IsMultifrequencyAvailable() bool { return a.cfg.Multifrequency }

// IsMultifrequencyEnabled follows availability; the simulator has no switch.
func (a *Amplifier) IsMultifrequencyEnabled() bool { return a.cfg.Multifrequency }

// IsImpedanceCheckAvailable reports the configured capability.
func (a *Amplifier) IsImpedanceCheckAvailable() bool { return a.cfg.ImpedanceCheck }

// ConnectCore simulates opening the link.
func (a *Amplifier) ConnectCore() error {
	if a.cfg.ConnectDelay > 0 {
		time.Sleep(a.cfg.ConnectDelay)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectCalls++

	if !strings.HasPrefix(a.cfg.Address, AddressScheme) {
		return device.NewFailure(device.HardwareError{
			Severity: device.SeverityError,
			Class:    device.ClassConfiguration,
			Code:     device.CodeInvalidAddress,
			Message:  fmt.Sprintf("address %q is not a %s address", a.cfg.Address, AddressScheme),
		})
	}

	if a.connectCalls <= a.cfg.FailConnects {
		class, code := device.ClassCommunication, device.CodeTimeout
		if a.cfg.Terminal {
			class, code = device.ClassConfiguration, device.CodeUnsupportedSetup
		}
		return device.WrapFailure(errSimulatedTimeout, class, code)
	}

	a.linkUp = true
	return nil
}

// DisconnectCore simulates closing the link.
func (a *Amplifier) DisconnectCore() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disconnectCalls++
	a.linkUp = false

	if a.cfg.FailDisconnect {
		return device.NewFailure(device.HardwareError{
			Severity: device.SeverityWarning,
			Class:    device.ClassCommunication,
			Code:     device.CodeLinkLost,
			Message:  "link dropped during disconnect",
		})
	}
	return nil
}

// HandleErrors keeps the errors reported by the engine.
func (a *Amplifier) HandleErrors(errs []device.HardwareError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handled = append(a.handled, errs...)
}

// Stats is a snapshot of the simulator's internal counters.
type Stats struct {
	LinkUp          bool
	ConnectCalls    int
	DisconnectCalls int
	HandledErrors   int
}

// Stats returns the simulator counters.
func (a *Amplifier) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		LinkUp:          a.linkUp,
		ConnectCalls:    a.connectCalls,
		DisconnectCalls: a.disconnectCalls,
		HandledErrors:   len(a.handled),
	}
}
