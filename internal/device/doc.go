// Package device provides the lifecycle engine shared by every biosignal
// hardware driver.
//
// A Device wraps a concrete Driver and owns its connection state machine,
// its telemetry session and its capability table. Drivers only implement
// the raw connect and disconnect hooks; state checks, retries, error
// accounting and status notifications happen here.
//
// # State Machine
//
//	               Connect()                 ConnectCore ok
//	Disconnected ─────────────▶ Connecting ──────────────────▶ Connected
//	     ▲   ▲                      │                              │
//	     │   │                      │ retries exhausted            │ Disconnect()
//	     │   │      Connect()       ▼  or terminal failure         ▼
//	     │   └──────────────────  Error                      Disconnecting
//	     │                                                         │
//	     └─────────────────────────────────────────────────────────┘
//	                   DisconnectCore (ok or failed)
//
// There is no terminal state: a device in Error may be connected again.
//
// # Key Types
//
//   - Device: The engine; embed *Device in a concrete driver
//   - Driver: Hooks a concrete driver provides (ConnectCore, DisconnectCore)
//   - Failure: Error carrying one or more structured HardwareError values
//   - Registry: Inventory of live devices keyed by ID
//   - StatusPublisher: Mirrors transitions to MQTT
//   - HistoryRecorder: Journals transitions to SQLite
//
// # Usage
//
//	type Amplifier struct {
//	    *device.Device
//	}
//
//	func NewAmplifier(addr string) (*Amplifier, error) {
//	    a := &Amplifier{}
//	    d, err := device.New(addr, a, device.WithLogger(log))
//	    if err != nil {
//	        return nil, err
//	    }
//	    a.Device = d
//	    return a, nil
//	}
//
//	func (a *Amplifier) FeatureType() *feature.Type { return device.Type }
//	func (a *Amplifier) ConnectCore() error         { ... }
//	func (a *Amplifier) DisconnectCore() error      { ... }
//
// # Thread Safety
//
// The state check of Connect, Disconnect and Close and the move into the
// transitional state are atomic per device; a second caller sees Connecting
// or Disconnecting and is refused (or returns at once). Status may be read
// from any goroutine. Observers run synchronously on the goroutine
// performing the transition, outside the device lock.
package device
