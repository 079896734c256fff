package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrStateConflict) {
//	    // device busy in another transition
//	}
var (
	// ErrStateConflict is returned when a transition is requested from a
	// state that does not allow it (for example Connect while Disconnecting).
	ErrStateConflict = errors.New("device: cannot change state")

	// ErrClosed is returned by Connect and Disconnect after Close.
	ErrClosed = errors.New("device: closed")

	// ErrNilDriver is returned when constructing a device without a driver.
	ErrNilDriver = errors.New("device: nil driver")

	// ErrDeviceNotFound is returned when a device ID is not registered.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a duplicate device ID.
	ErrDeviceExists = errors.New("device: already exists")
)
