package device

import (
	"fmt"
	"strings"
)

// Severity grades a hardware error.
type Severity string

// Severity values.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Class groups hardware errors by origin.
type Class string

// Error classes.
const (
	// ClassState: the requested operation is not valid in the current state.
	ClassState Class = "state"

	// ClassCommunication: the link to the device failed (timeouts, I/O).
	ClassCommunication Class = "communication"

	// ClassConfiguration: the device or driver is misconfigured.
	// Retrying cannot help, so these failures are terminal.
	ClassConfiguration Class = "configuration"

	// ClassHardware: the device itself reported a fault.
	ClassHardware Class = "hardware"

	// ClassUnknown: the driver could not classify the failure.
	ClassUnknown Class = "unknown"
)

// Code is a numeric error code within a Class.
type Code int

// Well-known error codes.
const (
	CodeCannotChangeState Code = 1001

	CodeTimeout        Code = 2001
	CodeLinkLost       Code = 2002
	CodeDeviceNotFound Code = 2003

	CodeInvalidAddress   Code = 3001
	CodeUnsupportedSetup Code = 3002

	CodeDeviceFault Code = 4001
)

// HardwareError is one structured error reported by a device or driver.
type HardwareError struct {
	Severity Severity `json:"severity"`
	Class    Class    `json:"class"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

// Error implements error.
func (e HardwareError) Error() string {
	return fmt.Sprintf("%s %s/%d: %s", e.Severity, e.Class, e.Code, e.Message)
}

// Failure is the error type drivers return from their hooks.
//
// It carries one or more HardwareError values and optionally the
// underlying cause (for example a net.OpError).
type Failure struct {
	errs  []HardwareError
	cause error
}

// NewFailure creates a failure from one or more hardware errors.
func NewFailure(first HardwareError, more ...HardwareError) *Failure {
	errs := make([]HardwareError, 0, 1+len(more))
	errs = append(errs, first)
	errs = append(errs, more...)
	return &Failure{errs: errs}
}

// WrapFailure creates a single-error failure around cause.
//
// Parameters:
//   - cause: Underlying error, reachable with errors.Is/As
//   - class: Classification of the failure
//   - code: Numeric error code
//
// The message is taken from cause; severity is SeverityError.
func WrapFailure(cause error, class Class, code Code) *Failure {
	msg := "unknown failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &Failure{
		errs: []HardwareError{{
			Severity: SeverityError,
			Class:    class,
			Code:     code,
			Message:  msg,
		}},
		cause: cause,
	}
}

// stateConflict builds the failure returned for a refused transition.
func stateConflict(format string, args ...any) *Failure {
	return NewFailure(HardwareError{
		Severity: SeverityError,
		Class:    ClassState,
		Code:     CodeCannotChangeState,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns a copy of the structured errors.
func (f *Failure) Errors() []HardwareError {
	out := make([]HardwareError, len(f.errs))
	copy(out, f.errs)
	return out
}

// Len returns the number of structured errors.
func (f *Failure) Len() int {
	return len(f.errs)
}

// HasClass reports whether any structured error has class c.
func (f *Failure) HasClass(c Class) bool {
	for _, e := range f.errs {
		if e.Class == c {
			return true
		}
	}
	return false
}

// Error implements error.
func (f *Failure) Error() string {
	switch len(f.errs) {
	case 0:
		return "hardware failure"
	case 1:
		return "hardware failure: " + f.errs[0].Error()
	}

	parts := make([]string, len(f.errs))
	for i, e := range f.errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("hardware failure (%d errors): %s", len(f.errs), strings.Join(parts, "; "))
}

// Unwrap returns the underlying cause, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// Is matches ErrStateConflict for state-change refusals.
func (f *Failure) Is(target error) bool {
	if target != ErrStateConflict {
		return false
	}
	for _, e := range f.errs {
		if e.Class == ClassState && e.Code == CodeCannotChangeState {
			return true
		}
	}
	return false
}
