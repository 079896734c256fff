// Package acquisition defines the device type shared by signal acquisition
// hardware (amplifiers, A/D front ends) and the capabilities it introduces.
//
// Concrete drivers derive their own feature.Type from acquisition.Type and
// embed Defaults, overriding the probe methods for what their hardware
// actually supports:
//
//	var ampType = feature.NewType("Amplifier", acquisition.Type)
//
//	type Amplifier struct {
//	    *device.Device
//	    acquisition.Defaults
//	}
//
//	func (a *Amplifier) FeatureType() *feature.Type       { return ampType }
//	func (a *Amplifier) IsMultifrequencyAvailable() bool { return true }
package acquisition

import (
	"github.com/nerrad567/biosignal-hal/internal/device"
	"github.com/nerrad567/biosignal-hal/internal/feature"
)

// Type is the acquisition level of the device hierarchy.
var Type = feature.NewType("AcquisitionDevice", device.Type)

// Acquisition features.
var (
	// SamplingOnValueChange: the device can emit samples only when the
	// input value changes instead of at a fixed rate.
	SamplingOnValueChange = feature.MustNew(Type, "SamplingOnValueChange")

	// Multifrequency: channels of the same device may sample at different
	// rates.
	Multifrequency = feature.MustNew(Type, "Multifrequency")
)

// SamplingOnValueChangeProber reports support for change-driven sampling.
type SamplingOnValueChangeProber interface {
	IsSamplingOnValueChangeAvailable() bool
}

// MultifrequencyProber reports support for per-channel sampling rates.
type MultifrequencyProber interface {
	IsMultifrequencyAvailable() bool
}

// MultifrequencyEnabler reports whether per-channel rates are switched on.
type MultifrequencyEnabler interface {
	IsMultifrequencyEnabled() bool
}

// Defaults answers false for every acquisition probe.
// Embed it and override the methods the hardware supports.
type Defaults struct{}

// IsSamplingOnValueChangeAvailable returns false.
func (Defaults) IsSamplingOnValueChangeAvailable() bool { return false }

// IsMultifrequencyAvailable returns false.
func (Defaults) IsMultifrequencyAvailable() bool { return false }

// IsMultifrequencyEnabled returns false.
func (Defaults) IsMultifrequencyEnabled() bool { return false }

func init() {
	Type.MustDeclare(SamplingOnValueChange,
		feature.Method(SamplingOnValueChangeProber.IsSamplingOnValueChangeAvailable), nil)

	Type.MustDeclare(Multifrequency,
		feature.Method(MultifrequencyProber.IsMultifrequencyAvailable),
		feature.Method(MultifrequencyEnabler.IsMultifrequencyEnabled))
}
