// Package feature implements capability discovery for hardware devices.
//
// A device type declares the features it supports together with probes
// that decide, for a specific instance, whether each feature is available
// and whether it is currently enabled. Callers query an instance without
// knowing its concrete type.
//
// # Types and Hierarchy
//
// Device types form a static hierarchy built at package initialisation:
//
//	var Base = feature.NewType("Device", nil)
//	var Amplifier = feature.NewType("Amplifier", Base)
//
// Every concrete driver reports its *Type through the Instance interface.
//
// # Features
//
// A Feature is identified by its owning type and a normalised name. Names
// are compared case- and punctuation-insensitively:
//
//	feature.MustNew(nil, "Sampling On Change") == feature.MustNew(nil, "samplingonchange")
//
// A feature with a nil owner is unscoped and may be queried against any
// instance. A scoped feature queried against an instance of an unrelated
// type is a programming error and returns ErrWrongOwner.
//
// # Resolution
//
// Queries walk the instance's type chain from the concrete type towards
// the root and evaluate the probes of the first level declaring the
// feature. Undeclared features are neither available nor enabled.
//
// # Thread Safety
//
// Declarations are expected at init time. Queries are safe for concurrent
// use once declarations are complete.
package feature
