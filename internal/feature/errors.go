package feature

import "errors"

// Domain errors for the feature package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, feature.ErrWrongOwner) {
//	    // feature constant checked against the wrong device type
//	}
var (
	// ErrInvalidName is returned when a feature name has no US-ASCII
	// alphanumeric characters left after normalisation.
	ErrInvalidName = errors.New("feature: name is empty after normalisation")

	// ErrWrongOwner is returned when a feature owned by one type is checked
	// against an instance (or declared on a type) outside that type's subtree.
	ErrWrongOwner = errors.New("feature: not owned by the instance type")

	// ErrDuplicateDeclaration is returned when a type declares the same
	// feature twice.
	ErrDuplicateDeclaration = errors.New("feature: already declared")

	// ErrNilProbe is returned when a declaration has no availability probe.
	ErrNilProbe = errors.New("feature: availability probe is required")

	// ErrUntypedInstance is returned when a query targets an instance that
	// reports no type.
	ErrUntypedInstance = errors.New("feature: instance has no type")

	// ErrZeroFeature is returned when a query uses an uninitialised Feature.
	ErrZeroFeature = errors.New("feature: zero value")
)
