package feature

import (
	"fmt"
	"strings"
)

// Feature identifies a capability of a device type.
//
// Features are comparable values: two features are equal (==) when they have
// the same owner and the same normalised name. The zero value is invalid.
type Feature struct {
	owner *Type
	key   string
}

// New creates a feature owned by the given type.
//
// Parameters:
//   - owner: Type that introduces the feature, or nil for an unscoped feature
//   - name: Display name; only US-ASCII letters and digits are significant
//
// Returns:
//   - Feature: The feature value
//   - error: ErrInvalidName if nothing survives normalisation
func New(owner *Type, name string) (Feature, error) {
	key := Normalize(name)
	if key == "" {
		return Feature{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return Feature{owner: owner, key: key}, nil
}

// MustNew is like New but panics on error.
// Intended for package-level feature constants.
func MustNew(owner *Type, name string) Feature {
	f, err := New(owner, name)
	if err != nil {
		panic(err)
	}
	return f
}

// Normalize returns the equivalent name used for feature comparison.
//
// Surrounding whitespace is trimmed, every rune outside [A-Za-z0-9] is
// dropped and the remainder is lower-cased.
//
// Example: "test123_測試" -> "test123"
func Normalize(name string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Owner returns the type that owns the feature (nil when unscoped).
func (f Feature) Owner() *Type {
	return f.owner
}

// Key returns the normalised name.
func (f Feature) Key() string {
	return f.key
}

// IsZero reports whether f is the zero Feature.
func (f Feature) IsZero() bool {
	return f.key == ""
}

// String returns "owner.key", or just the key for unscoped features.
func (f Feature) String() string {
	if f.owner == nil {
		return f.key
	}
	return f.owner.Name() + "." + f.key
}
