package feature

import (
	"fmt"
	"sync"
)

// Instance is implemented by every object whose features can be queried.
// Concrete drivers return the *Type of their most-derived level.
type Instance interface {
	FeatureType() *Type
}

// Probe evaluates one aspect (availability or enablement) of a feature for
// a specific instance.
type Probe func(inst Instance) bool

// Type is one level of a device type hierarchy.
//
// Each level owns a table mapping normalised feature names to probes.
// The parent link is fixed at construction.
type Type struct {
	name   string
	parent *Type

	mu    sync.RWMutex
	decls map[string]declaration
	order []string // declaration order, for Declared()
}

// declaration holds the probes registered for one feature at one level.
type declaration struct {
	feature   Feature
	available Probe
	enabled   Probe
}

// NewType creates a hierarchy level.
//
// Parameters:
//   - name: Human-readable type name (used in errors and String output)
//   - parent: Ancestor level, or nil for a root type
func NewType(name string, parent *Type) *Type {
	return &Type{
		name:   name,
		parent: parent,
		decls:  make(map[string]declaration),
	}
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// Parent returns the ancestor level, or nil at the root.
func (t *Type) Parent() *Type {
	return t.parent
}

// Is reports whether t is other or derives from other.
func (t *Type) Is(other *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Declare registers a feature at this level.
//
// Parameters:
//   - f: Feature to declare; its owner must be t or an ancestor of t
//   - available: Availability probe (required)
//   - enabled: Enablement probe; nil means "enabled whenever available"
//
// Returns:
//   - error: ErrZeroFeature, ErrNilProbe, ErrWrongOwner or ErrDuplicateDeclaration
func (t *Type) Declare(f Feature, available, enabled Probe) error {
	if f.IsZero() {
		return ErrZeroFeature
	}
	if available == nil {
		return fmt.Errorf("%w: %s", ErrNilProbe, f)
	}
	if f.owner != nil && !t.Is(f.owner) {
		return fmt.Errorf("%w: %s declared on %s", ErrWrongOwner, f, t.name)
	}
	if enabled == nil {
		enabled = available
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.decls[f.key]; exists {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateDeclaration, f, t.name)
	}
	t.decls[f.key] = declaration{feature: f, available: available, enabled: enabled}
	t.order = append(t.order, f.key)
	return nil
}

// MustDeclare is like Declare but panics on error.
// Intended for init functions.
func (t *Type) MustDeclare(f Feature, available, enabled Probe) {
	if err := t.Declare(f, available, enabled); err != nil {
		panic(err)
	}
}

// String returns the type name.
func (t *Type) String() string {
	return t.name
}

// lookup walks from t towards the root and returns the first declaration
// of key.
func (t *Type) lookup(key string) (declaration, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		d, ok := cur.decls[key]
		cur.mu.RUnlock()
		if ok {
			return d, true
		}
	}
	return declaration{}, false
}

// declared returns every feature visible from t, nearest level first.
// A feature shadowed by a more-derived declaration appears once.
func (t *Type) declared() []Feature {
	seen := make(map[string]bool)
	var out []Feature
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for _, key := range cur.order {
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, cur.decls[key].feature)
		}
		cur.mu.RUnlock()
	}
	return out
}
