package feature

import "fmt"

// Query answers feature questions for one instance.
//
// A Query is a small value and may be copied freely.
type Query struct {
	inst Instance
}

// For returns a Query bound to inst.
func For(inst Instance) Query {
	return Query{inst: inst}
}

// IsAvailable reports whether the instance's type declares f and the
// availability probe accepts the instance.
//
// Returns:
//   - bool: false for features unknown to the type chain
//   - error: ErrWrongOwner, ErrZeroFeature or ErrUntypedInstance on misuse
func (q Query) IsAvailable(f Feature) (bool, error) {
	d, ok, err := q.resolve(f)
	if err != nil || !ok {
		return false, err
	}
	return d.available(q.inst), nil
}

// IsEnabled reports whether f is currently enabled on the instance.
// Features declared without an enablement probe follow availability.
func (q Query) IsEnabled(f Feature) (bool, error) {
	d, ok, err := q.resolve(f)
	if err != nil || !ok {
		return false, err
	}
	return d.enabled(q.inst), nil
}

// IsAvailableAndEnabled reports whether f is both available and enabled.
// The enablement probe is not evaluated when the feature is unavailable.
func (q Query) IsAvailableAndEnabled(f Feature) (bool, error) {
	d, ok, err := q.resolve(f)
	if err != nil || !ok {
		return false, err
	}
	return d.available(q.inst) && d.enabled(q.inst), nil
}

// Declared lists every feature the instance's type chain declares,
// most-derived level first.
func (q Query) Declared() []Feature {
	t := q.typ()
	if t == nil {
		return nil
	}
	return t.declared()
}

// resolve validates f against the instance type and finds the nearest
// declaration.
func (q Query) resolve(f Feature) (declaration, bool, error) {
	if f.IsZero() {
		return declaration{}, false, ErrZeroFeature
	}

	t := q.typ()
	if t == nil {
		return declaration{}, false, ErrUntypedInstance
	}

	if f.owner != nil && !t.Is(f.owner) {
		return declaration{}, false, fmt.Errorf("%w: %s checked against %s", ErrWrongOwner, f, t.name)
	}

	d, ok := t.lookup(f.key)
	return d, ok, nil
}

// typ returns the instance type, tolerating nil instances.
func (q Query) typ() *Type {
	if q.inst == nil {
		return nil
	}
	return q.inst.FeatureType()
}
