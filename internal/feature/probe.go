package feature

// Always is a probe that always answers true.
func Always(Instance) bool { return true }

// Never is a probe that always answers false.
func Never(Instance) bool { return false }

// Method adapts a method expression to a Probe.
//
// The instance is asserted to T before the call, so the method that runs is
// the one implemented by the concrete instance. A more-derived driver can
// override a probe declared at an ancestor level simply by implementing the
// method itself. Instances that do not implement T answer false.
//
// Example:
//
//	type multifrequencyProber interface{ IsMultifrequencyAvailable() bool }
//	Base.MustDeclare(Multifrequency, feature.Method(multifrequencyProber.IsMultifrequencyAvailable), nil)
func Method[T any](fn func(T) bool) Probe {
	return func(inst Instance) bool {
		v, ok := inst.(T)
		if !ok {
			return false
		}
		return fn(v)
	}
}

// Requires returns a probe that is true when dep is available and enabled
// on the same instance. Misuse of dep answers false.
func Requires(dep Feature) Probe {
	return func(inst Instance) bool {
		ok, err := For(inst).IsAvailableAndEnabled(dep)
		return err == nil && ok
	}
}

// All returns a probe that is true when every probe is true.
func All(probes ...Probe) Probe {
	return func(inst Instance) bool {
		for _, p := range probes {
			if !p(inst) {
				return false
			}
		}
		return true
	}
}
