package device

import (
	"errors"

	"github.com/nerrad567/biosignal-hal/internal/reliability"
)

// Classify maps driver errors onto retry outcomes.
//
//   - *Failure with a configuration or state error: Terminal
//   - any other *Failure: Recoverable
//   - everything else: Unclassified
func Classify(err error) reliability.Outcome {
	var f *Failure
	if !errors.As(err, &f) {
		return reliability.Unclassified
	}
	if f.HasClass(ClassConfiguration) || f.HasClass(ClassState) {
		return reliability.Terminal
	}
	return reliability.Recoverable
}

// NewExecutor returns an executor using Classify and the given policy.
func NewExecutor(policy reliability.Policy) *reliability.Executor {
	return reliability.NewExecutor(policy, Classify)
}
