package reliability

import "time"

// Outcome is the classification of a failed attempt.
type Outcome int

const (
	// Unclassified failures are not understood by the classifier. They are
	// returned immediately, without retry and without calling any handler.
	Unclassified Outcome = iota

	// Recoverable failures are retried while attempts remain.
	Recoverable

	// Terminal failures are final on the first occurrence.
	Terminal
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Recoverable:
		return "recoverable"
	case Terminal:
		return "terminal"
	default:
		return "unclassified"
	}
}

// Classifier decides what a non-nil error means for retry purposes.
type Classifier func(err error) Outcome

// Executor runs operations under a retry Policy.
//
// Thread Safety:
//   - An Executor holds no per-call state and may be shared between goroutines.
type Executor struct {
	policy   Policy
	classify Classifier

	sleep func(time.Duration)
	now   func() time.Time
}

// Option customises an Executor.
type Option func(*Executor)

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// WithClock replaces time.Now, mainly for tests of MaxElapsed.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// NewExecutor creates an executor.
//
// Parameters:
//   - policy: Retry bounds and backoff
//   - classify: Failure classifier; nil treats every error as Unclassified
//   - opts: Optional overrides (sleep, clock)
func NewExecutor(policy Policy, classify Classifier, opts ...Option) *Executor {
	if classify == nil {
		classify = func(error) Outcome { return Unclassified }
	}

	e := &Executor{
		policy:   policy,
		classify: classify,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Execute runs op until it succeeds or the policy is exhausted.
//
// Behaviour per failed attempt:
//   - Unclassified: returned at once; no handler runs
//   - Recoverable with attempts (and time) left: onRecoverable, wait, retry
//   - Recoverable on the last attempt, or Terminal: onFinal, then returned
//
// Handlers may be nil. The returned error is always the failure produced by
// the last attempt, never a wrapper.
func (e *Executor) Execute(op func() error, onRecoverable, onFinal func(error)) error {
	maxAttempts := e.policy.attempts()
	start := e.now()

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		outcome := e.classify(err)
		if outcome == Unclassified {
			return err
		}

		if outcome == Terminal || attempt >= maxAttempts {
			callHandler(onFinal, err)
			return err
		}

		delay := e.policy.delay(attempt)
		if e.policy.MaxElapsed > 0 && e.now().Sub(start)+delay > e.policy.MaxElapsed {
			callHandler(onFinal, err)
			return err
		}

		callHandler(onRecoverable, err)
		if delay > 0 {
			e.sleep(delay)
		}
	}
}

// callHandler invokes h when set.
func callHandler(h func(error), err error) {
	if h != nil {
		h(err)
	}
}
