package reliability

import (
	"math"
	"math/rand"
	"time"
)

// Default policy values for connect-class operations.
const (
	// DefaultMaxAttempts is the number of attempts made by DefaultPolicy.
	DefaultMaxAttempts = 3

	// DefaultInitialBackoff is the first delay of an Exponential backoff
	// built with zero values.
	DefaultInitialBackoff = 100 * time.Millisecond

	// DefaultMaxBackoff caps an Exponential backoff built with zero values.
	DefaultMaxBackoff = 10 * time.Second

	// DefaultMultiplier is the growth factor of an Exponential backoff.
	DefaultMultiplier = 2.0
)

// Backoff computes the delay before the next attempt.
type Backoff interface {
	// Delay returns the wait after the given failed attempt (1-based).
	Delay(attempt int) time.Duration
}

// Immediate retries without waiting.
type Immediate struct{}

// Delay always returns zero.
func (Immediate) Delay(int) time.Duration { return 0 }

// Fixed waits the same interval before every retry.
type Fixed struct {
	Interval time.Duration
}

// Delay returns the fixed interval.
func (f Fixed) Delay(int) time.Duration { return f.Interval }

// Exponential grows the delay by Multiplier after each failure, capped at Max,
// with up to Jitter (a fraction of the base delay) added at random.
type Exponential struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Delay returns Initial * Multiplier^(attempt-1), capped at Max, plus jitter.
func (e Exponential) Delay(attempt int) time.Duration {
	initial := e.Initial
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	maxDelay := e.Max
	if maxDelay <= 0 {
		maxDelay = DefaultMaxBackoff
	}
	multiplier := e.Multiplier
	if multiplier <= 1 {
		multiplier = DefaultMultiplier
	}
	if attempt < 1 {
		attempt = 1
	}

	base := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if base > float64(maxDelay) {
		base = float64(maxDelay)
	}

	if e.Jitter > 0 {
		base += base * e.Jitter * rand.Float64()
	}
	return time.Duration(base)
}

// Policy bounds an executor's retries.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff decides the wait between attempts. Nil means Immediate.
	Backoff Backoff

	// MaxElapsed, when positive, stops retrying once the next delay would
	// push the total time past this bound. The last failure is final.
	MaxElapsed time.Duration
}

// DefaultPolicy returns a small number of immediate retries.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     Immediate{},
	}
}

// attempts returns MaxAttempts clamped to at least one.
func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// delay returns the backoff delay after the given failed attempt.
func (p Policy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.Delay(attempt)
}
