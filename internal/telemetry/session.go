package telemetry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Counter names a telemetry counter.
type Counter string

// Counters maintained by the device lifecycle engine.
const (
	SuccessfulConnections Counter = "successful_connections"
	FailedConnections     Counter = "failed_connections"
	Errors                Counter = "errors"
)

// Known returns the engine counters in reporting order.
func Known() []Counter {
	return []Counter{SuccessfulConnections, FailedConnections, Errors}
}

// Session is the counter set of one device.
type Session interface {
	// ID identifies the session; it tags exported points.
	ID() string

	// Owner is the identifier of the device the session belongs to.
	Owner() string

	// Increment adds delta to counter c. Non-positive deltas are ignored.
	Increment(c Counter, delta int64)

	// Snapshot returns the current values of every counter touched so far.
	Snapshot() Snapshot

	// Close ends the session. Further increments are dropped.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool
}

// Snapshot is a point-in-time copy of a session's counters.
type Snapshot struct {
	SessionID string
	Owner     string
	Started   time.Time
	Taken     time.Time
	Counters  map[Counter]int64
}

// Get returns the value of c, zero if never incremented.
func (s Snapshot) Get(c Counter) int64 {
	return s.Counters[c]
}

// Factory creates the session for a newly constructed device.
type Factory func(owner string) Session

// Recording is the Factory for sessions that keep counts.
func Recording(owner string) Session {
	return NewRecordingSession(owner)
}

// Disabled is the Factory for sessions that keep nothing.
func Disabled(owner string) Session {
	return NewNop(owner)
}

// RecordingSession stores counters in memory.
type RecordingSession struct {
	id      string
	owner   string
	started time.Time

	mu       sync.RWMutex
	counters map[Counter]*atomic.Int64
	closed   atomic.Bool
}

// NewRecordingSession creates a session with a fresh random ID.
func NewRecordingSession(owner string) *RecordingSession {
	return &RecordingSession{
		id:       uuid.NewString(),
		owner:    owner,
		started:  time.Now(),
		counters: make(map[Counter]*atomic.Int64),
	}
}

// ID returns the session ID.
func (s *RecordingSession) ID() string { return s.id }

// Owner returns the owning device ID.
func (s *RecordingSession) Owner() string { return s.owner }

// Increment adds delta to c.
func (s *RecordingSession) Increment(c Counter, delta int64) {
	if delta <= 0 || s.closed.Load() {
		return
	}
	s.counter(c).Add(delta)
}

// counter returns the cell for c, creating it on first use.
func (s *RecordingSession) counter(c Counter) *atomic.Int64 {
	s.mu.RLock()
	v, ok := s.counters[c]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok = s.counters[c]; ok {
		return v
	}
	v = new(atomic.Int64)
	s.counters[c] = v
	return v
}

// Snapshot copies the counters. The engine counters are always present.
func (s *RecordingSession) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		Owner:     s.owner,
		Started:   s.started,
		Taken:     time.Now(),
		Counters:  make(map[Counter]int64, len(Known())),
	}
	for _, c := range Known() {
		snap.Counters[c] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c, v := range s.counters {
		snap.Counters[c] = v.Load()
	}
	return snap
}

// Close stops accepting increments. Safe to call more than once.
func (s *RecordingSession) Close() {
	s.closed.Store(true)
}

// Closed reports whether the session has been closed.
func (s *RecordingSession) Closed() bool {
	return s.closed.Load()
}

// Nop is a Session that records nothing.
type Nop struct {
	id     string
	owner  string
	closed atomic.Bool
}

// NewNop creates a no-op session.
func NewNop(owner string) *Nop {
	return &Nop{id: uuid.NewString(), owner: owner}
}

// ID returns the session ID.
func (n *Nop) ID() string { return n.id }

// Owner returns the owning device ID.
func (n *Nop) Owner() string { return n.owner }

// Increment does nothing.
func (n *Nop) Increment(Counter, int64) {}

// Snapshot returns an empty snapshot.
func (n *Nop) Snapshot() Snapshot {
	return Snapshot{SessionID: n.id, Owner: n.owner, Counters: map[Counter]int64{}}
}

// Close marks the session closed.
func (n *Nop) Close() { n.closed.Store(true) }

// Closed reports whether the session has been closed.
func (n *Nop) Closed() bool { return n.closed.Load() }
