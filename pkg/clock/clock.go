// Package clock provides arrival timestamp sources for the order book.
package clock

import (
	"sync/atomic"
	"time"
)

// Sequence is a deterministic clock: every call to Now returns the previous
// value plus one. Replaying the same calls yields the same timestamps.
type Sequence struct {
	next atomic.Uint64
}

// NewSequence creates a sequence whose first Now returns start+1.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// Now returns the next value of the sequence.
func (s *Sequence) Now() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued value.
func (s *Sequence) Current() uint64 {
	return s.next.Load()
}

// Monotonic reads wall clock nanoseconds and never returns the same value twice.
type Monotonic struct {
	last atomic.Uint64
	now  func() time.Time
}

// NewMonotonic creates a wall clock source.
func NewMonotonic() *Monotonic {
	return &Monotonic{now: time.Now}
}

// Now returns the current time in nanoseconds, bumped past the last value
// when the wall clock has not advanced.
func (m *Monotonic) Now() uint64 {
	for {
		last := m.last.Load()
		ts := uint64(m.now().UnixNano())
		if ts <= last {
			ts = last + 1
		}
		if m.last.CompareAndSwap(last, ts) {
			return ts
		}
	}
}
