// Package clock abstracts waiting so retry and polling loops can be tested
// without real sleeps.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for obtaining time and pausing execution.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses the caller for d.
	Sleep(d time.Duration)
}

// Real is a Clock backed by the system clock.
type Real struct{}

// Now returns the current system time with monotonic clock reading.
func (Real) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d.
func (Real) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Mock is a Clock for tests. Sleep advances the clock instantly and records
// the requested duration. It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

// NewMock creates a new Mock initialized to the given time.
// If t is zero, it initializes to a fixed start time.
func NewMock(t time.Time) *Mock {
	if t.IsZero() {
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &Mock{current: t}
}

// Now returns the mock clock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Sleep advances the clock by d without blocking.
func (m *Mock) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	if d > 0 {
		m.current = m.current.Add(d)
	}
}

// Advance moves the clock forward by the given duration.
// Panics if d is negative to maintain monotonicity.
func (m *Mock) Advance(d time.Duration) {
	if d < 0 {
		panic("clock.Mock.Advance: duration must be non-negative")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Sleeps returns every duration passed to Sleep, in call order.
func (m *Mock) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

// Slept returns the sum of all durations passed to Sleep.
func (m *Mock) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total time.Duration
	for _, d := range m.sleeps {
		total += d
	}
	return total
}
