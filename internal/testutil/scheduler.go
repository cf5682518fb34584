//go:build !production

package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/palemoky/piramiden/internal/clock"
)

// ManualScheduler is a clock.Scheduler whose timers only fire on demand
type ManualScheduler struct {
	mu     sync.Mutex
	seq    int
	timers []*ManualTimer
}

// ManualTimer is a timer created by ManualScheduler
type ManualTimer struct {
	s       *ManualScheduler
	id      int
	After   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

var _ clock.Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates an empty scheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers f; it runs when the test calls Fire
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &ManualTimer{s: s, id: s.seq, After: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop reports whether the timer was still pending
func (t *ManualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Pending returns the timers that are neither stopped nor fired, oldest first
func (s *ManualScheduler) Pending() []*ManualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ManualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// FireNext runs the oldest pending timer and reports whether there was one
func (s *ManualScheduler) FireNext() bool {
	pending := s.Pending()
	if len(pending) == 0 {
		return false
	}
	pending[0].Fire()
	return true
}

// Fire runs the callback unless the timer was stopped. It runs on the
// calling goroutine.
func (t *ManualTimer) Fire() {
	t.s.mu.Lock()
	if t.stopped || t.fired {
		t.s.mu.Unlock()
		return
	}
	t.fired = true
	t.s.mu.Unlock()
	t.fn()
}

// FireStale runs the callback even if the timer was stopped, simulating a
// timer that fired concurrently with its cancellation.
func (t *ManualTimer) FireStale() {
	t.s.mu.Lock()
	t.fired = true
	t.s.mu.Unlock()
	t.fn()
}

// All returns every timer ever created, including stopped ones
func (s *ManualScheduler) All() []*ManualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ManualTimer(nil), s.timers...)
}
