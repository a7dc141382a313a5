package poll

import (
	"sync"
	"time"
)

// DefaultWindow is the throughput measurement window.
const DefaultWindow = time.Second

// RateCounter counts events in fixed windows. Rate reports the count of
// the most recently completed window, or 0 once a whole window has
// passed without events.
type RateCounter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time

	start time.Time
	count int
	rate  int
}

// NewRateCounterWithClock creates a counter with a custom window and clock.
func NewRateCounterWithClock(window time.Duration, now func() time.Time) *RateCounter {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &RateCounter{window: window, now: now}
}

// Tick records one completed event.
func (r *RateCounter) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roll(r.now())
	r.count++
}

// Rate returns events per window for the last completed window.
func (r *RateCounter) Rate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roll(r.now())
	return r.rate
}

// Reset zeroes the counter and starts a new window on the next event.
func (r *RateCounter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = time.Time{}
	r.count = 0
	r.rate = 0
}

func (r *RateCounter) roll(now time.Time) {
	if r.start.IsZero() {
		r.start = now
		return
	}

	elapsed := now.Sub(r.start)
	if elapsed < r.window {
		return
	}

	if elapsed < 2*r.window {
		r.rate = r.count
	} else {
		r.rate = 0
	}
	r.count = 0
	r.start = r.start.Add(elapsed / r.window * r.window)
}
