package provider

import (
	"errors"
	"sync"
	"time"
)

// ErrLimitExceeded is returned by RateCounter.Acquire when the local limit
// for the current period has been reached.
var ErrLimitExceeded = errors.New("local rate limit exceeded")

type resetPolicy int

const (
	// resetDaily rolls the counter over at the start of each calendar day.
	resetDaily resetPolicy = iota
	// resetRolling rolls the counter over after a fixed duration has
	// elapsed since the period start.
	resetRolling
)

// RateCounter is a process-local, best-effort request counter for one
// adapter instance. The reset is lazy: the period is re-evaluated on the
// next Acquire or Remaining call, never by a timer. It is a soft limit;
// the upstream remains the final authority on rate rejection.
type RateCounter struct {
	mu          sync.Mutex
	limit       int
	policy      resetPolicy
	period      time.Duration
	count       int
	periodStart time.Time
	now         func() time.Time
}

// NewDailyCounter tracks up to limit calls per calendar day.
func NewDailyCounter(limit int) *RateCounter {
	return &RateCounter{
		limit:  limit,
		policy: resetDaily,
		now:    time.Now,
	}
}

// NewRollingCounter tracks up to limit calls per rolling period.
func NewRollingCounter(limit int, period time.Duration) *RateCounter {
	return &RateCounter{
		limit:  limit,
		policy: resetRolling,
		period: period,
		now:    time.Now,
	}
}

// Acquire counts one attempted call. It returns ErrLimitExceeded without
// counting when the period's budget is spent.
func (c *RateCounter) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeReset()
	if c.count >= c.limit {
		return ErrLimitExceeded
	}
	c.count++
	return nil
}

// Remaining is a non-authoritative local estimate of calls left in the
// current period.
func (c *RateCounter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeReset()
	if remaining := c.limit - c.count; remaining > 0 {
		return remaining
	}
	return 0
}

func (c *RateCounter) maybeReset() {
	now := c.now()
	if c.periodStart.IsZero() {
		c.periodStart = now
		return
	}

	switch c.policy {
	case resetDaily:
		y1, m1, d1 := c.periodStart.Date()
		y2, m2, d2 := now.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			c.count = 0
			c.periodStart = now
		}
	case resetRolling:
		if now.Sub(c.periodStart) >= c.period {
			c.count = 0
			c.periodStart = now
		}
	}
}
