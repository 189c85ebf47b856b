package session

import (
	"time"

	"github.com/KTGlem/GameMoments/internal/match/domain"
)

// Clock tracks elapsed seconds within the current half.
//
// The value is derived from wall time on read rather than ticked by a
// goroutine: Start records when the half resumed, Stop folds the running
// segment into the accumulated total. Stopping preserves the value for a
// later resume; Reset returns it to zero at half or game boundaries.
type Clock struct {
	now         func() time.Time
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

// NewClock creates a stopped clock at zero.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start begins or resumes the clock. Starting a running clock is a no-op.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.startedAt = c.now()
	c.running = true
}

// Stop pauses the clock, preserving the current value for resume.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.accumulated += c.now().Sub(c.startedAt)
	c.running = false
}

// Reset stops the clock and returns it to zero.
func (c *Clock) Reset() {
	c.accumulated = 0
	c.running = false
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	return c.running
}

// Seconds returns the elapsed whole seconds, floored and clamped to zero.
func (c *Clock) Seconds() int {
	elapsed := c.accumulated
	if c.running {
		elapsed += c.now().Sub(c.startedAt)
	}
	seconds := int(elapsed / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

// Format renders the current value as zero-padded mm:ss.
func (c *Clock) Format() string {
	return domain.FormatSeconds(c.Seconds())
}
