package pipeline

import (
	"time"

	"github.com/kitscout/kitscout/internal/clock"
)

// Budget is the run's wall-clock deadline, computed once at start and
// read-only afterwards. It gates the issuance of new work; it never cancels
// work already in flight, so a blocking fetch may overrun the deadline by up
// to one request timeout.
type Budget struct {
	clock    clock.Clock
	deadline time.Time
}

// NewBudget creates a Budget expiring d from now.
func NewBudget(clk clock.Clock, d time.Duration) *Budget {
	return &Budget{
		clock:    clk,
		deadline: clk.Now().Add(d),
	}
}

// Expired reports whether the deadline has passed.
func (b *Budget) Expired() bool {
	return b.clock.Now().After(b.deadline)
}

// Remaining returns the time left before the deadline, clamped at zero.
func (b *Budget) Remaining() time.Duration {
	left := b.deadline.Sub(b.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}
