// Package clock abstracts wall-clock access so budget logic is testable.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
