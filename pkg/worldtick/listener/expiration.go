package listener

import (
	"fmt"
	"time"
)

// Expiration is a time window after which a listener is no longer eligible.
// It is measured either in wall-clock time or in simulation ticks.
// The zero value never expires.
type Expiration struct {
	duration time.Duration
	ticks    int64
}

// ExpireAfter returns a wall-clock window. d <= 0 never expires.
func ExpireAfter(d time.Duration) Expiration {
	if d <= 0 {
		return Expiration{}
	}
	return Expiration{duration: d}
}

// ExpireAfterTicks returns a window of n simulation ticks. n <= 0 never expires.
func ExpireAfterTicks(n int64) Expiration {
	if n <= 0 {
		return Expiration{}
	}
	return Expiration{ticks: n}
}

// IsZero reports whether no window is configured.
func (e Expiration) IsZero() bool {
	return e.duration == 0 && e.ticks == 0
}

// Duration returns the wall-clock window, or 0.
func (e Expiration) Duration() time.Duration {
	return e.duration
}

// Ticks returns the tick window, or 0.
func (e Expiration) Ticks() int64 {
	return e.ticks
}

// Elapsed reports whether a listener registered age ago (and ticks ticks ago)
// has outlived the window.
func (e Expiration) Elapsed(age time.Duration, ticks int64) bool {
	switch {
	case e.duration > 0:
		return age >= e.duration
	case e.ticks > 0:
		return ticks >= e.ticks
	default:
		return false
	}
}

// String returns a human readable window.
func (e Expiration) String() string {
	switch {
	case e.duration > 0:
		return e.duration.String()
	case e.ticks > 0:
		return fmt.Sprintf("%d ticks", e.ticks)
	default:
		return "never"
	}
}
