package node

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/worldtick/pkg/worldtick/deadletter"
	"github.com/randalmurphal/worldtick/pkg/worldtick/observability"
)

// Clock supplies the current time for wall-clock expiration windows.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Policy decides which non-expired results remove a listener.
type Policy struct {
	// RemoveOnInvalid drops a listener the first time its filters reject an event.
	RemoveOnInvalid bool

	// RemoveOnError drops a listener whose handler returned an error.
	RemoveOnError bool
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the time source for wall-clock windows. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(n *Node) {
		if c != nil {
			n.clock = c
		}
	}
}

// WithLogger sets the structured logger. Default: no logging.
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) {
		n.logger = l
	}
}

// WithMetrics sets the metrics recorder. Default: observability.NoopMetrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(n *Node) {
		if m != nil {
			n.metrics = m
		}
	}
}

// WithSpans sets the span manager. Default: observability.NoopSpanManager.
func WithSpans(s observability.SpanManager) Option {
	return func(n *Node) {
		if s != nil {
			n.spans = s
		}
	}
}

// WithDeadLetters records failed dispatches in store.
func WithDeadLetters(store deadletter.Store) Option {
	return func(n *Node) {
		n.deadLetters = store
	}
}

// WithPolicy sets the retention policy.
func WithPolicy(p Policy) Option {
	return func(n *Node) {
		n.policy = p
	}
}
