package listener

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// Filter decides whether a listener handles an event. Filters must not have
// side effects; evaluation stops at the first rejection.
type Filter[T any] func(event T) bool

// Handler reacts to an event.
type Handler[T any] func(event T) error

// Consume adapts a function that cannot fail to a Handler.
func Consume[T any](fn func(event T)) Handler[T] {
	return func(event T) error {
		fn(event)
		return nil
	}
}

// EventListener is the type-erased view of a Listener used by buses that
// index listeners by event type.
type EventListener interface {
	// EventType returns the type tag the listener is bound to.
	EventType() reflect.Type

	// RunAny dispatches an event whose static type has been erased.
	RunAny(event any) (Result, error)

	// Expiration returns the configured time window.
	Expiration() Expiration
}

// Listener is an immutable filter, handler and expiration bundle for events of type T.
// It is safe to dispatch from multiple goroutines concurrently.
type Listener[T any] struct {
	eventType          reflect.Type
	filters            []Filter[T]
	handler            Handler[T]
	hasExpirationCount bool
	remaining          atomic.Int64
	expiration         Expiration
}

// Compile-time interface check.
var _ EventListener = (*Listener[struct{}])(nil)

// Of returns a listener that runs handler for every event and always
// reports Success.
func Of[T any](handler Handler[T]) *Listener[T] {
	return &Listener[T]{
		eventType: reflect.TypeFor[T](),
		handler:   handler,
	}
}

// EventType returns the type tag of T.
func (l *Listener[T]) EventType() reflect.Type {
	return l.eventType
}

// Run dispatches event through the filters, the handler and the invocation counter.
func (l *Listener[T]) Run(event T) (Result, error) {
	for _, f := range l.filters {
		if !f(event) {
			return Invalid, nil
		}
	}

	if l.handler != nil {
		if err := l.handler(event); err != nil {
			return 0, &HandlerError{EventType: l.eventType, Err: err}
		}
	}

	if l.hasExpirationCount && l.consume() {
		return Expired, nil
	}
	return Success, nil
}

// consume takes one call from the counter and reports whether it was the
// last. Exactly one caller observes the transition to zero; once at zero the
// counter stays there.
func (l *Listener[T]) consume() bool {
	for {
		v := l.remaining.Load()
		if v <= 0 {
			return false
		}
		if l.remaining.CompareAndSwap(v, v-1) {
			return v == 1
		}
	}
}

// RunAny implements EventListener.
func (l *Listener[T]) RunAny(event any) (Result, error) {
	typed, ok := event.(T)
	if !ok {
		return 0, fmt.Errorf("%w: listener for %s got %T", ErrEventType, typeName(l.eventType), event)
	}
	return l.Run(typed)
}

// HasExpirationCount reports whether the listener is limited to a number of calls.
func (l *Listener[T]) HasExpirationCount() bool {
	return l.hasExpirationCount
}

// Remaining returns the number of calls left before the listener expires.
// It is only meaningful when HasExpirationCount is true. It never drops below
// zero, even if the bus keeps dispatching after Expired.
func (l *Listener[T]) Remaining() int64 {
	return l.remaining.Load()
}

// Expiration implements EventListener.
func (l *Listener[T]) Expiration() Expiration {
	return l.expiration
}
