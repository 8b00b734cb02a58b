package listener

import (
	"reflect"
	"slices"
)

// Builder assembles a Listener. It is not safe for concurrent use.
type Builder[T any] struct {
	filters         []Filter[T]
	handler         Handler[T]
	expirationCount int
	expiration      Expiration
}

// NewBuilder starts a listener for events of type T.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{}
}

// Filter appends a predicate. Filters run in the order they were added.
func (b *Builder[T]) Filter(f Filter[T]) *Builder[T] {
	b.filters = append(b.filters, f)
	return b
}

// Handler sets the action run for accepted events. The last call wins.
func (b *Builder[T]) Handler(h Handler[T]) *Builder[T] {
	b.handler = h
	return b
}

// ExpirationCount limits the listener to n successful calls.
// n <= 0 disables the limit.
func (b *Builder[T]) ExpirationCount(n int) *Builder[T] {
	b.expirationCount = n
	return b
}

// ExpirationTime sets the window after which the dispatcher drops the listener.
func (b *Builder[T]) ExpirationTime(e Expiration) *Builder[T] {
	b.expiration = e
	return b
}

// Build returns a listener snapshot of the current configuration.
// Later changes to the builder do not affect it, and each call gets
// its own invocation counter.
func (b *Builder[T]) Build() *Listener[T] {
	l := &Listener[T]{
		eventType:          reflect.TypeFor[T](),
		filters:            slices.Clone(b.filters),
		handler:            b.handler,
		hasExpirationCount: b.expirationCount > 0,
		expiration:         b.expiration,
	}
	if l.hasExpirationCount {
		l.remaining.Store(int64(b.expirationCount))
	}
	return l
}
