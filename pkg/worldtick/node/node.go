package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/worldtick/pkg/worldtick/deadletter"
	"github.com/randalmurphal/worldtick/pkg/worldtick/listener"
	"github.com/randalmurphal/worldtick/pkg/worldtick/observability"
)

// ErrNilEvent indicates Call was given a nil event.
var ErrNilEvent = errors.New("event cannot be nil")

// Removal reasons reported to metrics and logs.
const (
	reasonCount   = "count"
	reasonWindow  = "window"
	reasonInvalid = "invalid"
	reasonError   = "error"
)

// Node holds listeners and dispatches events to them.
// It is safe for concurrent use; Call may run on several worker threads at once.
type Node struct {
	mu         sync.RWMutex
	byType     map[reflect.Type][]*entry
	interfaces []reflect.Type // registered interface event types

	seq  atomic.Uint64
	tick atomic.Int64

	clock       Clock
	policy      Policy
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	deadLetters deadletter.Store
}

type entry struct {
	id        string
	seq       uint64
	typeName  string
	listener  listener.EventListener
	addedAt   time.Time
	addedTick int64
	removed   atomic.Bool
}

// New creates an empty node.
func New(opts ...Option) *Node {
	n := &Node{
		byType:  make(map[reflect.Type][]*entry),
		clock:   SystemClock{},
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Handle identifies a registered listener.
type Handle struct {
	node  *Node
	entry *entry
}

// ID returns the listener's registration id.
func (h Handle) ID() string {
	if h.entry == nil {
		return ""
	}
	return h.entry.id
}

// Active reports whether the listener is still registered.
func (h Handle) Active() bool {
	return h.entry != nil && !h.entry.removed.Load()
}

// Remove unregisters the listener. It returns false if it was already gone.
func (h Handle) Remove() bool {
	if h.node == nil || h.entry == nil {
		return false
	}
	return h.node.remove(h.entry)
}

// Add registers l under its event type. The registration time and tick
// start the listener's expiration window.
func (n *Node) Add(l listener.EventListener) Handle {
	t := l.EventType()
	e := &entry{
		id:        uuid.New().String(),
		seq:       n.seq.Add(1),
		typeName:  t.String(),
		listener:  l,
		addedAt:   n.clock.Now(),
		addedTick: n.tick.Load(),
	}

	n.mu.Lock()
	if _, known := n.byType[t]; !known && t.Kind() == reflect.Interface {
		n.interfaces = append(n.interfaces, t)
	}
	n.byType[t] = append(n.byType[t], e)
	n.mu.Unlock()

	observability.LogListenerAdded(n.logger, e.typeName, e.id)
	return Handle{node: n, entry: e}
}

// Tick advances the node's tick counter and returns the new value.
func (n *Node) Tick() int64 {
	return n.tick.Add(1)
}

// CurrentTick returns the number of ticks since the node was created.
func (n *Node) CurrentTick() int64 {
	return n.tick.Load()
}

// Call dispatches event to every matching listener in registration order.
// Handler errors do not stop dispatch; they are joined and returned after
// all listeners ran. A panicking handler is not recovered; the dispatch
// span is ended with the panic value before it propagates.
func (n *Node) Call(ctx context.Context, event any) (err error) {
	if event == nil {
		return ErrNilEvent
	}
	t := reflect.TypeOf(event)
	entries := n.matching(t)
	if len(entries) == 0 {
		return nil
	}

	ctx, span := n.spans.StartDispatchSpan(ctx, t.String(), len(entries))
	defer func() {
		if r := recover(); r != nil {
			n.spans.EndSpanWithError(span, fmt.Errorf("listener panic: %v", r))
			panic(r)
		}
		n.spans.EndSpanWithError(span, err)
	}()

	now := n.clock.Now()
	tick := n.tick.Load()

	var errs []error
	for _, e := range entries {
		if e.removed.Load() {
			continue
		}
		if exp := e.listener.Expiration(); exp.Elapsed(now.Sub(e.addedAt), tick-e.addedTick) {
			if n.remove(e) {
				observability.LogListenerStale(n.logger, e.typeName, e.id, exp.String())
				n.metrics.RecordExpiration(ctx, e.typeName, reasonWindow)
			}
			continue
		}

		start := time.Now()
		res, err := e.listener.RunAny(event)
		if err != nil {
			errs = append(errs, err)
			n.handleError(ctx, e, event, err)
			continue
		}
		n.metrics.RecordDispatch(ctx, e.typeName, res.String(), time.Since(start))

		switch res {
		case listener.Expired:
			if n.remove(e) {
				observability.LogListenerExpired(n.logger, e.typeName, e.id)
				n.metrics.RecordExpiration(ctx, e.typeName, reasonCount)
			}
		case listener.Invalid:
			if n.policy.RemoveOnInvalid && n.remove(e) {
				observability.LogListenerRemoved(n.logger, e.typeName, e.id, reasonInvalid)
				n.metrics.RecordExpiration(ctx, e.typeName, reasonInvalid)
			}
		}
	}

	return errors.Join(errs...)
}

// Sweep removes every listener whose expiration window has elapsed without
// dispatching anything, and returns how many were removed. Servers call it
// once per tick so that listeners for rare events do not linger.
func (n *Node) Sweep(ctx context.Context) int {
	n.mu.RLock()
	var all []*entry
	for _, list := range n.byType {
		all = append(all, list...)
	}
	n.mu.RUnlock()

	now := n.clock.Now()
	tick := n.tick.Load()
	removed := 0
	for _, e := range all {
		exp := e.listener.Expiration()
		if !exp.Elapsed(now.Sub(e.addedAt), tick-e.addedTick) {
			continue
		}
		if n.remove(e) {
			removed++
			observability.LogListenerStale(n.logger, e.typeName, e.id, exp.String())
			n.metrics.RecordExpiration(ctx, e.typeName, reasonWindow)
		}
	}
	return removed
}

// Count returns the number of listeners registered for exactly type t.
func (n *Node) Count(t reflect.Type) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byType[t])
}

// Len returns the total number of registered listeners.
func (n *Node) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	total := 0
	for _, list := range n.byType {
		total += len(list)
	}
	return total
}

// CountOf returns the number of listeners registered for T.
func CountOf[T any](n *Node) int {
	return n.Count(reflect.TypeFor[T]())
}

// matching snapshots the listeners for t and for interfaces t implements,
// ordered by registration.
func (n *Node) matching(t reflect.Type) []*entry {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := slices.Clone(n.byType[t])
	merged := false
	for _, it := range n.interfaces {
		if it != t && t.Implements(it) {
			out = append(out, n.byType[it]...)
			merged = true
		}
	}
	if merged {
		slices.SortFunc(out, func(a, b *entry) int {
			switch {
			case a.seq < b.seq:
				return -1
			case a.seq > b.seq:
				return 1
			default:
				return 0
			}
		})
	}
	return out
}

// remove unregisters e once. Only the caller that flips the flag returns true.
func (n *Node) remove(e *entry) bool {
	if !e.removed.CompareAndSwap(false, true) {
		return false
	}

	t := e.listener.EventType()
	n.mu.Lock()
	defer n.mu.Unlock()

	list := n.byType[t]
	if i := slices.Index(list, e); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(n.byType, t)
		if i := slices.Index(n.interfaces, t); i >= 0 {
			n.interfaces = slices.Delete(n.interfaces, i, i+1)
		}
		return true
	}
	n.byType[t] = list
	return true
}

func (n *Node) handleError(ctx context.Context, e *entry, event any, err error) {
	observability.LogDispatchError(n.logger, e.typeName, e.id, err)
	n.metrics.RecordDispatchError(ctx, e.typeName)

	if n.deadLetters != nil {
		rec := deadletter.NewRecord(e.typeName, e.id, event, err)
		if dlErr := n.deadLetters.Put(ctx, rec); dlErr != nil {
			observability.LogDeadLetterError(observability.EnrichLogger(n.logger, e.typeName, e.id), dlErr)
		} else {
			n.metrics.RecordDeadLetter(ctx, e.typeName)
		}
	}

	if n.policy.RemoveOnError && n.remove(e) {
		observability.LogListenerRemoved(n.logger, e.typeName, e.id, reasonError)
		n.metrics.RecordExpiration(ctx, e.typeName, reasonError)
	}
}
