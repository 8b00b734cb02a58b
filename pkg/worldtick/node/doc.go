/*
Package node is an in-process event bus that owns listeners and applies
their dispatch results.

Listeners are kept per event type in registration order. Call delivers an
event to every listener bound to its dynamic type, plus listeners bound to
interface types the event implements, in the order they were added.

# Retention

After each dispatch the node applies the listener's Result:

  - Expired: the listener is removed.
  - Invalid: the listener is kept, unless Policy.RemoveOnInvalid is set.
  - Success: the listener is kept.

A handler error keeps the listener (unless Policy.RemoveOnError), is written
to the dead-letter store when one is configured, and is returned from Call
joined with any other failures once every listener has run.

# Expiration windows

Listeners built with ExpirationTime are checked here, before their handler
runs. Wall-clock windows are measured from Add using the node's Clock; tick
windows are measured in calls to Tick since Add. A listener whose window has
elapsed is removed without running.

# Usage

	n := node.New(node.WithLogger(logger), node.WithMetrics(observability.NewMetricsRecorder()))

	h := n.Add(listener.NewBuilder[PlayerJoin]().
	    Handler(greet).
	    ExpirationTime(listener.ExpireAfterTicks(200)).
	    Build())
	defer h.Remove()

	if err := n.Call(ctx, PlayerJoin{Name: "alex"}); err != nil {
	    // one or more handlers failed
	}
*/
package node
