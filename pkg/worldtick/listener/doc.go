/*
Package listener provides typed event listeners with composable filtering,
limited invocation counts, and expiration windows.

# Overview

A Listener is bound to exactly one event type. Dispatching an event runs, in
order:

 1. every filter, stopping at the first one that rejects the event (Invalid);
 2. the handler, if one is set;
 3. the invocation counter, if a count was configured; the call that brings
    it to exactly zero reports Expired.

Anything else reports Success. The bus that owns the listener decides what
to do with each Result.

# Building

	l := listener.NewBuilder[PlayerMove]().
	    Filter(func(e PlayerMove) bool { return e.Player == "alex" }).
	    Handler(func(e PlayerMove) error { return track(e) }).
	    ExpirationCount(3).
	    ExpirationTime(listener.ExpireAfter(30 * time.Second)).
	    Build()

	res, err := l.Run(PlayerMove{Player: "alex"})

Build copies the filters and starts a fresh counter, so one builder can
produce several independent listeners.

# Expiration windows

ExpirationTime only records the window. The dispatcher compares it against
the listener's registration time or tick before each call (see package
node); Run itself never reads a clock.

# Errors

A handler error is returned from Run wrapped in *HandlerError. The counter is
left untouched and the Result is not meaningful. Panics are not recovered.
*/
package listener
