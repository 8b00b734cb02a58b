package listener

// Result is the outcome of dispatching one event to one listener.
type Result int

const (
	// Success means the handler ran (or there was none) and the listener
	// stays eligible.
	Success Result = iota + 1

	// Invalid means a filter rejected the event. The handler did not run.
	Invalid

	// Expired means the handler ran and that was its last permitted call.
	Expired
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Invalid:
		return "invalid"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}
