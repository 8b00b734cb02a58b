package listener

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrEventType indicates an event of the wrong type was passed to RunAny.
var ErrEventType = errors.New("event type mismatch")

// HandlerError wraps an error returned by a listener's handler.
type HandlerError struct {
	// EventType is the type the listener is bound to.
	EventType reflect.Type
	// Err is the handler's error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handle %s: %v", typeName(e.EventType), e.Err)
}

// Unwrap returns the handler's error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
