// Package deadletter keeps events whose handlers failed, for inspection and
// replay outside the tick loop.
package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record describes one failed dispatch.
type Record struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	ListenerID string    `json:"listener_id"`
	Error      string    `json:"error"`
	Payload    []byte    `json:"payload,omitempty"`
	Attempts   int       `json:"attempts"`
	FailedAt   time.Time `json:"failed_at"`
}

// NewRecord builds a record for event that failed in listener listenerID.
// The payload is the JSON encoding of event; events that cannot be encoded
// are stored without one.
func NewRecord(eventType, listenerID string, event any, err error) *Record {
	payload, _ := json.Marshal(event)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Record{
		ID:         uuid.New().String(),
		EventType:  eventType,
		ListenerID: listenerID,
		Error:      msg,
		Payload:    payload,
		Attempts:   1,
		FailedAt:   time.Now().UTC(),
	}
}

// Store persists failed dispatches.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a record. A record with the same ID is replaced.
	Put(ctx context.Context, rec *Record) error

	// Get returns a record by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, oldest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Returns nil if it does not exist.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases any resources.
	Close() error
}

// Sentinel errors for dead-letter operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("dead letter not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("dead letter store closed")

	// ErrFull indicates a bounded store is at capacity.
	ErrFull = errors.New("dead letter store full")
)
