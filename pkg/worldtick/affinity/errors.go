package affinity

import (
	"errors"
	"fmt"
)

// Sentinel errors for thread assignment.
var (
	// ErrNoRegion indicates region affinity was asked to place a partition
	// that has no owning region.
	ErrNoRegion = errors.New("partition has no owning region")

	// ErrInvalidPoolSize indicates a non-positive worker pool size.
	ErrInvalidPoolSize = errors.New("pool size must be positive")

	// ErrNegativeThread indicates a provider returned a negative thread index.
	ErrNegativeThread = errors.New("provider returned negative thread index")

	// ErrDuplicatePartition indicates one tick's layout listed a partition id twice.
	ErrDuplicatePartition = errors.New("duplicate partition id")

	// ErrUnknownStrategy indicates a strategy name that is not registered.
	ErrUnknownStrategy = errors.New("unknown affinity strategy")
)

// ThreadError wraps an assignment failure with the partition it concerns.
type ThreadError struct {
	// PartitionID is the sequential id of the partition that could not be placed.
	PartitionID int
	// Strategy names the provider that failed, if known.
	Strategy Strategy
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ThreadError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("assign partition %d (%s): %v", e.PartitionID, e.Strategy, e.Err)
	}
	return fmt.Sprintf("assign partition %d: %v", e.PartitionID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ThreadError) Unwrap() error {
	return e.Err
}
