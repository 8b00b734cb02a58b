// Package affinity maps partitions to worker thread indices.
//
// Two partitions mapped to the same index never run concurrently (the
// executor runs each index on one thread); partitions on different indices
// may run fully in parallel. Choosing a strategy is therefore choosing which
// partitions are allowed to observe each other's state mid-tick.
//
// Providers are pure: no shared mutable state, safe for concurrent use.
// The raw strategies return identifiers as-is; wrap them with Bounded to
// reduce into a fixed pool.
package affinity

import (
	"fmt"
	"reflect"

	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

// ThreadProvider selects the worker thread that owns a partition's tick work.
type ThreadProvider[P partition.Partition] interface {
	// FindThread returns a non-negative thread index for p.
	FindThread(p P) (int, error)
}

// ProviderFunc adapts a function to the ThreadProvider interface.
type ProviderFunc[P partition.Partition] func(p P) (int, error)

// FindThread implements ThreadProvider.
func (f ProviderFunc[P]) FindThread(p P) (int, error) {
	return f(p)
}

// PerPartition places every partition on the thread equal to its own
// sequential id. Use it when partitions never touch each other during a tick.
type PerPartition[P partition.Partition] struct{}

// FindThread implements ThreadProvider. It never fails.
func (PerPartition[P]) FindThread(p P) (int, error) {
	return p.SequentialID(), nil
}

// PerRegion places every partition on the thread equal to its owning
// region's sequential id, so a region's partitions are serialized on one
// thread. A partition without a region fails with ErrNoRegion.
type PerRegion[P partition.Partition] struct{}

// FindThread implements ThreadProvider.
func (PerRegion[P]) FindThread(p P) (int, error) {
	region := p.Region()
	if isNil(region) {
		return 0, &ThreadError{PartitionID: p.SequentialID(), Strategy: StrategyRegion, Err: ErrNoRegion}
	}
	return region.SequentialID(), nil
}

// isNil reports whether r is nil or wraps a nil pointer, map, slice, chan or func.
func isNil(r partition.Region) bool {
	if r == nil {
		return true
	}
	switch v := reflect.ValueOf(r); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Compile-time interface checks.
var (
	_ ThreadProvider[partition.Partition] = PerPartition[partition.Partition]{}
	_ ThreadProvider[partition.Partition] = PerRegion[partition.Partition]{}
	_ ThreadProvider[partition.Partition] = ProviderFunc[partition.Partition](nil)
)

// BoundedProvider reduces another provider's result into [0, PoolSize).
type BoundedProvider[P partition.Partition] struct {
	inner    ThreadProvider[P]
	poolSize int
}

// Bounded wraps provider so that every index falls inside a pool of
// poolSize threads, using modulo reduction.
func Bounded[P partition.Partition](provider ThreadProvider[P], poolSize int) (*BoundedProvider[P], error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, poolSize)
	}
	return &BoundedProvider[P]{inner: provider, poolSize: poolSize}, nil
}

// PoolSize returns the number of threads results are reduced into.
func (b *BoundedProvider[P]) PoolSize() int {
	return b.poolSize
}

// FindThread implements ThreadProvider.
func (b *BoundedProvider[P]) FindThread(p P) (int, error) {
	idx, err := b.inner.FindThread(p)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, &ThreadError{PartitionID: p.SequentialID(), Err: fmt.Errorf("%w: %d", ErrNegativeThread, idx)}
	}
	return idx % b.poolSize, nil
}
