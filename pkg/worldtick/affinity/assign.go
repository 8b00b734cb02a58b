package affinity

import (
	"context"

	"github.com/randalmurphal/worldtick/pkg/worldtick/observability"
	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

// Assignment is the thread layout for one tick.
type Assignment[P partition.Partition] struct {
	buckets [][]P
	threads map[int]int // partition id -> thread index
}

// Assign places each partition on a thread of a poolSize pool.
//
// Buckets are indexed by thread, and partitions keep their input order
// inside a bucket. The first failing partition aborts the whole layout, so
// the executor never runs a tick with a partition missing. A partition id
// listed twice fails with ErrDuplicatePartition.
func Assign[P partition.Partition](partitions []P, provider ThreadProvider[P], poolSize int) (*Assignment[P], error) {
	bounded, err := Bounded(provider, poolSize)
	if err != nil {
		return nil, err
	}

	a := &Assignment[P]{
		buckets: make([][]P, poolSize),
		threads: make(map[int]int, len(partitions)),
	}
	for _, p := range partitions {
		if _, dup := a.threads[p.SequentialID()]; dup {
			return nil, &ThreadError{PartitionID: p.SequentialID(), Err: ErrDuplicatePartition}
		}
		idx, err := bounded.FindThread(p)
		if err != nil {
			return nil, err
		}
		a.buckets[idx] = append(a.buckets[idx], p)
		a.threads[p.SequentialID()] = idx
	}
	return a, nil
}

// Threads returns the pool size the layout was computed for.
func (a *Assignment[P]) Threads() int {
	return len(a.buckets)
}

// Bucket returns the partitions that run on thread i, or nil when i is out of range.
func (a *Assignment[P]) Bucket(i int) []P {
	if i < 0 || i >= len(a.buckets) {
		return nil
	}
	return a.buckets[i]
}

// ThreadOf returns the thread a partition id was placed on.
func (a *Assignment[P]) ThreadOf(id int) (int, bool) {
	idx, ok := a.threads[id]
	return idx, ok
}

// Len returns the number of partitions placed.
func (a *Assignment[P]) Len() int {
	return len(a.threads)
}

// Busy returns the number of threads with at least one partition.
func (a *Assignment[P]) Busy() int {
	n := 0
	for _, b := range a.buckets {
		if len(b) > 0 {
			n++
		}
	}
	return n
}

// instrumented records every placement made by the wrapped provider.
type instrumented[P partition.Partition] struct {
	inner    ThreadProvider[P]
	strategy Strategy
	metrics  observability.MetricsRecorder
}

// Instrument wraps provider so each FindThread call is recorded under strategy.
// A nil recorder returns provider unchanged.
func Instrument[P partition.Partition](provider ThreadProvider[P], strategy Strategy, metrics observability.MetricsRecorder) ThreadProvider[P] {
	if metrics == nil {
		return provider
	}
	return &instrumented[P]{inner: provider, strategy: strategy, metrics: metrics}
}

// FindThread implements ThreadProvider.
func (i *instrumented[P]) FindThread(p P) (int, error) {
	idx, err := i.inner.FindThread(p)
	i.metrics.RecordAssignment(context.Background(), string(i.strategy), idx, err)
	return idx, err
}
