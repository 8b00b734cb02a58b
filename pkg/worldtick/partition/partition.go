// Package partition defines the identity of the spatial work units that the
// scheduler places on worker threads.
//
// A Partition is the smallest independently scheduled piece of world state.
// It carries a stable sequential identifier and, optionally, a reference to
// the coarser Region (world or instance) that owns it. This package only
// describes identity; the mutable world data lives with the caller.
package partition

import "sync/atomic"

// Region is a coarse grouping of partitions that share one simulation context.
type Region interface {
	// SequentialID is unique among live regions.
	SequentialID() int
}

// Partition is a schedulable unit of world state.
type Partition interface {
	// SequentialID is non-negative, unique and stable for the partition's lifetime.
	SequentialID() int

	// Region returns the owning region. It is set once at creation and may be
	// nil only when region affinity is not in use.
	Region() Region
}

// RegionRef is a value implementation of Region.
type RegionRef struct {
	ID int
}

// SequentialID implements Region.
func (r RegionRef) SequentialID() int {
	return r.ID
}

// Ref is an immutable value implementation of Partition.
type Ref struct {
	id     int
	region Region
}

// NewRef creates a partition reference owned by region (which may be nil).
func NewRef(id int, region Region) Ref {
	return Ref{id: id, region: region}
}

// SequentialID implements Partition.
func (r Ref) SequentialID() int {
	return r.id
}

// Region implements Partition.
func (r Ref) Region() Region {
	return r.region
}

// Compile-time interface checks.
var (
	_ Region    = RegionRef{}
	_ Partition = Ref{}
)

// Allocator hands out sequential identifiers starting at zero.
// It is safe for concurrent use. Identifiers are never reused.
type Allocator struct {
	next atomic.Int64
}

// Next returns a fresh identifier.
func (a *Allocator) Next() int {
	return int(a.next.Add(1) - 1)
}

// Peek returns the identifier the next call to Next will return.
func (a *Allocator) Peek() int {
	return int(a.next.Load())
}
