package affinity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldtick/pkg/worldtick/affinity"
	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

func refs(region partition.Region, ids ...int) []partition.Partition {
	out := make([]partition.Partition, 0, len(ids))
	for _, id := range ids {
		out = append(out, partition.NewRef(id, region))
	}
	return out
}

func TestAssign_PerPartition(t *testing.T) {
	parts := refs(nil, 0, 1, 2, 3, 4, 5)

	a, err := affinity.Assign[partition.Partition](parts, affinity.PerPartition[partition.Partition]{}, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, a.Threads())
	assert.Equal(t, 6, a.Len())
	assert.Equal(t, 4, a.Busy())
	assert.Equal(t, []partition.Partition{parts[0], parts[4]}, a.Bucket(0))
	assert.Equal(t, []partition.Partition{parts[1], parts[5]}, a.Bucket(1))
	assert.Equal(t, []partition.Partition{parts[3]}, a.Bucket(3))
	assert.Nil(t, a.Bucket(4))
	assert.Nil(t, a.Bucket(-1))

	idx, ok := a.ThreadOf(5)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = a.ThreadOf(99)
	assert.False(t, ok)
}

func TestAssign_PerRegion(t *testing.T) {
	overworld := partition.RegionRef{ID: 1}
	nether := partition.RegionRef{ID: 2}
	parts := append(refs(overworld, 10, 11, 12), refs(nether, 20, 21)...)

	a, err := affinity.Assign[partition.Partition](parts, affinity.PerRegion[partition.Partition]{}, 8)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Busy())
	assert.Len(t, a.Bucket(1), 3)
	assert.Len(t, a.Bucket(2), 2)
	for _, id := range []int{10, 11, 12} {
		idx, _ := a.ThreadOf(id)
		assert.Equal(t, 1, idx)
	}
}

func TestAssign_Errors(t *testing.T) {
	t.Run("invalid pool", func(t *testing.T) {
		_, err := affinity.Assign[partition.Partition](refs(nil, 1), affinity.PerPartition[partition.Partition]{}, 0)
		assert.ErrorIs(t, err, affinity.ErrInvalidPoolSize)
	})

	t.Run("one bad partition aborts the layout", func(t *testing.T) {
		parts := append(refs(partition.RegionRef{ID: 1}, 1, 2), partition.NewRef(3, nil))
		a, err := affinity.Assign[partition.Partition](parts, affinity.PerRegion[partition.Partition]{}, 4)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, affinity.ErrNoRegion)
	})

	t.Run("duplicate partition id", func(t *testing.T) {
		parts := refs(partition.RegionRef{ID: 1}, 4, 5, 4)
		a, err := affinity.Assign[partition.Partition](parts, affinity.PerPartition[partition.Partition]{}, 2)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, affinity.ErrDuplicatePartition)

		var te *affinity.ThreadError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 4, te.PartitionID)
	})

	t.Run("empty input", func(t *testing.T) {
		a, err := affinity.Assign[partition.Partition](nil, affinity.PerPartition[partition.Partition]{}, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Len())
		assert.Equal(t, 0, a.Busy())
	})
}

// recordingMetrics captures assignment calls.
type recordingMetrics struct {
	mu       sync.Mutex
	threads  []int
	failures int
}

func (r *recordingMetrics) RecordDispatch(context.Context, string, string, time.Duration) {}
func (r *recordingMetrics) RecordDispatchError(context.Context, string)                  {}
func (r *recordingMetrics) RecordExpiration(context.Context, string, string)             {}
func (r *recordingMetrics) RecordDeadLetter(context.Context, string)                     {}

func (r *recordingMetrics) RecordAssignment(_ context.Context, _ string, thread int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures++
		return
	}
	r.threads = append(r.threads, thread)
}

func TestInstrument(t *testing.T) {
	t.Run("records placements and failures", func(t *testing.T) {
		metrics := &recordingMetrics{}
		provider := affinity.Instrument[partition.Partition](affinity.PerRegion[partition.Partition]{}, affinity.StrategyRegion, metrics)

		_, err := provider.FindThread(partition.NewRef(1, partition.RegionRef{ID: 4}))
		require.NoError(t, err)
		_, err = provider.FindThread(partition.NewRef(2, nil))
		require.True(t, errors.Is(err, affinity.ErrNoRegion))

		assert.Equal(t, []int{4}, metrics.threads)
		assert.Equal(t, 1, metrics.failures)
	})

	t.Run("nil recorder returns provider unchanged", func(t *testing.T) {
		base := affinity.PerPartition[partition.Partition]{}
		got := affinity.Instrument[partition.Partition](base, affinity.StrategyPartition, nil)
		assert.Equal(t, base, got)
	})
}
