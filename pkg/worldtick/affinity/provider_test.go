package affinity_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldtick/pkg/worldtick/affinity"
	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

// chunk is a caller-owned partition type, as a world layer would define it.
type chunk struct {
	id    int
	world *world
}

type world struct{ id int }

func (w *world) SequentialID() int { return w.id }

func (c *chunk) SequentialID() int { return c.id }

func (c *chunk) Region() partition.Region {
	if c.world == nil {
		return nil
	}
	return c.world
}

func TestPerPartition(t *testing.T) {
	provider := affinity.PerPartition[partition.Partition]{}

	for _, id := range []int{0, 1, 7, 1023} {
		p := partition.NewRef(id, partition.RegionRef{ID: 99})
		idx, err := provider.FindThread(p)
		require.NoError(t, err)
		assert.Equal(t, id, idx)
	}

	t.Run("ignores missing region", func(t *testing.T) {
		idx, err := provider.FindThread(partition.NewRef(5, nil))
		require.NoError(t, err)
		assert.Equal(t, 5, idx)
	})

	t.Run("performs no bounds reduction", func(t *testing.T) {
		idx, err := provider.FindThread(partition.NewRef(1<<20, nil))
		require.NoError(t, err)
		assert.Equal(t, 1<<20, idx)
	})
}

func TestPerRegion(t *testing.T) {
	provider := affinity.PerRegion[*chunk]{}
	overworld := &world{id: 2}
	nether := &world{id: 5}

	t.Run("partitions of one region share a thread", func(t *testing.T) {
		a := &chunk{id: 10, world: overworld}
		b := &chunk{id: 11, world: overworld}

		ia, err := provider.FindThread(a)
		require.NoError(t, err)
		ib, err := provider.FindThread(b)
		require.NoError(t, err)

		assert.Equal(t, 2, ia)
		assert.Equal(t, ia, ib)
	})

	t.Run("different regions use their own ids", func(t *testing.T) {
		idx, err := provider.FindThread(&chunk{id: 10, world: nether})
		require.NoError(t, err)
		assert.Equal(t, 5, idx)
	})

	t.Run("missing region fails fast", func(t *testing.T) {
		_, err := provider.FindThread(&chunk{id: 42})
		require.Error(t, err)
		assert.True(t, errors.Is(err, affinity.ErrNoRegion))

		var te *affinity.ThreadError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, 42, te.PartitionID)
		assert.Equal(t, affinity.StrategyRegion, te.Strategy)
		assert.Contains(t, te.Error(), "partition 42")
	})

	t.Run("typed nil region fails fast", func(t *testing.T) {
		p := partition.NewRef(3, (*world)(nil))

		var err error
		require.NotPanics(t, func() {
			_, err = affinity.PerRegion[partition.Partition]{}.FindThread(p)
		})
		assert.ErrorIs(t, err, affinity.ErrNoRegion)

		var te *affinity.ThreadError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 3, te.PartitionID)
	})
}

func TestProviderFunc(t *testing.T) {
	provider := affinity.ProviderFunc[partition.Partition](func(p partition.Partition) (int, error) {
		return p.SequentialID() * 2, nil
	})

	idx, err := provider.FindThread(partition.NewRef(3, nil))
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
}

func TestBounded(t *testing.T) {
	t.Run("reduces into pool", func(t *testing.T) {
		b, err := affinity.Bounded[partition.Partition](affinity.PerPartition[partition.Partition]{}, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, b.PoolSize())

		for id, want := range map[int]int{0: 0, 3: 3, 4: 0, 9: 1, 1023: 3} {
			idx, err := b.FindThread(partition.NewRef(id, nil))
			require.NoError(t, err)
			assert.Equal(t, want, idx, "partition %d", id)
		}
	})

	t.Run("rejects non-positive pool", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			_, err := affinity.Bounded[partition.Partition](affinity.PerPartition[partition.Partition]{}, size)
			assert.ErrorIs(t, err, affinity.ErrInvalidPoolSize)
		}
	})

	t.Run("propagates provider errors", func(t *testing.T) {
		b, err := affinity.Bounded[partition.Partition](affinity.PerRegion[partition.Partition]{}, 4)
		require.NoError(t, err)

		_, err = b.FindThread(partition.NewRef(1, nil))
		assert.ErrorIs(t, err, affinity.ErrNoRegion)
	})

	t.Run("rejects negative index", func(t *testing.T) {
		negative := affinity.ProviderFunc[partition.Partition](func(partition.Partition) (int, error) {
			return -3, nil
		})
		b, err := affinity.Bounded[partition.Partition](negative, 4)
		require.NoError(t, err)

		_, err = b.FindThread(partition.NewRef(8, nil))
		assert.ErrorIs(t, err, affinity.ErrNegativeThread)
	})
}

func TestProviders_Concurrent(t *testing.T) {
	region := partition.RegionRef{ID: 7}
	perRegion := affinity.PerRegion[partition.Partition]{}
	perPartition := affinity.PerPartition[partition.Partition]{}

	const goroutines = 32
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p := partition.NewRef(id, region)
			if idx, err := perRegion.FindThread(p); err != nil || idx != 7 {
				errs <- errors.New("region affinity mismatch")
			}
			if idx, err := perPartition.FindThread(p); err != nil || idx != id {
				errs <- errors.New("partition affinity mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
