package config_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/randalmurphal/worldtick/pkg/worldtick/affinity"
	"github.com/randalmurphal/worldtick/pkg/worldtick/config"
	"github.com/randalmurphal/worldtick/pkg/worldtick/deadletter"
	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := config.Load(config.New(nil))
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), s.Scheduler.PoolSize)
	assert.Equal(t, affinity.StrategyPartition, s.Scheduler.Strategy)
	assert.False(t, s.Events.RemoveOnInvalid)
	assert.False(t, s.Events.RemoveOnError)
	assert.Equal(t, config.DriverMemory, s.Events.DeadLetter.Driver)
	assert.Equal(t, deadletter.DefaultMaxSize, s.Events.DeadLetter.MaxSize)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
scheduler:
  pool_size: 4
  strategy: Region
events:
  remove_on_invalid: true
  remove_on_error: true
  dead_letter:
    driver: none
`))
	require.NoError(t, err)

	s, err := config.Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Scheduler.PoolSize)
	assert.Equal(t, affinity.StrategyRegion, s.Scheduler.Strategy)
	assert.True(t, s.Policy().RemoveOnInvalid)
	assert.True(t, s.Policy().RemoveOnError)

	store, err := s.OpenDeadLetters()
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero pool", "scheduler:\n  pool_size: 0\n"},
		{"negative pool", "scheduler:\n  pool_size: -2\n"},
		{"unknown strategy", "scheduler:\n  strategy: random\n"},
		{"unknown driver", "events:\n  dead_letter:\n    driver: redis\n"},
		{"sqlite without path", "events:\n  dead_letter:\n    driver: sqlite\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = config.Load(cfg)
			assert.ErrorIs(t, err, config.ErrInvalidSettings)
		})
	}
}

func TestLoad_UnknownStrategyWrapsCause(t *testing.T) {
	cfg := config.New(map[string]any{"scheduler": map[string]any{"strategy": "random"}})
	_, err := config.Load(cfg)
	assert.ErrorIs(t, err, affinity.ErrUnknownStrategy)
}

func TestSettings_Provider(t *testing.T) {
	cfg := config.New(map[string]any{
		"scheduler": map[string]any{"pool_size": 3, "strategy": "region"},
	})
	s, err := config.Load(cfg)
	require.NoError(t, err)

	provider, err := s.Provider()
	require.NoError(t, err)
	assert.Equal(t, 3, provider.PoolSize())

	region := partition.RegionRef{ID: 7}
	thread, err := provider.FindThread(partition.NewRef(100, region))
	require.NoError(t, err)
	assert.Equal(t, 1, thread)
}

func TestSettings_OpenDeadLetters(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s := config.Settings{Events: config.EventSettings{
			DeadLetter: config.DeadLetterSettings{Driver: config.DriverMemory, MaxSize: 1},
		}}
		store, err := s.OpenDeadLetters()
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Put(ctx, deadletter.NewRecord("a", "l1", nil, assert.AnError)))
		assert.ErrorIs(t, store.Put(ctx, deadletter.NewRecord("a", "l2", nil, assert.AnError)), deadletter.ErrFull)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dlq.db")
		cfg := config.New(map[string]any{
			"events": map[string]any{
				"dead_letter": map[string]any{"driver": "sqlite", "path": path},
			},
		})
		s, err := config.Load(cfg)
		require.NoError(t, err)

		store, err := s.OpenDeadLetters()
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*deadletter.SQLiteStore)
		assert.True(t, ok)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
