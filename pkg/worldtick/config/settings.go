package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/randalmurphal/worldtick/pkg/worldtick/affinity"
	"github.com/randalmurphal/worldtick/pkg/worldtick/deadletter"
	"github.com/randalmurphal/worldtick/pkg/worldtick/node"
	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

// Dead-letter drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrInvalidSettings indicates a configuration value failed validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the validated server configuration.
type Settings struct {
	Scheduler SchedulerSettings
	Events    EventSettings
}

// SchedulerSettings configures thread assignment.
type SchedulerSettings struct {
	// PoolSize is the number of worker threads. Default: runtime.NumCPU().
	PoolSize int
	// Strategy selects the affinity policy. Default: partition.
	Strategy affinity.Strategy
}

// EventSettings configures the event node.
type EventSettings struct {
	RemoveOnInvalid bool
	RemoveOnError   bool
	DeadLetter      DeadLetterSettings
}

// DeadLetterSettings configures where failed dispatches are kept.
type DeadLetterSettings struct {
	// Driver is none, memory or sqlite. Default: memory.
	Driver string
	// Path is the SQLite database file. Required for the sqlite driver.
	Path string
	// MaxSize bounds the memory driver. Default: deadletter.DefaultMaxSize.
	MaxSize int
}

// Load extracts and validates Settings from cfg.
func Load(cfg Config) (Settings, error) {
	sched := cfg.Sub("scheduler")
	events := cfg.Sub("events")
	dl := events.Sub("dead_letter")

	s := Settings{
		Scheduler: SchedulerSettings{
			PoolSize: sched.Int("pool_size", runtime.NumCPU()),
		},
		Events: EventSettings{
			RemoveOnInvalid: events.Bool("remove_on_invalid", false),
			RemoveOnError:   events.Bool("remove_on_error", false),
			DeadLetter: DeadLetterSettings{
				Driver:  dl.String("driver", DriverMemory),
				Path:    dl.String("path", ""),
				MaxSize: dl.Int("max_size", deadletter.DefaultMaxSize),
			},
		},
	}

	if s.Scheduler.PoolSize <= 0 {
		return Settings{}, fmt.Errorf("%w: scheduler.pool_size must be positive, got %d", ErrInvalidSettings, s.Scheduler.PoolSize)
	}

	strategy, err := affinity.ParseStrategy(sched.String("strategy", string(affinity.StrategyPartition)))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: scheduler.strategy: %w", ErrInvalidSettings, err)
	}
	s.Scheduler.Strategy = strategy

	switch s.Events.DeadLetter.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite:
		if s.Events.DeadLetter.Path == "" {
			return Settings{}, fmt.Errorf("%w: events.dead_letter.path is required for the sqlite driver", ErrInvalidSettings)
		}
	default:
		return Settings{}, fmt.Errorf("%w: unknown events.dead_letter.driver %q", ErrInvalidSettings, s.Events.DeadLetter.Driver)
	}

	return s, nil
}

// Provider returns the configured affinity strategy reduced into the pool.
func (s Settings) Provider() (*affinity.BoundedProvider[partition.Partition], error) {
	raw, err := affinity.New(s.Scheduler.Strategy)
	if err != nil {
		return nil, err
	}
	return affinity.Bounded(raw, s.Scheduler.PoolSize)
}

// Policy returns the node retention policy.
func (s Settings) Policy() node.Policy {
	return node.Policy{
		RemoveOnInvalid: s.Events.RemoveOnInvalid,
		RemoveOnError:   s.Events.RemoveOnError,
	}
}

// OpenDeadLetters opens the configured store. The none driver returns a nil store.
func (s Settings) OpenDeadLetters() (deadletter.Store, error) {
	switch s.Events.DeadLetter.Driver {
	case DriverNone:
		return nil, nil
	case DriverSQLite:
		store, err := deadletter.NewSQLiteStore(s.Events.DeadLetter.Path)
		if err != nil {
			return nil, fmt.Errorf("open dead letter store: %w", err)
		}
		return store, nil
	default:
		return deadletter.NewMemoryStore(s.Events.DeadLetter.MaxSize), nil
	}
}
