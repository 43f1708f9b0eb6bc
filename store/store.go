// Package store provides task-record persistence for the orchestrator.
//
// The orchestrator core only needs an in-memory store; the Redis and
// SQLite backends are the hooks for deployments that want task state to
// survive a restart. All backends assume a single orchestrator process is
// the writer; read-modify-write updates are serialized inside each store,
// not across processes.
//
// Supported backends:
//   - Memory: default, for development and testing
//   - Redis: distributed deployments
//   - SQLite (via GORM): single-node durable deployments
package store

import (
	"context"
	"errors"

	"github.com/cygel-ai/planetary/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("task not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// TaskStore persists task records.
//
// GetTask and ListTasks hand out deep copies; callers never share memory
// with store-owned records. UpdateTask runs the mutation as a critical
// section on the stored record, which is what makes concurrent per-worker
// result writes safe.
type TaskStore interface {
	// SaveTask persists a task record (create or overwrite).
	SaveTask(ctx context.Context, task *types.Task) error

	// GetTask retrieves a task by ID. Returns ErrNotFound for unknown IDs.
	GetTask(ctx context.Context, taskID string) (*types.Task, error)

	// UpdateTask applies mutate to the stored record atomically with
	// respect to other UpdateTask calls for the same store.
	UpdateTask(ctx context.Context, taskID string, mutate func(*types.Task) error) error

	// ListTasks retrieves tasks matching the filter.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*types.Task, error)

	// Stats returns per-status counts.
	Stats(ctx context.Context) (*Stats, error)

	// Ping checks backend health.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// TaskFilter defines criteria for filtering tasks.
type TaskFilter struct {
	// Status filters by status (any of).
	Status []types.TaskStatus

	// Worker keeps only tasks naming this worker in their assignment.
	Worker string

	// Type filters by task type.
	Type string
}

// Matches reports whether a task satisfies the filter.
func (f TaskFilter) Matches(task *types.Task) bool {
	if len(f.Status) > 0 {
		found := false
		for _, s := range f.Status {
			if task.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Worker != "" {
		found := false
		for _, w := range task.AssignedWorkers {
			if w == f.Worker {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Type != "" && task.Type != f.Type {
		return false
	}
	return true
}

// Stats contains per-status task counts.
type Stats struct {
	Total          int64                          `json:"total"`
	StatusCounts   map[types.TaskStatus]int64     `json:"status_counts"`
	CompletedTasks int64                          `json:"completed_tasks"`
}

// StoreType selects the storage backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// Config is the store configuration.
type Config struct {
	Type StoreType `json:"type" yaml:"type"`

	// Redis configuration (only used when Type is "redis").
	Redis RedisConfig `json:"redis" yaml:"redis"`

	// DSN is the SQLite data source (only used when Type is "sqlite").
	// Use "file::memory:?cache=shared" for an in-memory database.
	DSN string `json:"dsn" yaml:"dsn"`
}

// RedisConfig contains Redis-specific store configuration.
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	PoolSize  int    `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Type: StoreTypeMemory,
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "planetary:",
		},
		DSN: "planetary.db",
	}
}
