// Package queue provides the pending-task feed consumed by the dispatcher.
//
// The queue carries task IDs only; task records live in the store. Two
// backends are provided: an in-process FIFO for development and testing,
// and a Redis list for deployments where submission and processing happen
// in different processes. Ack/delete semantics of an upstream broker stay
// outside the core; this adapter only supplies ordered enqueue/dequeue.
package queue

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrQueueClosed = errors.New("queue is closed")
)

// TaskQueue is an ordered feed of pending task IDs.
type TaskQueue interface {
	// Enqueue appends a task ID to the tail of the queue.
	Enqueue(ctx context.Context, taskID string) error

	// Dequeue pops the head of the queue. ok is false when the queue is
	// empty at call time; an empty queue is not an error.
	Dequeue(ctx context.Context) (taskID string, ok bool, err error)

	// Len returns the number of queued IDs.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// QueueType selects the queue backend.
type QueueType string

const (
	QueueTypeMemory QueueType = "memory"
	QueueTypeRedis  QueueType = "redis"
)

// Config configures the queue backend.
type Config struct {
	Type QueueType `json:"type" yaml:"type"`

	// Redis is only used when Type is "redis".
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig contains Redis-specific queue configuration.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	PoolSize int    `json:"pool_size" yaml:"pool_size"`

	// Key is the Redis list key holding the pending IDs.
	Key string `json:"key" yaml:"key"`
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		Type: QueueTypeMemory,
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			Key:      "planetary:tasks:pending",
		},
	}
}

// New creates a TaskQueue from the configuration.
func New(cfg Config) (TaskQueue, error) {
	switch cfg.Type {
	case QueueTypeMemory, "":
		return NewMemoryQueue(), nil
	case QueueTypeRedis:
		return NewRedisQueue(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}
