package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cygel-ai/planetary/types"
)

// RedisStore is a Redis-backed TaskStore. Task records are stored as JSON
// under per-task keys with a status index kept in Redis sets, following
// the same key layout the rest of the system uses for its queue.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string

	// mu serializes read-modify-write updates within this process.
	mu sync.Mutex
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "planetary:"
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix + "task:",
	}, nil
}

func (s *RedisStore) taskKey(taskID string) string {
	return s.keyPrefix + "data:" + taskID
}

func (s *RedisStore) statusKey(status types.TaskStatus) string {
	return s.keyPrefix + "status:" + string(status)
}

func (s *RedisStore) indexKey() string {
	return s.keyPrefix + "all"
}

// SaveTask persists a task record.
func (s *RedisStore) SaveTask(ctx context.Context, task *types.Task) error {
	if task == nil || task.ID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, task, "")
}

// save writes the record and maintains the status indexes. oldStatus is
// the previous status when known, so the stale index entry can be removed.
func (s *RedisStore) save(ctx context.Context, task *types.Task, oldStatus types.TaskStatus) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.taskKey(task.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(), task.ID)
	if oldStatus != "" && oldStatus != task.Status {
		pipe.SRem(ctx, s.statusKey(oldStatus), task.ID)
	}
	pipe.SAdd(ctx, s.statusKey(task.Status), task.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// GetTask retrieves a task by ID.
func (s *RedisStore) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	data, err := s.client.Get(ctx, s.taskKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var task types.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", taskID, err)
	}
	return &task, nil
}

// UpdateTask applies mutate under the store's update lock.
func (s *RedisStore) UpdateTask(ctx context.Context, taskID string, mutate func(*types.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	oldStatus := task.Status
	if err := mutate(task); err != nil {
		return err
	}
	return s.save(ctx, task, oldStatus)
}

// ListTasks retrieves tasks matching the filter. Status filters use the
// status index; other filters scan the candidate set.
func (s *RedisStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*types.Task, error) {
	var ids []string
	var err error

	if len(filter.Status) > 0 {
		keys := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			keys = append(keys, s.statusKey(status))
		}
		ids, err = s.client.SUnion(ctx, keys...).Result()
	} else {
		ids, err = s.client.SMembers(ctx, s.indexKey()).Result()
	}
	if err != nil {
		return nil, err
	}

	result := make([]*types.Task, 0, len(ids))
	for _, id := range ids {
		task, err := s.GetTask(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Matches(task) {
			result = append(result, task)
		}
	}
	return result, nil
}

// Stats returns per-status counts from the status indexes.
func (s *RedisStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{StatusCounts: make(map[types.TaskStatus]int64)}

	total, err := s.client.SCard(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	stats.Total = total

	statuses := []types.TaskStatus{
		types.TaskStatusPending,
		types.TaskStatusDispatched,
		types.TaskStatusSuccess,
		types.TaskStatusPartialSuccess,
		types.TaskStatusError,
		types.TaskStatusCompletedWithFeedback,
	}
	for _, status := range statuses {
		n, err := s.client.SCard(ctx, s.statusKey(status)).Result()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			stats.StatusCounts[status] = n
		}
		if status.IsCompleted() {
			stats.CompletedTasks += n
		}
	}
	return stats, nil
}

// Ping checks backend health.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ TaskStore = (*RedisStore)(nil)
