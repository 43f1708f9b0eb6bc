package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Redis-list-backed queue for multi-process deployments.
// LPUSH at the tail, RPOP at the head keeps FIFO submission order.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a Redis-backed queue and verifies connectivity.
func NewRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
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

	key := cfg.Key
	if key == "" {
		key = "planetary:tasks:pending"
	}

	return &RedisQueue{client: client, key: key}, nil
}

// Enqueue appends a task ID to the tail of the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, taskID string) error {
	return q.client.LPush(ctx, q.key, taskID).Err()
}

// Dequeue pops the head of the queue.
func (q *RedisQueue) Dequeue(ctx context.Context) (string, bool, error) {
	id, err := q.client.RPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Len returns the number of queued IDs.
func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close closes the Redis client.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

var _ TaskQueue = (*RedisQueue)(nil)
