package queue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process FIFO queue. Safe for concurrent producers
// and consumers.
type MemoryQueue struct {
	mu     sync.Mutex
	ids    []string
	closed bool
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue appends a task ID to the tail of the queue.
func (q *MemoryQueue) Enqueue(ctx context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.ids = append(q.ids, taskID)
	return nil
}

// Dequeue pops the head of the queue.
func (q *MemoryQueue) Dequeue(ctx context.Context) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", false, ErrQueueClosed
	}
	if len(q.ids) == 0 {
		return "", false, nil
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true, nil
}

// Len returns the number of queued IDs.
func (q *MemoryQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids), nil
}

// Close marks the queue closed; further operations fail.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.ids = nil
	return nil
}

var _ TaskQueue = (*MemoryQueue)(nil)
