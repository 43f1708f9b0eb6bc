package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisQueue(t *testing.T) (*miniredis.Miniredis, *RedisQueue) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	q, err := NewRedisQueue(RedisConfig{Addr: mr.Addr(), Key: "test:pending"})
	require.NoError(t, err)
	return mr, q
}

func testFIFO(t *testing.T, q TaskQueue) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(ctx, fmt.Sprintf("task-%d", i)))
	}

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for i := 0; i < 5; i++ {
		id, ok, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("task-%d", i), id)
	}

	_, ok, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty queue must report ok=false, not an error")
}

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue()
	defer q.Close()
	testFIFO(t, q)
}

func TestRedisQueueFIFO(t *testing.T) {
	mr, q := setupRedisQueue(t)
	defer mr.Close()
	defer q.Close()
	testFIFO(t, q)
}

func TestMemoryQueueConcurrentProducers(t *testing.T) {
	q := NewMemoryQueue()
	defer q.Close()
	ctx := context.Background()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Enqueue(ctx, fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		id, ok, err := q.Dequeue(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue()
	require.NoError(t, q.Close())

	err := q.Enqueue(context.Background(), "task-1")
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, _, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestNewSelectsBackend(t *testing.T) {
	q, err := New(DefaultConfig())
	require.NoError(t, err)
	defer q.Close()
	assert.IsType(t, &MemoryQueue{}, q)

	_, err = New(Config{Type: "kafka"})
	assert.Error(t, err)
}
