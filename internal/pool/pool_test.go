package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmitWait(t *testing.T) {
	p := New(Config{MaxWorkers: 4, QueueSize: 16})
	defer p.Close()

	var ran atomic.Bool
	err := p.SubmitWait(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())
}

func TestPoolPropagatesUnitError(t *testing.T) {
	p := New(Config{MaxWorkers: 2, QueueSize: 4})
	defer p.Close()

	sentinel := errors.New("unit failed")
	err := p.SubmitWait(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Failed)
}

func TestPoolRecoversPanic(t *testing.T) {
	p := New(Config{MaxWorkers: 2, QueueSize: 4})
	defer p.Close()

	err := p.SubmitWait(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})
	require.Error(t, err)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)

	// The pool keeps serving after a panic.
	err = p.SubmitWait(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestPoolBoundedConcurrency(t *testing.T) {
	const maxWorkers = 3
	p := New(Config{MaxWorkers: maxWorkers, QueueSize: 64})
	defer p.Close()

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.SubmitWait(context.Background(), func(ctx context.Context) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(maxWorkers))
	assert.Equal(t, int64(20), p.Stats().Submitted)
}

func TestPoolClosedRejectsWork(t *testing.T) {
	p := New(Config{MaxWorkers: 1, QueueSize: 1})
	p.Close()

	err := p.SubmitWait(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolSubmitWaitRespectsContext(t *testing.T) {
	p := New(Config{MaxWorkers: 1, QueueSize: 1})
	defer p.Close()

	// Occupy the single worker.
	release := make(chan struct{})
	go func() {
		_ = p.SubmitWait(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.SubmitWait(ctx, func(ctx context.Context) error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}
