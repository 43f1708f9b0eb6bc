// Package pool provides the shared bounded goroutine pool used for worker
// invocations. One long-lived pool serves the whole orchestrator; each
// (task, worker) pairing is submitted as one unit of work.
package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrPoolClosed = errors.New("pool is closed")

// Unit is a schedulable unit of work.
type Unit func(ctx context.Context) error

// Config configures the pool. Size and queue depth are explicit so resource
// limits live in configuration rather than being recreated per batch.
type Config struct {
	MaxWorkers  int           `json:"max_workers" yaml:"max_workers"`
	QueueSize   int           `json:"queue_size" yaml:"queue_size"`
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:  16,
		QueueSize:   256,
		IdleTimeout: 60 * time.Second,
	}
}

// Pool manages a bounded set of worker goroutines. Goroutines are spawned
// lazily up to MaxWorkers and exit after IdleTimeout without work.
type Pool struct {
	maxWorkers  int
	idleTimeout time.Duration
	queue       chan unitWrapper

	workerCount atomic.Int32
	activeCount atomic.Int32
	closed      atomic.Bool
	wg          sync.WaitGroup

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

type unitWrapper struct {
	unit   Unit
	ctx    context.Context
	result chan error
}

// New creates a pool from the given config. Zero or negative values fall
// back to defaults.
func New(cfg Config) *Pool {
	def := DefaultConfig()
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = def.MaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &Pool{
		maxWorkers:  cfg.MaxWorkers,
		idleTimeout: cfg.IdleTimeout,
		queue:       make(chan unitWrapper, cfg.QueueSize),
	}
}

// SubmitWait schedules a unit and blocks until it completes or ctx is done.
// A full queue applies backpressure by blocking the caller rather than
// dropping work.
func (p *Pool) SubmitWait(ctx context.Context, unit Unit) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)

	wrapper := unitWrapper{
		unit:   unit,
		ctx:    ctx,
		result: make(chan error, 1),
	}

	select {
	case p.queue <- wrapper:
		p.ensureWorker()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-wrapper.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) ensureWorker() {
	for {
		current := p.workerCount.Load()
		if current >= int32(p.maxWorkers) {
			return
		}
		// Spawn only when every existing worker is busy.
		if current > p.activeCount.Load() {
			return
		}
		if p.workerCount.CompareAndSwap(current, current+1) {
			p.wg.Add(1)
			go p.worker()
			return
		}
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	defer p.workerCount.Add(-1)

	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case wrapper, ok := <-p.queue:
			if !ok {
				return
			}

			p.activeCount.Add(1)
			err := p.run(wrapper)
			p.activeCount.Add(-1)

			wrapper.result <- err
			close(wrapper.result)

			if err != nil {
				p.failed.Add(1)
			} else {
				p.completed.Add(1)
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.idleTimeout)

		case <-timer.C:
			if p.workerCount.Load() > 1 {
				return
			}
			timer.Reset(p.idleTimeout)
		}
	}
}

func (p *Pool) run(wrapper unitWrapper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return wrapper.unit(wrapper.ctx)
}

// Close closes the pool and waits for in-flight units to finish.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	close(p.queue)
	p.wg.Wait()
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   int(p.workerCount.Load()),
		Active:    int(p.activeCount.Load()),
		Queued:    len(p.queue),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats contains pool counters.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int   `json:"active"`
	Queued    int   `json:"queued"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// PanicError wraps a recovered panic from a unit so callers can tell
// panics apart from ordinary failures.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "unit panicked"
}
