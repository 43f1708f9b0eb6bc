// Package orchestrator implements the task-orchestration core: routing,
// concurrent dispatch with per-worker failure isolation, result
// aggregation, feedback routing, and status queries.
package orchestrator

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/internal/metrics"
	"github.com/cygel-ai/planetary/internal/pool"
	"github.com/cygel-ai/planetary/queue"
	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/worker"
)

// Options configures an Orchestrator. Zero-value fields fall back to
// in-memory defaults.
type Options struct {
	// Store persists task records. Defaults to the in-memory store.
	Store store.TaskStore

	// Queue is the pending-task feed. Defaults to the in-memory queue.
	Queue queue.TaskQueue

	// Pool bounds concurrent worker invocations.
	Pool pool.Config

	// WorkerTimeout caps one worker invocation.
	WorkerTimeout time.Duration

	// Logger defaults to a production zap logger.
	Logger *zap.Logger

	// MetricsNamespace names the Prometheus instruments. Empty disables
	// metric registration (used by tests that share a registry).
	MetricsNamespace string

	// MetricsRegisterer defaults to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

// Orchestrator owns the worker registry, router, store, queue, and pool
// behind its own synchronization; there is no ambient global state.
type Orchestrator struct {
	registry *worker.Registry
	router   *Router
	agg      *Aggregator
	store    store.TaskStore
	queue    queue.TaskQueue
	pool     *pool.Pool
	metrics  *metrics.Collector
	logger   *zap.Logger
	timeout  time.Duration
}

// defaultWorkerTimeout caps a worker invocation when no timeout is
// configured.
const defaultWorkerTimeout = 30 * time.Second

// New creates an Orchestrator. The registry and routing table are fixed
// for the orchestrator's lifetime; a routing table referencing a worker
// that is not registered is a startup misconfiguration and aborts.
func New(registry *worker.Registry, table map[string][]string, defaultWorker string, opts Options) (*Orchestrator, error) {
	if registry == nil || registry.Count() == 0 {
		return nil, fmt.Errorf("orchestrator: worker registry must not be empty")
	}
	if defaultWorker == "" {
		return nil, fmt.Errorf("orchestrator: default worker is required")
	}
	if !registry.Has(defaultWorker) {
		return nil, fmt.Errorf("orchestrator: default worker %q is not registered", defaultWorker)
	}
	for taskType, workers := range table {
		if len(workers) == 0 {
			return nil, fmt.Errorf("orchestrator: routing entry %q is empty", taskType)
		}
		for _, name := range workers {
			if !registry.Has(name) {
				return nil, fmt.Errorf("orchestrator: routing entry %q references unregistered worker %q", taskType, name)
			}
		}
	}

	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Queue == nil {
		opts.Queue = queue.NewMemoryQueue()
	}
	if opts.Logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: failed to build logger: %w", err)
		}
		opts.Logger = logger
	}
	if opts.WorkerTimeout <= 0 {
		opts.WorkerTimeout = defaultWorkerTimeout
	}

	var collector *metrics.Collector
	if opts.MetricsNamespace != "" {
		reg := opts.MetricsRegisterer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		collector = metrics.NewCollector(opts.MetricsNamespace, reg)
	}

	return &Orchestrator{
		registry: registry,
		router:   NewRouter(table, defaultWorker),
		agg:      NewAggregator(),
		store:    opts.Store,
		queue:    opts.Queue,
		pool:     pool.New(opts.Pool),
		metrics:  collector,
		logger:   opts.Logger.With(zap.String("component", "orchestrator")),
		timeout:  opts.WorkerTimeout,
	}, nil
}

// Registry returns the worker registry.
func (o *Orchestrator) Registry() *worker.Registry {
	return o.registry
}

// Router returns the task router.
func (o *Orchestrator) Router() *Router {
	return o.router
}

// RegisterExtractor registers a result-highlight extractor for a worker
// kind.
func (o *Orchestrator) RegisterExtractor(workerName string, fn Extractor) {
	o.agg.RegisterExtractor(workerName, fn)
}

// Close shuts down the pool and releases the queue and store.
func (o *Orchestrator) Close() error {
	o.pool.Close()
	if err := o.queue.Close(); err != nil {
		return err
	}
	return o.store.Close()
}
