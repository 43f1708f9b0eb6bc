// Package planetary provides a top-level convenience entry point for
// assembling the full orchestration system with minimal boilerplate.
//
// Usage:
//
//	import "github.com/cygel-ai/planetary"
//
//	o, err := planetary.New()
//	o, err := planetary.New(planetary.WithConfigFile("planetary.yaml"))
//	o, err := planetary.New(planetary.WithWorker(myWorker))
//
// New builds the standard Earth, Moon, and Sun workers from the
// configuration's worker table, wires the configured store and queue,
// and returns a ready orchestrator.
package planetary

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cygel-ai/planetary/config"
	"github.com/cygel-ai/planetary/orchestrator"
	"github.com/cygel-ai/planetary/queue"
	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/worker"
)

type options struct {
	cfg        *config.Config
	configFile string
	logger     *zap.Logger
	store      store.TaskStore
	queue      queue.TaskQueue
	extra      []worker.Worker
	registerer prometheus.Registerer
}

// Option configures the orchestrator created by [New].
type Option func(*options)

// WithConfig uses a pre-built configuration instead of loading one.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigFile loads configuration from the given YAML file.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore overrides the configured task store.
func WithStore(s store.TaskStore) Option {
	return func(o *options) { o.store = s }
}

// WithQueue overrides the configured task queue.
func WithQueue(q queue.TaskQueue) Option {
	return func(o *options) { o.queue = q }
}

// WithWorker registers an additional worker beyond the built-in set. Its
// name must appear in the configuration's worker table to be routable.
func WithWorker(w worker.Worker) Option {
	return func(o *options) { o.extra = append(o.extra, w) }
}

// WithMetricsRegisterer overrides the Prometheus registry. Defaults to
// the global registerer.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New assembles a complete orchestrator from configuration.
func New(opts ...Option) (*orchestrator.Orchestrator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := o.logger
	if logger == nil {
		built, err := NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = built
	}

	workers, err := buildWorkers(cfg, logger, o.extra)
	if err != nil {
		return nil, err
	}
	registry, err := worker.NewRegistry(workers...)
	if err != nil {
		return nil, err
	}

	taskStore := o.store
	if taskStore == nil {
		taskStore, err = store.New(cfg.Store)
		if err != nil {
			return nil, err
		}
	}
	taskQueue := o.queue
	if taskQueue == nil {
		taskQueue, err = queue.New(cfg.Queue)
		if err != nil {
			return nil, err
		}
	}

	var namespace string
	if cfg.Metrics.Enabled {
		namespace = cfg.Metrics.Namespace
	}

	return orchestrator.New(registry, cfg.Routing.Table, cfg.Routing.DefaultWorker, orchestrator.Options{
		Store:             taskStore,
		Queue:             taskQueue,
		Pool:              cfg.Dispatch.Pool,
		WorkerTimeout:     cfg.Dispatch.WorkerTimeout,
		Logger:            logger,
		MetricsNamespace:  namespace,
		MetricsRegisterer: o.registerer,
	})
}

// buildWorkers constructs the built-in workers named in the worker table
// and merges in caller-supplied ones. A table entry that matches neither
// is a misconfiguration.
func buildWorkers(cfg *config.Config, logger *zap.Logger, extra []worker.Worker) ([]worker.Worker, error) {
	byName := make(map[string]worker.Worker, len(extra))
	for _, w := range extra {
		byName[w.Name()] = w
	}

	workers := make([]worker.Worker, 0, len(cfg.Workers))
	for name, wc := range cfg.Workers {
		if w, ok := byName[name]; ok {
			workers = append(workers, w)
			delete(byName, name)
			continue
		}

		var (
			w   worker.Worker
			err error
		)
		switch name {
		case worker.EarthName:
			w, err = worker.NewEarth(wc, logger)
		case worker.MoonName:
			w, err = worker.NewMoon(wc, logger)
		case worker.SunName:
			w, err = worker.NewSun(wc, logger)
		default:
			return nil, fmt.Errorf("planetary: no implementation for configured worker %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("planetary: failed to build worker %s: %w", name, err)
		}
		workers = append(workers, w)
	}

	// Extra workers not named in the worker table still register, so
	// routing entries may reference them.
	for _, w := range byName {
		workers = append(workers, w)
	}
	return workers, nil
}

// NewLogger builds a zap logger from the log configuration.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
