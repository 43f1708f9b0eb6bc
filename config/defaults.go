package config

import (
	"time"

	"github.com/cygel-ai/planetary/internal/pool"
	"github.com/cygel-ai/planetary/queue"
	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/worker"
)

// Default returns the default configuration: the three planetary workers,
// the standard routing table, in-memory store and queue.
func Default() *Config {
	return &Config{
		Workers: map[string]worker.Config{
			"Earth": {
				Task:         "Generate foundational code structures",
				Models:       []string{"codegen-large", "codegen-assist"},
				Dataset:      "datasets/earth/code_structures.json",
				Capabilities: []string{"code_generation", "structure_analysis"},
			},
			"Moon": {
				Task:         "Identify and resolve syntax errors",
				Models:       []string{"syntax-net", "error-detector"},
				Dataset:      "datasets/moon/syntax_errors.json",
				Capabilities: []string{"error_detection", "code_correction"},
			},
			"Sun": {
				Task:         "Analyze and optimize code performance",
				Models:       []string{"perf-optimizer", "code-profiler"},
				Dataset:      "datasets/sun/performance_metrics.json",
				Capabilities: []string{"performance_analysis", "code_optimization"},
			},
		},
		Routing: RoutingConfig{
			Table: map[string][]string{
				"code_generation":          {"Earth"},
				"syntax_check":             {"Moon"},
				"performance_optimization": {"Sun"},
				"full_pipeline":            {"Earth", "Moon", "Sun"},
			},
			DefaultWorker: "Earth",
		},
		Dispatch: DispatchConfig{
			Pool: pool.Config{
				MaxWorkers:  16,
				QueueSize:   256,
				IdleTimeout: 60 * time.Second,
			},
			WorkerTimeout: 30 * time.Second,
		},
		Store: store.DefaultConfig(),
		Queue: queue.DefaultConfig(),
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Addr:      ":9090",
			Namespace: "planetary",
		},
	}
}
