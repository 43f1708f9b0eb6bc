// Package config provides unified configuration loading for the planetary
// orchestrator: defaults, YAML file, then environment overrides, in that
// precedence order.
//
// Usage:
//
//	cfg, err := config.Load("planetary.yaml")
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cygel-ai/planetary/internal/pool"
	"github.com/cygel-ai/planetary/queue"
	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/worker"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PLANETARY"

// Config is the complete orchestrator configuration.
type Config struct {
	// Workers is the static worker capability table, keyed by worker name.
	// Loaded once at startup and immutable afterwards.
	Workers map[string]worker.Config `yaml:"workers"`

	// Routing maps task types to the worker names that must handle them.
	Routing RoutingConfig `yaml:"routing"`

	// Dispatch controls the dispatcher and its invocation pool.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Store configures task persistence.
	Store store.Config `yaml:"store"`

	// Queue configures the pending-task feed.
	Queue queue.Config `yaml:"queue"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// RoutingConfig is the static task-type → workers table.
type RoutingConfig struct {
	// Table maps a task type to its assigned worker names.
	Table map[string][]string `yaml:"table"`

	// DefaultWorker receives tasks whose type has no table entry. This is
	// a deliberate policy: unknown types are default-routed, never
	// rejected, so every submission produces a non-empty assignment.
	DefaultWorker string `yaml:"default_worker"`
}

// DispatchConfig controls worker invocation.
type DispatchConfig struct {
	// Pool bounds concurrent worker invocations across all tasks.
	Pool pool.Config `yaml:"pool"`

	// WorkerTimeout caps one worker invocation. A worker that exceeds it
	// reports an error result instead of blocking its task's completion.
	WorkerTimeout time.Duration `yaml:"worker_timeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level"`

	// Format: json or console
	Format string `yaml:"format"`

	// OutputPaths, e.g. ["stdout"] or file paths.
	OutputPaths []string `yaml:"output_paths"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// Load reads configuration with precedence defaults → YAML file → env.
// An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides selected fields from environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrefix + "_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvPrefix + "_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
		c.Queue.Redis.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "_STORE_TYPE"); v != "" {
		c.Store.Type = store.StoreType(v)
	}
	if v := os.Getenv(EnvPrefix + "_QUEUE_TYPE"); v != "" {
		c.Queue.Type = queue.QueueType(v)
	}
	if v := os.Getenv(EnvPrefix + "_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "_POOL_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Dispatch.Pool.MaxWorkers = n
		}
	}
	if v := os.Getenv(EnvPrefix + "_WORKER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Dispatch.WorkerTimeout = d
		}
	}
}

// Validate checks for startup misconfiguration. Failures here abort
// initialization; nothing in this list is recoverable mid-run.
func (c *Config) Validate() error {
	if len(c.Workers) == 0 {
		return fmt.Errorf("config: worker table must not be empty")
	}
	for name, wc := range c.Workers {
		if name == "" {
			return fmt.Errorf("config: worker with empty name")
		}
		if len(wc.Capabilities) == 0 {
			return fmt.Errorf("config: worker %s declares no capabilities", name)
		}
	}

	if c.Routing.DefaultWorker == "" {
		return fmt.Errorf("config: routing.default_worker is required")
	}
	if _, ok := c.Workers[c.Routing.DefaultWorker]; !ok {
		return fmt.Errorf("config: routing.default_worker %q is not in the worker table", c.Routing.DefaultWorker)
	}
	for taskType, workers := range c.Routing.Table {
		if len(workers) == 0 {
			return fmt.Errorf("config: routing table entry %q is empty", taskType)
		}
		for _, name := range workers {
			if _, ok := c.Workers[name]; !ok {
				return fmt.Errorf("config: routing table entry %q references unknown worker %q", taskType, name)
			}
		}
	}

	if c.Dispatch.WorkerTimeout <= 0 {
		return fmt.Errorf("config: dispatch.worker_timeout must be positive")
	}
	return nil
}
