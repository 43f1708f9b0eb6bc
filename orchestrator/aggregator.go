package orchestrator

import (
	"sync"
	"time"

	"github.com/cygel-ai/planetary/types"
	"github.com/cygel-ai/planetary/worker"
)

// Extractor pulls a domain-specific highlight out of one worker's result.
// It returns the highlight key, its value, and whether anything was
// extracted. Registering an extractor per worker kind keeps the merge
// function free of worker-specific branches.
type Extractor func(result types.WorkerResult) (key string, value any, ok bool)

// Aggregator combines per-worker results into one task-level result.
type Aggregator struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewAggregator creates an aggregator with the planetary extractors
// pre-registered. New worker kinds register their own extractor instead
// of modifying the merge rule.
func NewAggregator() *Aggregator {
	a := &Aggregator{extractors: make(map[string]Extractor)}

	a.RegisterExtractor(worker.EarthName, outputExtractor("generated_code", "generated_code"))
	a.RegisterExtractor(worker.MoonName, outputExtractor("syntax_validation", "errors"))
	a.RegisterExtractor(worker.SunName, outputExtractor("performance_analysis", "performance_analysis"))
	return a
}

// outputExtractor lifts one named field out of a worker's output map.
func outputExtractor(highlight, field string) Extractor {
	return func(result types.WorkerResult) (string, any, bool) {
		if result.Output == nil {
			return "", nil, false
		}
		value, ok := result.Output[field]
		if !ok {
			return "", nil, false
		}
		return highlight, value, true
	}
}

// RegisterExtractor registers the highlight extractor for a worker name,
// replacing any previous registration.
func (a *Aggregator) RegisterExtractor(workerName string, fn Extractor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extractors[workerName] = fn
}

// Aggregate merges the per-worker results under the deterministic rule:
// success iff every component succeeded, otherwise partial_success.
//
// An all-failed task also collapses to partial_success. The rule is
// intentionally simple; callers that care can inspect Components.
func (a *Aggregator) Aggregate(results map[string]types.WorkerResult) *types.CombinedResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := types.TaskStatusSuccess
	for _, r := range results {
		if r.Status != types.ResultSuccess {
			status = types.TaskStatusPartialSuccess
			break
		}
	}

	combined := &types.CombinedResult{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]types.WorkerResult, len(results)),
		Highlights: make(map[string]any),
	}

	for name, r := range results {
		combined.Components[name] = r
		if extract, ok := a.extractors[name]; ok {
			if key, value, ok := extract(r); ok {
				combined.Highlights[key] = value
			}
		}
	}

	return combined
}
