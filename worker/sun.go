package worker

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/types"
)

// SunName is the registry name of the performance analysis worker.
const SunName = "Sun"

// ComplexityPattern flags a code signature with a known complexity class.
type ComplexityPattern struct {
	Pattern     string `json:"pattern"`
	Complexity  string `json:"complexity"`
	Line        int    `json:"line,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
	Impact      string `json:"impact,omitempty"`
}

// BottleneckPattern flags a known performance bottleneck signature.
type BottleneckPattern struct {
	Pattern    string `json:"pattern"`
	Type       string `json:"type"`
	Location   string `json:"location"`
	Severity   int    `json:"severity"`
	Suggestion string `json:"suggestion"`
}

// Benchmark compares observed resource usage against a known optimum.
type Benchmark struct {
	Pattern              string  `json:"pattern"`
	Current              float64 `json:"current"`
	Optimal              float64 `json:"optimal"`
	ImprovementPotential float64 `json:"improvement_potential"`
}

type sunOptimizationPatterns struct {
	TimeComplexity  []ComplexityPattern `json:"time_complexity"`
	SpaceComplexity []ComplexityPattern `json:"space_complexity"`
	Bottlenecks     []BottleneckPattern `json:"bottlenecks"`
}

type sunDataset struct {
	OptimizationPatterns map[string]sunOptimizationPatterns `json:"optimization_patterns"`
	BenchmarkData        map[string]map[string]Benchmark    `json:"benchmark_data"`
}

// Sun analyzes code performance against pattern and benchmark datasets
// and proposes optimizations.
type Sun struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	dataset sunDataset
}

// NewSun creates the Sun worker and loads its dataset.
func NewSun(cfg Config, logger *zap.Logger) (*Sun, error) {
	s := &Sun{
		cfg:    cfg,
		logger: logger.With(zap.String("worker", SunName)),
	}
	if err := loadDataset(cfg.Dataset, &s.dataset, s.logger); err != nil {
		return nil, err
	}
	if s.dataset.OptimizationPatterns == nil {
		s.dataset.OptimizationPatterns = make(map[string]sunOptimizationPatterns)
	}
	if s.dataset.BenchmarkData == nil {
		s.dataset.BenchmarkData = make(map[string]map[string]Benchmark)
	}
	return s, nil
}

// Name implements Worker.
func (s *Sun) Name() string { return SunName }

// Capabilities implements Worker.
func (s *Sun) Capabilities() []string { return s.cfg.Capabilities }

// sunAnalysis is the performance picture assembled for one task.
type sunAnalysis struct {
	TimeComplexity  map[string]any           `json:"time_complexity"`
	SpaceComplexity map[string]any           `json:"space_complexity"`
	Bottlenecks     []BottleneckPattern      `json:"bottlenecks"`
	ResourceUsage   map[string]map[string]any `json:"resource_usage"`
}

// improvementThreshold is the minimum improvement potential (percent)
// that turns a benchmark delta into an optimization suggestion.
const improvementThreshold = 20

// ProcessTask analyzes the task's code and proposes optimizations.
func (s *Sun) ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error) {
	start := time.Now()

	code := task.Payload.Code
	language := task.Payload.Language
	if language == "" {
		language = "python"
	}

	analysis := s.analyze(code, language)
	var optimizations []map[string]any
	if s.needsOptimization(analysis) {
		optimizations = s.generateOptimizations(analysis)
	}

	status := types.ResultSuccess
	if len(analysis.Bottlenecks) > 0 && len(optimizations) == 0 {
		status = types.ResultPartialSuccess
	}

	return &types.WorkerResult{
		Status: status,
		Output: map[string]any{
			"performance_analysis": analysis,
			"optimizations":        optimizations,
			"metadata": map[string]any{
				"language": language,
				"models":   s.cfg.Models,
			},
		},
		Elapsed: time.Since(start),
	}, nil
}

// analyze matches the code against the language's complexity, bottleneck,
// and benchmark datasets.
func (s *Sun) analyze(code, language string) sunAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := s.dataset.OptimizationPatterns[language]

	analysis := sunAnalysis{
		TimeComplexity:  map[string]any{"overall": "O(n)"},
		SpaceComplexity: map[string]any{"overall": "O(n)"},
		ResourceUsage:   make(map[string]map[string]any),
	}

	var criticalPaths []map[string]any
	for _, p := range patterns.TimeComplexity {
		if p.Pattern != "" && strings.Contains(code, p.Pattern) {
			analysis.TimeComplexity["overall"] = p.Complexity
			criticalPaths = append(criticalPaths, map[string]any{
				"line":        p.Line,
				"complexity":  p.Complexity,
				"description": p.Description,
			})
		}
	}
	if criticalPaths != nil {
		analysis.TimeComplexity["critical_paths"] = criticalPaths
	}

	var opportunities []map[string]any
	for _, p := range patterns.SpaceComplexity {
		if p.Pattern != "" && strings.Contains(code, p.Pattern) {
			analysis.SpaceComplexity["overall"] = p.Complexity
			opportunities = append(opportunities, map[string]any{
				"type":       p.Type,
				"suggestion": p.Suggestion,
				"impact":     p.Impact,
			})
		}
	}
	if opportunities != nil {
		analysis.SpaceComplexity["optimization_opportunities"] = opportunities
	}

	for _, b := range patterns.Bottlenecks {
		if b.Pattern != "" && strings.Contains(code, b.Pattern) {
			analysis.Bottlenecks = append(analysis.Bottlenecks, b)
		}
	}

	for resource, bench := range s.dataset.BenchmarkData[language] {
		if bench.Pattern != "" && strings.Contains(code, bench.Pattern) {
			analysis.ResourceUsage[resource] = map[string]any{
				"current":               bench.Current,
				"optimal":               bench.Optimal,
				"improvement_potential": bench.ImprovementPotential,
			}
		}
	}

	return analysis
}

func (s *Sun) needsOptimization(analysis sunAnalysis) bool {
	if len(analysis.Bottlenecks) > 0 {
		return true
	}
	for _, usage := range analysis.ResourceUsage {
		if potential, ok := usage["improvement_potential"].(float64); ok && potential > improvementThreshold {
			return true
		}
	}
	return false
}

// generateOptimizations turns bottlenecks and benchmark deltas into
// concrete suggestions.
func (s *Sun) generateOptimizations(analysis sunAnalysis) []map[string]any {
	var optimizations []map[string]any

	for _, b := range analysis.Bottlenecks {
		impact := "medium"
		if b.Severity > 7 {
			impact = "high"
		}
		optimizations = append(optimizations, map[string]any{
			"type":        b.Type,
			"description": b.Suggestion,
			"impact":      impact,
			"location":    b.Location,
		})
	}

	for resource, usage := range analysis.ResourceUsage {
		potential, _ := usage["improvement_potential"].(float64)
		if potential <= improvementThreshold {
			continue
		}
		impact := "medium"
		if potential > 50 {
			impact = "high"
		}
		optimizations = append(optimizations, map[string]any{
			"type":          resource + "_optimization",
			"description":   "Optimize " + resource + " usage",
			"impact":        impact,
			"current_usage": usage["current"],
			"optimal_usage": usage["optimal"],
		})
	}

	return optimizations
}

// HandleFeedback records successful optimization patterns and refreshed
// benchmark data.
func (s *Sun) HandleFeedback(ctx context.Context, payload map[string]any) error {
	if !feedbackBool(payload, "is_successful") {
		return nil
	}

	changed := false
	s.mu.Lock()

	if np := feedbackMap(payload, "new_pattern"); np != nil {
		language := feedbackString(np, "language")
		patternType := feedbackString(np, "type")
		pattern := feedbackString(np, "pattern")
		if language != "" && patternType != "" && pattern != "" {
			entry := s.dataset.OptimizationPatterns[language]
			switch patternType {
			case "time_complexity":
				entry.TimeComplexity = append(entry.TimeComplexity, ComplexityPattern{
					Pattern:    pattern,
					Complexity: feedbackString(np, "complexity"),
					Suggestion: feedbackString(np, "suggestion"),
				})
			case "space_complexity":
				entry.SpaceComplexity = append(entry.SpaceComplexity, ComplexityPattern{
					Pattern:    pattern,
					Complexity: feedbackString(np, "complexity"),
					Suggestion: feedbackString(np, "suggestion"),
				})
			case "bottleneck":
				entry.Bottlenecks = append(entry.Bottlenecks, BottleneckPattern{
					Pattern:    pattern,
					Type:       feedbackString(np, "bottleneck_type"),
					Suggestion: feedbackString(np, "suggestion"),
				})
			}
			s.dataset.OptimizationPatterns[language] = entry
			changed = true
		}
	}

	if bd := feedbackMap(payload, "benchmark_data"); bd != nil {
		language := feedbackString(bd, "language")
		resource := feedbackString(bd, "resource")
		pattern := feedbackString(bd, "pattern")
		if language != "" && resource != "" && pattern != "" {
			if s.dataset.BenchmarkData[language] == nil {
				s.dataset.BenchmarkData[language] = make(map[string]Benchmark)
			}
			bench := Benchmark{Pattern: pattern}
			if v, ok := bd["current"].(float64); ok {
				bench.Current = v
			}
			if v, ok := bd["optimal"].(float64); ok {
				bench.Optimal = v
			}
			if v, ok := bd["improvement_potential"].(float64); ok {
				bench.ImprovementPotential = v
			}
			s.dataset.BenchmarkData[language][resource] = bench
			changed = true
		}
	}

	if changed {
		saveDataset(s.cfg.Dataset, &s.dataset, s.logger)
	}
	s.mu.Unlock()

	return nil
}

var _ Worker = (*Sun)(nil)
