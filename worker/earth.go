package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/types"
)

// EarthName is the registry name of the code structure generation worker.
const EarthName = "Earth"

// earthDataset holds Earth's template library. Structure patterns grow
// through feedback.
type earthDataset struct {
	CodeTemplates     map[string]map[string]string   `json:"code_templates"`
	StructurePatterns map[string]map[string][]string `json:"structure_patterns"`
}

// Earth generates foundational code structures from a template dataset.
type Earth struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	dataset earthDataset
}

// NewEarth creates the Earth worker and loads its dataset.
func NewEarth(cfg Config, logger *zap.Logger) (*Earth, error) {
	e := &Earth{
		cfg:    cfg,
		logger: logger.With(zap.String("worker", EarthName)),
	}
	if err := loadDataset(cfg.Dataset, &e.dataset, e.logger); err != nil {
		return nil, err
	}
	if e.dataset.CodeTemplates == nil {
		e.dataset.CodeTemplates = make(map[string]map[string]string)
	}
	if e.dataset.StructurePatterns == nil {
		e.dataset.StructurePatterns = make(map[string]map[string][]string)
	}
	return e, nil
}

// Name implements Worker.
func (e *Earth) Name() string { return EarthName }

// Capabilities implements Worker.
func (e *Earth) Capabilities() []string { return e.cfg.Capabilities }

// earthAnalysis is the outcome of requirement analysis.
type earthAnalysis struct {
	template    string
	patterns    []string
	language    string
	projectType string
}

// ProcessTask generates a code structure for the task's requirements.
func (e *Earth) ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error) {
	start := time.Now()

	analysis := e.analyzeRequirements(task.Payload.Requirements)
	code, structure := e.generateStructure(analysis)
	issues := validateStructure(code)

	status := types.ResultSuccess
	if len(issues) > 0 {
		status = types.ResultPartialSuccess
	}

	return &types.WorkerResult{
		Status: status,
		Output: map[string]any{
			"generated_code": code,
			"structure":      structure,
			"validation": map[string]any{
				"is_valid": len(issues) == 0,
				"issues":   issues,
			},
			"metadata": map[string]any{
				"language":     analysis.language,
				"project_type": analysis.projectType,
				"models":       e.cfg.Models,
			},
		},
		Elapsed: time.Since(start),
	}, nil
}

// analyzeRequirements resolves template and patterns for the request,
// defaulting to a generic python project like the rest of the system.
func (e *Earth) analyzeRequirements(reqs *types.CodeRequirements) earthAnalysis {
	language := "python"
	projectType := "generic"
	if reqs != nil {
		if reqs.ProgrammingLanguage != "" {
			language = reqs.ProgrammingLanguage
		}
		if reqs.ProjectType != "" {
			projectType = reqs.ProjectType
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return earthAnalysis{
		template:    e.dataset.CodeTemplates[language][projectType],
		patterns:    e.dataset.StructurePatterns[language][projectType],
		language:    language,
		projectType: projectType,
	}
}

func (e *Earth) generateStructure(analysis earthAnalysis) (string, []string) {
	code := fmt.Sprintf("// Generated code structure for %s in %s\n", analysis.projectType, analysis.language)
	if analysis.template != "" {
		code += analysis.template
	} else {
		code += "// No template available"
	}
	return code, analysis.patterns
}

// validateStructure checks the generated structure. The current checks
// are shallow; issues flip the result to partial_success.
func validateStructure(code string) []string {
	if code == "" {
		return []string{"empty structure"}
	}
	return nil
}

// HandleFeedback stores successful structure patterns for future
// generations.
func (e *Earth) HandleFeedback(ctx context.Context, payload map[string]any) error {
	if !feedbackBool(payload, "is_successful") {
		return nil
	}

	pattern := feedbackString(payload, "pattern")
	language := feedbackString(payload, "language")
	projectType := feedbackString(payload, "project_type")
	if pattern == "" || language == "" || projectType == "" {
		return nil
	}

	e.mu.Lock()
	if e.dataset.StructurePatterns[language] == nil {
		e.dataset.StructurePatterns[language] = make(map[string][]string)
	}
	e.dataset.StructurePatterns[language][projectType] = append(
		e.dataset.StructurePatterns[language][projectType], pattern)
	saveDataset(e.cfg.Dataset, &e.dataset, e.logger)
	e.mu.Unlock()
	e.logger.Debug("stored structure pattern",
		zap.String("language", language),
		zap.String("project_type", projectType))
	return nil
}

var _ Worker = (*Earth)(nil)
