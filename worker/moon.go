package worker

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/types"
)

// MoonName is the registry name of the syntax checking worker.
const MoonName = "Moon"

// ErrorPattern describes one known syntax error signature.
type ErrorPattern struct {
	Pattern  string `json:"pattern"`
	Type     string `json:"type"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Severity int    `json:"severity"`
}

// CorrectionTemplate describes how to fix one error type.
type CorrectionTemplate struct {
	Description string `json:"description"`
	Example     string `json:"example"`
	AutoFix     string `json:"auto_fix,omitempty"`
}

// LanguageRule constrains which automatic fixes are acceptable.
type LanguageRule struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

type moonDataset struct {
	ErrorPatterns       map[string][]ErrorPattern                `json:"error_patterns"`
	CorrectionTemplates map[string]map[string]CorrectionTemplate `json:"correction_templates"`
	LanguageRules       map[string][]LanguageRule                `json:"language_rules"`
}

// Moon identifies syntax errors in submitted code and proposes
// corrections validated against per-language rules.
type Moon struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	dataset moonDataset
}

// NewMoon creates the Moon worker and loads its dataset.
func NewMoon(cfg Config, logger *zap.Logger) (*Moon, error) {
	m := &Moon{
		cfg:    cfg,
		logger: logger.With(zap.String("worker", MoonName)),
	}
	if err := loadDataset(cfg.Dataset, &m.dataset, m.logger); err != nil {
		return nil, err
	}
	if m.dataset.ErrorPatterns == nil {
		m.dataset.ErrorPatterns = make(map[string][]ErrorPattern)
	}
	if m.dataset.CorrectionTemplates == nil {
		m.dataset.CorrectionTemplates = make(map[string]map[string]CorrectionTemplate)
	}
	if m.dataset.LanguageRules == nil {
		m.dataset.LanguageRules = make(map[string][]LanguageRule)
	}
	return m, nil
}

// Name implements Worker.
func (m *Moon) Name() string { return MoonName }

// Capabilities implements Worker.
func (m *Moon) Capabilities() []string { return m.cfg.Capabilities }

// moonCorrection is one proposed fix for a detected error.
type moonCorrection struct {
	Error        ErrorPattern     `json:"error"`
	Suggestions  []map[string]any `json:"suggestions"`
	AutomaticFix string           `json:"automatic_fix,omitempty"`
	Valid        bool             `json:"is_valid"`
	Conflicts    []map[string]any `json:"conflicts,omitempty"`
}

// ProcessTask scans the task's code for known error patterns and proposes
// validated corrections.
func (m *Moon) ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error) {
	start := time.Now()

	code := task.Payload.Code
	language := task.Payload.Language
	if language == "" {
		language = "python"
	}

	errors := m.scanForErrors(code, language)
	var corrections []moonCorrection
	if len(errors) > 0 {
		corrections = m.generateCorrections(errors, language)
	}

	status := types.ResultSuccess
	if len(errors) > 0 && len(corrections) == 0 {
		status = types.ResultPartialSuccess
	}

	return &types.WorkerResult{
		Status: status,
		Output: map[string]any{
			"errors_found": len(errors),
			"errors":       errors,
			"corrections":  corrections,
			"metadata": map[string]any{
				"language": language,
				"models":   m.cfg.Models,
			},
		},
		Elapsed: time.Since(start),
	}, nil
}

// scanForErrors matches known error signatures against the code.
func (m *Moon) scanForErrors(code, language string) []ErrorPattern {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []ErrorPattern
	for _, pattern := range m.dataset.ErrorPatterns[language] {
		if pattern.Pattern != "" && strings.Contains(code, pattern.Pattern) {
			found = append(found, pattern)
		}
	}
	return found
}

// generateCorrections pairs each detected error with its correction
// template and validates automatic fixes against the language rules.
func (m *Moon) generateCorrections(errs []ErrorPattern, language string) []moonCorrection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	templates := m.dataset.CorrectionTemplates[language]
	rules := m.dataset.LanguageRules[language]

	corrections := make([]moonCorrection, 0, len(errs))
	for _, e := range errs {
		c := moonCorrection{Error: e, Valid: true}

		if tmpl, ok := templates[e.Type]; ok {
			c.Suggestions = append(c.Suggestions, map[string]any{
				"description": tmpl.Description,
				"example":     tmpl.Example,
			})
			c.AutomaticFix = tmpl.AutoFix
		}

		if c.AutomaticFix != "" {
			for _, rule := range rules {
				if rule.Pattern != "" && strings.Contains(c.AutomaticFix, rule.Pattern) {
					c.Conflicts = append(c.Conflicts, map[string]any{
						"rule":        rule.Name,
						"description": rule.Description,
					})
					c.Valid = false
				}
			}
		}

		corrections = append(corrections, c)
	}
	return corrections
}

// HandleFeedback records newly discovered error patterns and correction
// templates from successful corrections.
func (m *Moon) HandleFeedback(ctx context.Context, payload map[string]any) error {
	if !feedbackBool(payload, "is_successful") {
		return nil
	}

	changed := false
	m.mu.Lock()

	if np := feedbackMap(payload, "new_pattern"); np != nil {
		language := feedbackString(np, "language")
		pattern := feedbackString(np, "pattern")
		if language != "" && pattern != "" {
			m.dataset.ErrorPatterns[language] = append(m.dataset.ErrorPatterns[language], ErrorPattern{
				Pattern: pattern,
				Type:    feedbackString(np, "type"),
				Message: feedbackString(np, "message"),
			})
			changed = true
		}
	}

	if nt := feedbackMap(payload, "new_template"); nt != nil {
		language := feedbackString(nt, "language")
		errorType := feedbackString(nt, "error_type")
		if language != "" && errorType != "" {
			if m.dataset.CorrectionTemplates[language] == nil {
				m.dataset.CorrectionTemplates[language] = make(map[string]CorrectionTemplate)
			}
			m.dataset.CorrectionTemplates[language][errorType] = CorrectionTemplate{
				Description: feedbackString(nt, "description"),
				Example:     feedbackString(nt, "example"),
				AutoFix:     feedbackString(nt, "auto_fix"),
			}
			changed = true
		}
	}

	if changed {
		saveDataset(m.cfg.Dataset, &m.dataset, m.logger)
	}
	m.mu.Unlock()

	return nil
}

var _ Worker = (*Moon)(nil)
