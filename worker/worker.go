// Package worker defines the worker contract consumed by the orchestrator
// and the concrete planetary workers: Earth (code structure generation),
// Moon (syntax error detection and correction), and Sun (performance
// analysis and optimization).
//
// Workers are looked up by name; tasks never hold worker references. The
// registry is immutable after startup.
package worker

import (
	"context"

	"github.com/cygel-ai/planetary/types"
)

// Worker is the narrow contract each specialized worker exposes to the
// orchestrator core.
type Worker interface {
	// Name returns the worker's unique name.
	Name() string

	// Capabilities returns the worker's declared capability set.
	Capabilities() []string

	// ProcessTask handles one task and reports a result. Errors and panics
	// are contained by the dispatcher and converted into error results; a
	// worker may either return an error or a WorkerResult with
	// Status=ResultError, both surface the same way.
	ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error)

	// HandleFeedback applies caller feedback to the worker's internal
	// state. Fire-and-forget from the orchestrator's point of view.
	HandleFeedback(ctx context.Context, payload map[string]any) error
}

// Config describes one worker as declared in the static capability table.
type Config struct {
	// Task is the human-readable description of the worker's specialty.
	Task string `json:"task" yaml:"task"`

	// Models lists the model names the worker loads at startup.
	Models []string `json:"models" yaml:"models"`

	// Dataset is the path of the worker's JSON dataset. A missing file is
	// tolerated; the worker starts with an empty dataset.
	Dataset string `json:"dataset" yaml:"dataset"`

	// Capabilities is the declared capability set.
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// Feedback payload helpers. Feedback arrives as loosely-typed JSON; these
// keep the concrete workers free of repetitive type assertions.

func feedbackString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func feedbackBool(payload map[string]any, key string) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return false
}

func feedbackMap(payload map[string]any, key string) map[string]any {
	if v, ok := payload[key].(map[string]any); ok {
		return v
	}
	return nil
}
