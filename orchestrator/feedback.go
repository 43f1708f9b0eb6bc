package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/types"
)

// Feedback is a caller-supplied signal for a finished task.
type Feedback struct {
	// WorkerFeedback maps worker names to the sub-payload delivered to
	// that worker's HandleFeedback. Names not present in the registry are
	// skipped, never an error.
	WorkerFeedback map[string]map[string]any `json:"worker_feedback"`

	// Notes is stored on the task but not routed anywhere.
	Notes string `json:"notes,omitempty"`
}

// SubmitFeedback routes feedback to the workers that handled the task
// and appends it to the task's feedback log. The task transitions to
// completed_with_feedback; repeated calls append further events without
// corrupting earlier state.
//
// An unknown task ID is not an error: the returned record carries the
// not_found status, mirroring GetTaskStatus.
func (o *Orchestrator) SubmitFeedback(ctx context.Context, taskID string, fb Feedback) (*types.Task, error) {
	if _, err := o.store.GetTask(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.NotFoundTask(taskID), nil
		}
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	for name, payload := range fb.WorkerFeedback {
		w, ok := o.registry.Get(name)
		if !ok {
			// One unknown name never blocks delivery to the others.
			o.logger.Debug("feedback for unregistered worker skipped",
				zap.String("task_id", taskID),
				zap.String("worker", name))
			continue
		}
		if err := w.HandleFeedback(ctx, payload); err != nil {
			// Fire-and-forget: a worker that rejects feedback is logged
			// and does not fail the call.
			o.logger.Warn("worker rejected feedback",
				zap.String("task_id", taskID),
				zap.String("worker", name),
				zap.Error(err))
		}
	}

	event := types.FeedbackEvent{
		ReceivedAt:     time.Now(),
		WorkerFeedback: fb.WorkerFeedback,
		Notes:          fb.Notes,
	}

	err := o.store.UpdateTask(ctx, taskID, func(rec *types.Task) error {
		rec.Feedback = append(rec.Feedback, event)
		rec.Status = types.TaskStatusCompletedWithFeedback
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback for task %s: %w", taskID, err)
	}

	if o.metrics != nil {
		o.metrics.FeedbackReceived()
	}

	updated, err := o.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task %s: %w", taskID, err)
	}
	return updated, nil
}
