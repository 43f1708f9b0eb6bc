package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cygel-ai/planetary/types"
)

func submitAndProcess(t *testing.T, o *Orchestrator, taskType string) string {
	t.Helper()
	ctx := context.Background()
	id, err := o.Submit(ctx, SubmitRequest{Type: taskType})
	require.NoError(t, err)
	require.NoError(t, o.ProcessPending(ctx))
	return id
}

func TestSubmitFeedbackRoutesPerWorker(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	id := submitAndProcess(t, o, "full_pipeline")

	task, err := o.SubmitFeedback(ctx, id, Feedback{
		WorkerFeedback: map[string]map[string]any{
			"Earth": {"is_successful": true, "pattern": "def main(): ..."},
			"Moon":  {"new_pattern": "missing colon"},
		},
		Notes: "solid run",
	})
	require.NoError(t, err)

	assert.Equal(t, types.TaskStatusCompletedWithFeedback, task.Status)
	require.Len(t, task.Feedback, 1)
	assert.Equal(t, "solid run", task.Feedback[0].Notes)

	// Each worker sees only its own sub-payload.
	require.Len(t, earth.feedbackReceived(), 1)
	assert.Equal(t, true, earth.feedbackReceived()[0]["is_successful"])
	require.Len(t, moon.feedbackReceived(), 1)
	assert.Empty(t, sun.feedbackReceived())
}

func TestSubmitFeedbackSkipsUnknownWorker(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	id := submitAndProcess(t, o, "full_pipeline")

	task, err := o.SubmitFeedback(ctx, id, Feedback{
		WorkerFeedback: map[string]map[string]any{
			"Pluto": {"demoted": true},
			"Earth": {"is_successful": true},
		},
	})
	require.NoError(t, err)

	// The unknown name is dropped; delivery to registered workers and
	// the status transition still happen.
	assert.Equal(t, types.TaskStatusCompletedWithFeedback, task.Status)
	assert.Len(t, earth.feedbackReceived(), 1)
}

func TestSubmitFeedbackUnknownTask(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)

	task, err := o.SubmitFeedback(context.Background(), "no-such-id", Feedback{
		WorkerFeedback: map[string]map[string]any{"Earth": {"is_successful": true}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusNotFound, task.Status)

	// Nothing was routed for a task that does not exist.
	assert.Empty(t, earth.feedbackReceived())
}

func TestSubmitFeedbackRepeatAppends(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	id := submitAndProcess(t, o, "code_generation")

	for i := 0; i < 2; i++ {
		_, err := o.SubmitFeedback(ctx, id, Feedback{
			WorkerFeedback: map[string]map[string]any{"Earth": {"round": i}},
		})
		require.NoError(t, err)
	}

	task, err := o.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusCompletedWithFeedback, task.Status)
	assert.Len(t, task.Feedback, 2)
	assert.Len(t, earth.feedbackReceived(), 2)

	// completed_with_feedback still counts as completed, exactly once.
	status, err := o.GetSystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.CompletedTasks)
}

func TestSubmitFeedbackWorkerRejectionDoesNotFail(t *testing.T) {
	earth, moon, sun := planetFakes()
	earth.fbErr = errors.New("dataset write failed")
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	id := submitAndProcess(t, o, "code_generation")

	task, err := o.SubmitFeedback(ctx, id, Feedback{
		WorkerFeedback: map[string]map[string]any{"Earth": {"is_successful": true}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusCompletedWithFeedback, task.Status)
	assert.Len(t, task.Feedback, 1)
}
