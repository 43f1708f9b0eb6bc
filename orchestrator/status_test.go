package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cygel-ai/planetary/types"
)

func TestGetTaskStatusUnknownID(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)

	task, err := o.GetTaskStatus(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusNotFound, task.Status)
	assert.Equal(t, "no-such-id", task.ID)
}

func TestGetTaskStatusHasNoSideEffects(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	id, err := o.Submit(ctx, SubmitRequest{Type: "full_pipeline"})
	require.NoError(t, err)

	first, err := o.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.TaskStatusPending, first.Status)

	// Mutating a returned record must not leak into the store.
	first.Status = types.TaskStatusError
	first.AssignedWorkers[0] = "Pluto"

	second, err := o.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusPending, second.Status)
	assert.Equal(t, []string{"Earth", "Moon", "Sun"}, second.AssignedWorkers)
}

func TestGetWorkerStatus(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	// Two pending tasks name Earth, one also names Moon and Sun.
	_, err := o.Submit(ctx, SubmitRequest{Type: "code_generation"})
	require.NoError(t, err)
	_, err = o.Submit(ctx, SubmitRequest{Type: "full_pipeline"})
	require.NoError(t, err)

	status, err := o.GetWorkerStatus(ctx, "Earth")
	require.NoError(t, err)
	assert.Equal(t, "active", status.Status)
	assert.Equal(t, []string{"code_generation"}, status.Capabilities)
	assert.Equal(t, 2, status.CurrentLoad)

	status, err = o.GetWorkerStatus(ctx, "Sun")
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentLoad)

	status, err = o.GetWorkerStatus(ctx, "Pluto")
	require.NoError(t, err)
	assert.Equal(t, "not_found", status.Status)
	assert.Zero(t, status.CurrentLoad)
}

func TestGetSystemStatus(t *testing.T) {
	earth, moon, sun := planetFakes()
	o := newTestOrchestrator(t, fullPipelineTable, "Earth", Options{}, earth, moon, sun)
	ctx := context.Background()

	done := submitAndProcess(t, o, "full_pipeline")
	_, err := o.Submit(ctx, SubmitRequest{Type: "syntax_check"})
	require.NoError(t, err)

	status, err := o.GetSystemStatus(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, status.ActiveWorkers)
	assert.Equal(t, 1, status.PendingTasks)
	assert.Equal(t, 1, status.CompletedTasks)

	require.Len(t, status.WorkerStatus, 3)
	assert.Equal(t, "active", status.WorkerStatus["Earth"].Status)
	assert.Equal(t, 1, status.WorkerStatus["Moon"].CurrentLoad)
	assert.Equal(t, 0, status.WorkerStatus["Earth"].CurrentLoad)
	assert.Equal(t, 0, status.WorkerStatus["Sun"].CurrentLoad)

	// Status reads leave task state untouched.
	task, err := o.GetTaskStatus(ctx, done)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusSuccess, task.Status)
}
