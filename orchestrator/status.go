package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/types"
)

// GetTaskStatus returns the task record for the given ID. Unknown IDs
// are not an error; the returned record carries the not_found status.
// The returned record is a copy: mutating it never perturbs stored
// state.
func (o *Orchestrator) GetTaskStatus(ctx context.Context, taskID string) (*types.Task, error) {
	task, err := o.store.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return types.NotFoundTask(taskID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	return task, nil
}

// GetWorkerStatus reports one worker's registration state, capabilities,
// and current load. Unregistered names report not_found with zero load.
func (o *Orchestrator) GetWorkerStatus(ctx context.Context, name string) (types.WorkerStatus, error) {
	w, ok := o.registry.Get(name)
	if !ok {
		return types.WorkerStatus{Status: "not_found"}, nil
	}

	load, err := o.pendingLoad(ctx, name)
	if err != nil {
		return types.WorkerStatus{}, err
	}

	return types.WorkerStatus{
		Status:       "active",
		Capabilities: w.Capabilities(),
		CurrentLoad:  load,
	}, nil
}

// GetSystemStatus reports the worker count, queue depth, completed-task
// count, and per-worker load in one consistent-enough snapshot. Reading
// status never mutates task state.
func (o *Orchestrator) GetSystemStatus(ctx context.Context) (*types.SystemStatus, error) {
	stats, err := o.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store stats: %w", err)
	}

	pendingByWorker, err := o.pendingLoads(ctx)
	if err != nil {
		return nil, err
	}

	status := &types.SystemStatus{
		ActiveWorkers:  o.registry.Count(),
		PendingTasks:   int(stats.StatusCounts[types.TaskStatusPending]),
		CompletedTasks: int(stats.CompletedTasks),
		WorkerStatus:   make(map[string]types.WorkerStatus, o.registry.Count()),
	}

	for _, name := range o.registry.Names() {
		w, _ := o.registry.Get(name)
		status.WorkerStatus[name] = types.WorkerStatus{
			Status:       "active",
			Capabilities: w.Capabilities(),
			CurrentLoad:  pendingByWorker[name],
		}
	}
	return status, nil
}

// pendingLoad counts pending tasks whose assignment names the worker.
func (o *Orchestrator) pendingLoad(ctx context.Context, name string) (int, error) {
	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		Status: []types.TaskStatus{types.TaskStatusPending},
		Worker: name,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	return len(tasks), nil
}

// pendingLoads counts pending assignments for every worker in one list
// pass.
func (o *Orchestrator) pendingLoads(ctx context.Context) (map[string]int, error) {
	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		Status: []types.TaskStatus{types.TaskStatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	loads := make(map[string]int)
	for _, task := range tasks {
		for _, name := range task.AssignedWorkers {
			loads[name]++
		}
	}
	return loads, nil
}
