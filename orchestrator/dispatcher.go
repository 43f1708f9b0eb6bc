package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cygel-ai/planetary/store"
	"github.com/cygel-ai/planetary/types"
)

// SubmitRequest describes a task submission. Type selects the workers;
// the payload is passed through to them opaquely.
type SubmitRequest struct {
	Type    string            `json:"type"`
	Payload types.TaskPayload `json:"payload"`
}

// Submit assigns an ID and workers, stores the task as pending, enqueues
// it, and returns immediately. IDs are unique under concurrent
// submission.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	task := &types.Task{
		ID:              uuid.New().String(),
		Type:            req.Type,
		Payload:         req.Payload,
		Status:          types.TaskStatusPending,
		AssignedWorkers: o.router.Route(req.Type),
		CreatedAt:       time.Now(),
		WorkerResults:   make(map[string]types.WorkerResult),
	}

	if err := o.store.SaveTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to store task: %w", err)
	}
	if err := o.queue.Enqueue(ctx, task.ID); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	if o.metrics != nil {
		o.metrics.TaskSubmitted(task.Type)
		if n, err := o.queue.Len(ctx); err == nil {
			o.metrics.SetPendingTasks(n)
		}
	}

	o.logger.Debug("task submitted",
		zap.String("task_id", task.ID),
		zap.String("type", task.Type),
		zap.Strings("workers", task.AssignedWorkers))
	return task.ID, nil
}

// ProcessPending drains the pending queue until it is empty, including
// tasks enqueued while earlier tasks in the same call were being
// processed. Worker failures never surface here; only infrastructure
// failures (store, queue) do.
func (o *Orchestrator) ProcessPending(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		taskID, ok, err := o.queue.Dequeue(ctx)
		if err != nil {
			return fmt.Errorf("failed to dequeue: %w", err)
		}
		if !ok {
			break
		}

		if err := o.processTask(ctx, taskID); err != nil {
			return err
		}
	}

	if o.metrics != nil {
		if n, err := o.queue.Len(ctx); err == nil {
			o.metrics.SetPendingTasks(n)
		}
	}
	return nil
}

// processTask fans one task out to its assigned workers, waits for all
// of them (the completion barrier), and finalizes the record.
func (o *Orchestrator) processTask(ctx context.Context, taskID string) error {
	task, err := o.store.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		// A queued ID without a record is a dispatch-level defect, not a
		// worker failure. Nothing to mark; log and move on.
		o.logger.Error("dequeued unknown task",
			zap.Error(types.NewError(types.ErrTaskNotFound, "no record for dequeued id").WithTaskID(taskID)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	if task.FinalResult != nil {
		// Duplicate delivery of an already-finalized ID. The first result
		// stands; workers are not re-invoked.
		o.logger.Debug("skipping finalized task", zap.String("task_id", taskID))
		return nil
	}

	if len(task.AssignedWorkers) == 0 {
		// Malformed record. This is the only path to the task-level
		// error status; individual worker failures never reach it.
		return o.finalizeError(ctx, taskID,
			types.NewError(types.ErrTaskMalformed, "task has no assigned workers").WithTaskID(taskID))
	}

	if err := o.store.UpdateTask(ctx, taskID, func(rec *types.Task) error {
		rec.Status = types.TaskStatusDispatched
		return nil
	}); err != nil {
		return fmt.Errorf("failed to mark task dispatched: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range task.AssignedWorkers {
		name := name
		g.Go(func() error {
			result := o.invokeWorker(gctx, task, name)

			if o.metrics != nil {
				o.metrics.WorkerInvocation(name, string(result.Status), result.Elapsed)
			}

			// Result-map writes from concurrently-reporting workers are
			// serialized by the store; entries are only ever added.
			return o.store.UpdateTask(gctx, taskID, func(rec *types.Task) error {
				if rec.WorkerResults == nil {
					rec.WorkerResults = make(map[string]types.WorkerResult)
				}
				rec.WorkerResults[name] = *result
				return nil
			})
		})
	}

	// Aggregation runs only after every assigned worker has reported.
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to record results for task %s: %w", taskID, err)
	}

	return o.finalize(ctx, taskID)
}

// invokeWorker runs one worker invocation under the shared pool with the
// configured timeout. Any failure mode — missing worker, returned error,
// panic, timeout, pool saturation — is converted into an error result so
// the barrier always completes.
func (o *Orchestrator) invokeWorker(ctx context.Context, task *types.Task, name string) *types.WorkerResult {
	start := time.Now()

	w, ok := o.registry.Get(name)
	if !ok {
		return &types.WorkerResult{
			Status: types.ResultError,
			Error: types.NewError(types.ErrWorkerNotFound, "assigned worker is not registered").
				WithWorker(name).WithTaskID(task.ID).Error(),
			Elapsed: time.Since(start),
		}
	}

	var result *types.WorkerResult
	err := o.pool.SubmitWait(ctx, func(unitCtx context.Context) error {
		invCtx, cancel := context.WithTimeout(unitCtx, o.timeout)
		defer cancel()

		done := make(chan invokeOutcome, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- invokeOutcome{
						err: types.NewError(types.ErrWorkerPanic, fmt.Sprintf("worker panicked: %v", r)).
							WithWorker(name).WithTaskID(task.ID),
					}
				}
			}()
			res, err := w.ProcessTask(invCtx, task.Clone())
			done <- invokeOutcome{result: res, err: err}
		}()

		select {
		case out := <-done:
			if out.err != nil {
				return out.err
			}
			result = out.result
			return nil
		case <-invCtx.Done():
			return types.NewError(types.ErrWorkerTimeout, "worker did not report in time").
				WithWorker(name).WithTaskID(task.ID).WithCause(invCtx.Err())
		}
	})

	elapsed := time.Since(start)
	if err != nil {
		o.logger.Warn("worker invocation failed",
			zap.String("task_id", task.ID),
			zap.String("worker", name),
			zap.Error(err))
		return &types.WorkerResult{
			Status:  types.ResultError,
			Error:   err.Error(),
			Elapsed: elapsed,
		}
	}
	if result == nil {
		return &types.WorkerResult{
			Status:  types.ResultError,
			Error:   "worker returned no result",
			Elapsed: elapsed,
		}
	}

	result.Elapsed = elapsed
	return result
}

type invokeOutcome struct {
	result *types.WorkerResult
	err    error
}

// finalize aggregates a task's results and writes the final record. The
// final result is written exactly once; repeated dispatch of the same ID
// leaves an existing result intact.
func (o *Orchestrator) finalize(ctx context.Context, taskID string) error {
	var finalStatus types.TaskStatus
	err := o.store.UpdateTask(ctx, taskID, func(rec *types.Task) error {
		if rec.FinalResult != nil {
			finalStatus = ""
			return nil
		}
		combined := o.agg.Aggregate(rec.WorkerResults)
		rec.FinalResult = combined
		rec.Status = combined.Status
		finalStatus = combined.Status
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to finalize task %s: %w", taskID, err)
	}

	if finalStatus != "" {
		if o.metrics != nil {
			o.metrics.TaskCompleted(string(finalStatus))
		}
		o.logger.Info("task completed",
			zap.String("task_id", taskID),
			zap.String("status", string(finalStatus)))
	}
	return nil
}

// finalizeError marks a task with the dispatch-level error status.
func (o *Orchestrator) finalizeError(ctx context.Context, taskID string, cause error) error {
	o.logger.Error("dispatch failed", zap.String("task_id", taskID), zap.Error(cause))
	err := o.store.UpdateTask(ctx, taskID, func(rec *types.Task) error {
		rec.Status = types.TaskStatusError
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark task %s errored: %w", taskID, err)
	}
	if o.metrics != nil {
		o.metrics.TaskCompleted(string(types.TaskStatusError))
	}
	return nil
}
