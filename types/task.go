package types

import (
	"time"
)

// TaskStatus represents the lifecycle status of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is queued and has not been
	// dispatched to its workers yet.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusDispatched indicates the task's workers are currently running.
	TaskStatusDispatched TaskStatus = "dispatched"

	// TaskStatusSuccess indicates every assigned worker reported success.
	TaskStatusSuccess TaskStatus = "success"

	// TaskStatusPartialSuccess indicates at least one assigned worker did not
	// report success. An all-failed task also lands here; see the aggregation
	// policy in orchestrator.Aggregator.
	TaskStatusPartialSuccess TaskStatus = "partial_success"

	// TaskStatusError indicates a dispatch-level failure outside individual
	// worker isolation (for example a task record that disappeared between
	// enqueue and dequeue). Ordinary worker failures never produce this.
	TaskStatusError TaskStatus = "error"

	// TaskStatusCompletedWithFeedback indicates caller feedback has been
	// applied to a finished task.
	TaskStatusCompletedWithFeedback TaskStatus = "completed_with_feedback"

	// TaskStatusNotFound is a query-result-only status returned for lookups
	// of unknown task IDs. It is never stored.
	TaskStatusNotFound TaskStatus = "not_found"
)

// IsTerminal returns true if the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSuccess, TaskStatusPartialSuccess, TaskStatusError, TaskStatusCompletedWithFeedback:
		return true
	default:
		return false
	}
}

// IsCompleted returns true if the status counts toward the system-level
// completed-task total.
func (s TaskStatus) IsCompleted() bool {
	return s == TaskStatusSuccess || s == TaskStatusCompletedWithFeedback
}

// ResultStatus represents the outcome of a single worker invocation.
type ResultStatus string

const (
	ResultSuccess        ResultStatus = "success"
	ResultPartialSuccess ResultStatus = "partial_success"
	ResultError          ResultStatus = "error"
)

// TaskPayload is the typed task input. Each task type reads the variant
// fields it cares about; Extra carries forward-compatible extension data
// that no variant field covers.
type TaskPayload struct {
	// Requirements describes what to generate (code_generation tasks).
	Requirements *CodeRequirements `json:"requirements,omitempty" yaml:"requirements,omitempty"`

	// Code is the source under inspection (syntax_check and
	// performance_optimization tasks).
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Language is the programming language of Code.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Extra holds extension fields for task types the core does not model.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CodeRequirements describes a code generation request.
type CodeRequirements struct {
	ProgrammingLanguage string `json:"programming_language" yaml:"programming_language"`
	ProjectType         string `json:"project_type" yaml:"project_type"`
}

// WorkerResult is the outcome reported by one worker for one task.
type WorkerResult struct {
	// Status is the worker-level outcome.
	Status ResultStatus `json:"status"`

	// Output contains the worker's domain payload (generated code, error
	// lists, performance measurements, ...).
	Output map[string]any `json:"output,omitempty"`

	// Error is the failure message when Status is ResultError.
	Error string `json:"error,omitempty"`

	// Elapsed is how long the invocation took, including timeouts.
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// CombinedResult is the task-level result produced by the aggregator once
// every assigned worker has reported.
type CombinedResult struct {
	// Status follows the merge rule: success iff every component succeeded.
	Status TaskStatus `json:"status"`

	// Timestamp is when aggregation ran.
	Timestamp time.Time `json:"timestamp"`

	// Components holds the raw per-worker results keyed by worker name.
	Components map[string]WorkerResult `json:"components"`

	// Highlights holds extractor output keyed by highlight name, e.g.
	// "generated_code" or "performance_analysis". Extractors are registered
	// per worker kind; see orchestrator.Aggregator.
	Highlights map[string]any `json:"highlights,omitempty"`
}

// FeedbackEvent is one entry in a task's feedback append-log.
type FeedbackEvent struct {
	// ReceivedAt is when the feedback call arrived.
	ReceivedAt time.Time `json:"received_at"`

	// WorkerFeedback maps worker names to the sub-payload forwarded to them.
	// Names absent from the registry are skipped during routing but still
	// recorded here.
	WorkerFeedback map[string]map[string]any `json:"worker_feedback,omitempty"`

	// Notes is free-form caller commentary that is stored but not routed.
	Notes string `json:"notes,omitempty"`
}

// Task is a unit of submitted work with a tracked lifecycle.
//
// Tasks reference workers by name only; the worker handles themselves are
// owned by the registry. WorkerResults entries are only ever added during
// processing, and FinalResult is written exactly once by the aggregator
// (feedback later flips Status but leaves the result intact).
type Task struct {
	ID              string                  `json:"id"`
	Type            string                  `json:"type"`
	Payload         TaskPayload             `json:"payload"`
	Status          TaskStatus              `json:"status"`
	AssignedWorkers []string                `json:"assigned_workers"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	WorkerResults   map[string]WorkerResult `json:"worker_results,omitempty"`
	FinalResult     *CombinedResult         `json:"final_result,omitempty"`
	Feedback        []FeedbackEvent         `json:"feedback,omitempty"`
}

// Clone returns a deep copy of the task. Status queries hand out clones so
// callers can never mutate store-owned records; that includes the nested
// Output, Extra, Highlights, and feedback payload maps.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Payload.Extra = cloneAnyMap(t.Payload.Extra)
	cp.AssignedWorkers = append([]string(nil), t.AssignedWorkers...)
	if t.WorkerResults != nil {
		cp.WorkerResults = cloneResults(t.WorkerResults)
	}
	if t.FinalResult != nil {
		fr := *t.FinalResult
		fr.Components = cloneResults(t.FinalResult.Components)
		fr.Highlights = cloneAnyMap(t.FinalResult.Highlights)
		cp.FinalResult = &fr
	}
	if t.Feedback != nil {
		cp.Feedback = make([]FeedbackEvent, len(t.Feedback))
		for i, ev := range t.Feedback {
			if ev.WorkerFeedback != nil {
				wf := make(map[string]map[string]any, len(ev.WorkerFeedback))
				for name, payload := range ev.WorkerFeedback {
					wf[name] = cloneAnyMap(payload)
				}
				ev.WorkerFeedback = wf
			}
			cp.Feedback[i] = ev
		}
	}
	return &cp
}

func cloneResults(results map[string]WorkerResult) map[string]WorkerResult {
	cp := make(map[string]WorkerResult, len(results))
	for name, r := range results {
		r.Output = cloneAnyMap(r.Output)
		cp[name] = r
	}
	return cp
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// NotFoundTask returns the structured query result for an unknown task ID.
func NotFoundTask(id string) *Task {
	return &Task{ID: id, Status: TaskStatusNotFound}
}

// WorkerStatus is the point-query answer about a single worker.
type WorkerStatus struct {
	// Status is "active" for registered workers, "not_found" otherwise.
	Status string `json:"status"`

	// Capabilities is the worker's declared capability set.
	Capabilities []string `json:"capabilities,omitempty"`

	// CurrentLoad counts pending tasks that name this worker in their
	// assignment.
	CurrentLoad int `json:"current_load"`
}

// SystemStatus is the aggregate health answer.
type SystemStatus struct {
	ActiveWorkers  int                     `json:"active_workers"`
	PendingTasks   int                     `json:"pending_tasks"`
	CompletedTasks int                     `json:"completed_tasks"`
	WorkerStatus   map[string]WorkerStatus `json:"worker_status"`
}
