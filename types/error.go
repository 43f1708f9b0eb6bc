package types

import "fmt"

// ErrorCode represents a unified error code across the orchestrator.
type ErrorCode string

// Dispatch error codes
const (
	ErrTaskNotFound   ErrorCode = "TASK_NOT_FOUND"
	ErrTaskMalformed  ErrorCode = "TASK_MALFORMED"
	ErrWorkerNotFound ErrorCode = "WORKER_NOT_FOUND"
	ErrWorkerTimeout  ErrorCode = "WORKER_TIMEOUT"
	ErrWorkerPanic    ErrorCode = "WORKER_PANIC"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Worker  string    `json:"worker,omitempty"`
	TaskID  string    `json:"task_id,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithWorker sets the worker name the error relates to.
func (e *Error) WithWorker(worker string) *Error {
	e.Worker = worker
	return e
}

// WithTaskID sets the task ID the error relates to.
func (e *Error) WithTaskID(taskID string) *Error {
	e.TaskID = taskID
	return e
}

// CodeOf extracts the ErrorCode from an error, or ErrInternalError for
// errors that are not structured.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrInternalError
}
