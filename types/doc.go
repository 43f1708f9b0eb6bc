// Package types contains the shared data model for the planetary
// orchestrator: tasks, per-worker results, aggregated results, feedback
// events, and the structured error type used across the framework.
//
// The types package is the lowest-level package with no internal
// dependencies, so every other package can import it without creating
// circular imports.
package types
