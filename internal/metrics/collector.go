// Package metrics provides internal metrics collection for the
// orchestrator. This package is internal and should not be imported by
// external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the orchestrator's Prometheus instruments.
type Collector struct {
	tasksSubmitted    *prometheus.CounterVec
	tasksCompleted    *prometheus.CounterVec
	workerInvocations *prometheus.CounterVec
	workerDuration    *prometheus.HistogramVec
	feedbackEvents    prometheus.Counter
	pendingTasks      prometheus.Gauge
}

// NewCollector registers the orchestrator instruments on the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests use
// a fresh registry to avoid duplicate registration.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		tasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_submitted_total",
				Help:      "Total number of submitted tasks",
			},
			[]string{"type"},
		),
		tasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks that reached a terminal status",
			},
			[]string{"status"},
		),
		workerInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_invocations_total",
				Help:      "Total number of worker invocations",
			},
			[]string{"worker", "status"},
		),
		workerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "worker_invocation_duration_seconds",
				Help:      "Worker invocation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker"},
		),
		feedbackEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_events_total",
				Help:      "Total number of feedback submissions",
			},
		),
		pendingTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_tasks",
				Help:      "Number of tasks waiting in the pending queue",
			},
		),
	}
}

// TaskSubmitted records a task submission.
func (c *Collector) TaskSubmitted(taskType string) {
	c.tasksSubmitted.WithLabelValues(taskType).Inc()
}

// TaskCompleted records a task reaching a terminal status.
func (c *Collector) TaskCompleted(status string) {
	c.tasksCompleted.WithLabelValues(status).Inc()
}

// WorkerInvocation records one worker invocation outcome.
func (c *Collector) WorkerInvocation(worker, status string, elapsed time.Duration) {
	c.workerInvocations.WithLabelValues(worker, status).Inc()
	c.workerDuration.WithLabelValues(worker).Observe(elapsed.Seconds())
}

// FeedbackReceived records a feedback submission.
func (c *Collector) FeedbackReceived() {
	c.feedbackEvents.Inc()
}

// SetPendingTasks updates the pending queue gauge.
func (c *Collector) SetPendingTasks(n int) {
	c.pendingTasks.Set(float64(n))
}
