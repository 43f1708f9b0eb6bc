package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("planetary_test", reg)

	c.TaskSubmitted("full_pipeline")
	c.TaskSubmitted("full_pipeline")
	c.TaskSubmitted("code_generation")
	c.TaskCompleted("success")
	c.WorkerInvocation("Earth", "success", 10*time.Millisecond)
	c.WorkerInvocation("Moon", "error", time.Millisecond)
	c.FeedbackReceived()
	c.SetPendingTasks(7)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.tasksSubmitted.WithLabelValues("full_pipeline")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksSubmitted.WithLabelValues("code_generation")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksCompleted.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.workerInvocations.WithLabelValues("Earth", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.workerInvocations.WithLabelValues("Moon", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.feedbackEvents))
	assert.Equal(t, float64(7), testutil.ToFloat64(c.pendingTasks))
}
