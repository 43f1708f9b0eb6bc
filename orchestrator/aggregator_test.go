package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cygel-ai/planetary/types"
	"github.com/cygel-ai/planetary/worker"
)

func TestAggregateAllSuccess(t *testing.T) {
	a := NewAggregator()

	combined := a.Aggregate(map[string]types.WorkerResult{
		worker.EarthName: {Status: types.ResultSuccess, Output: map[string]any{"generated_code": "def main(): pass"}},
		worker.MoonName:  {Status: types.ResultSuccess, Output: map[string]any{"errors": []any{}}},
	})

	assert.Equal(t, types.TaskStatusSuccess, combined.Status)
	assert.Len(t, combined.Components, 2)
	assert.Equal(t, "def main(): pass", combined.Highlights["generated_code"])
	assert.False(t, combined.Timestamp.IsZero())
}

func TestAggregateMixedIsPartialSuccess(t *testing.T) {
	a := NewAggregator()

	combined := a.Aggregate(map[string]types.WorkerResult{
		worker.EarthName: {Status: types.ResultSuccess, Output: map[string]any{"generated_code": "x = 1"}},
		worker.MoonName:  {Status: types.ResultError, Error: "worker panicked"},
		worker.SunName:   {Status: types.ResultPartialSuccess},
	})

	assert.Equal(t, types.TaskStatusPartialSuccess, combined.Status)

	// The failure is preserved per component, not erased by the merge.
	moon := combined.Components[worker.MoonName]
	assert.Equal(t, types.ResultError, moon.Status)
	assert.Equal(t, "worker panicked", moon.Error)

	// The succeeding component's highlight still surfaces.
	assert.Equal(t, "x = 1", combined.Highlights["generated_code"])
}

func TestAggregateAllFailedIsPartialSuccess(t *testing.T) {
	a := NewAggregator()

	combined := a.Aggregate(map[string]types.WorkerResult{
		worker.EarthName: {Status: types.ResultError, Error: "boom"},
		worker.SunName:   {Status: types.ResultError, Error: "bust"},
	})

	assert.Equal(t, types.TaskStatusPartialSuccess, combined.Status)
	assert.Empty(t, combined.Highlights)
}

func TestRegisterExtractorCustomWorker(t *testing.T) {
	a := NewAggregator()
	a.RegisterExtractor("Mercury", func(r types.WorkerResult) (string, any, bool) {
		v, ok := r.Output["thermal_report"]
		return "thermal_report", v, ok
	})

	combined := a.Aggregate(map[string]types.WorkerResult{
		"Mercury": {Status: types.ResultSuccess, Output: map[string]any{"thermal_report": "hot"}},
	})

	require.Equal(t, types.TaskStatusSuccess, combined.Status)
	assert.Equal(t, "hot", combined.Highlights["thermal_report"])
}
