package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRouterRoute(t *testing.T) {
	table := map[string][]string{
		"code_generation": {"Earth"},
		"full_pipeline":   {"Earth", "Moon", "Sun"},
	}
	r := NewRouter(table, "Earth")

	assert.Equal(t, []string{"Earth"}, r.Route("code_generation"))
	assert.Equal(t, []string{"Earth", "Moon", "Sun"}, r.Route("full_pipeline"))

	// Unmapped types fall back to the default worker.
	assert.Equal(t, []string{"Earth"}, r.Route("interpretive_dance"))
	assert.Equal(t, "Earth", r.DefaultWorker())
	assert.Equal(t, 2, r.Types())
}

func TestRouterCopiesAssignments(t *testing.T) {
	table := map[string][]string{"full_pipeline": {"Earth", "Moon"}}
	r := NewRouter(table, "Earth")

	// Neither the source table nor a returned slice can mutate the
	// router's view.
	table["full_pipeline"][0] = "Pluto"
	got := r.Route("full_pipeline")
	require.Equal(t, []string{"Earth", "Moon"}, got)

	got[1] = "Pluto"
	assert.Equal(t, []string{"Earth", "Moon"}, r.Route("full_pipeline"))
}

func TestRouterRouteProperty(t *testing.T) {
	table := map[string][]string{
		"code_generation": {"Earth"},
		"syntax_check":    {"Moon"},
		"optimization":    {"Sun"},
		"full_pipeline":   {"Earth", "Moon", "Sun"},
	}
	r := NewRouter(table, "Earth")

	rapid.Check(t, func(t *rapid.T) {
		taskType := rapid.String().Draw(t, "taskType")

		got := r.Route(taskType)
		require.NotEmpty(t, got, "every type must resolve to at least one worker")

		if want, ok := table[taskType]; ok {
			assert.Equal(t, want, got)
		} else {
			assert.Equal(t, []string{"Earth"}, got)
		}

		// Routing is deterministic.
		assert.Equal(t, got, r.Route(taskType))
	})
}
