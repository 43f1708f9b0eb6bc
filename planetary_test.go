package planetary

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cygel-ai/planetary/config"
	"github.com/cygel-ai/planetary/orchestrator"
	"github.com/cygel-ai/planetary/types"
)

func TestNewWithDefaults(t *testing.T) {
	o, err := New(WithLogger(zap.NewNop()), WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer o.Close()

	// The standard planetary workers come up from the default table.
	assert.Equal(t, []string{"Earth", "Moon", "Sun"}, o.Registry().Names())

	ctx := context.Background()
	id, err := o.Submit(ctx, orchestrator.SubmitRequest{
		Type:    "code_generation",
		Payload: types.TaskPayload{},
	})
	require.NoError(t, err)
	require.NoError(t, o.ProcessPending(ctx))

	task, err := o.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, task.Status.IsTerminal())
}

func TestNewRejectsUnknownConfiguredWorker(t *testing.T) {
	cfg := config.Default()
	cfg.Workers["Neptune"] = cfg.Workers["Earth"]

	_, err := New(WithConfig(cfg), WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Neptune")
}

func TestNewWithExtraWorker(t *testing.T) {
	cfg := config.Default()
	cfg.Workers["Neptune"] = cfg.Workers["Earth"]
	cfg.Routing.Table["tidal_analysis"] = []string{"Neptune"}

	neptune := &staticWorker{name: "Neptune"}
	o, err := New(WithConfig(cfg), WithLogger(zap.NewNop()), WithWorker(neptune),
		WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer o.Close()

	ctx := context.Background()
	id, err := o.Submit(ctx, orchestrator.SubmitRequest{Type: "tidal_analysis"})
	require.NoError(t, err)
	require.NoError(t, o.ProcessPending(ctx))

	task, err := o.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusSuccess, task.Status)
	assert.Equal(t, types.ResultSuccess, task.FinalResult.Components["Neptune"].Status)
}

type staticWorker struct {
	name string
}

func (s *staticWorker) Name() string           { return s.name }
func (s *staticWorker) Capabilities() []string { return []string{"tidal_analysis"} }

func (s *staticWorker) ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error) {
	return &types.WorkerResult{Status: types.ResultSuccess}, nil
}

func (s *staticWorker) HandleFeedback(ctx context.Context, payload map[string]any) error {
	return nil
}
