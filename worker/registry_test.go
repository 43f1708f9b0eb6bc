package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cygel-ai/planetary/types"
)

type stubWorker struct {
	name string
}

func (s *stubWorker) Name() string           { return s.name }
func (s *stubWorker) Capabilities() []string { return []string{"stub"} }
func (s *stubWorker) ProcessTask(ctx context.Context, task *types.Task) (*types.WorkerResult, error) {
	return &types.WorkerResult{Status: types.ResultSuccess}, nil
}
func (s *stubWorker) HandleFeedback(ctx context.Context, payload map[string]any) error {
	return nil
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(&stubWorker{name: "Earth"}, &stubWorker{name: "Moon"})
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, []string{"Earth", "Moon"}, reg.Names())

	w, ok := reg.Get("Earth")
	require.True(t, ok)
	assert.Equal(t, "Earth", w.Name())

	_, ok = reg.Get("Pluto")
	assert.False(t, ok)
	assert.False(t, reg.Has("Pluto"))
}

func TestNewRegistryRejectsMisconfiguration(t *testing.T) {
	_, err := NewRegistry()
	assert.Error(t, err, "empty registry must abort initialization")

	_, err = NewRegistry(&stubWorker{name: "Earth"}, &stubWorker{name: "Earth"})
	assert.Error(t, err, "duplicate names must abort initialization")

	_, err = NewRegistry(&stubWorker{name: ""})
	assert.Error(t, err, "empty name must abort initialization")
}
