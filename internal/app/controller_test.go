package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

func TestController_EdgeTriggered(t *testing.T) {
	act := &recordingActuator{}
	c := NewController(act, 0)
	ctx := context.Background()

	sequence := []struct {
		cmd   Command
		fired bool
	}{
		{Unknown, false},
		{Play, true},
		{Play, false},
		{Pause, true},
		{Pause, false},
		{Unknown, false},
		{Pause, true},
		{Play, true},
	}
	for i, step := range sequence {
		fired, err := c.Handle(ctx, Recognition{Command: step.cmd})
		require.NoError(t, err)
		assert.Equal(t, step.fired, fired, "step %d (%s)", i, step.cmd)
		assert.Equal(t, step.cmd, c.State())
	}

	assert.Equal(t, []Command{Play, Pause, Pause, Play}, act.commands())
	assert.Equal(t, 4, c.Fired())
}

func TestController_ActuatorError(t *testing.T) {
	act := &recordingActuator{err: errors.New("player gone")}
	c := NewController(act, time.Second)

	fired, err := c.Handle(context.Background(), Recognition{Command: Play})
	assert.True(t, fired)
	assert.ErrorContains(t, err, "player gone")
	// The state still moves so the same command is not retried.
	assert.Equal(t, Play, c.State())
}

func TestController_AppliesTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	c := NewController(ActuatorFunc(func(ctx context.Context, _ Recognition) error {
		deadline, ok = ctx.Deadline()
		return nil
	}), time.Minute)

	_, err := c.Handle(context.Background(), Recognition{Command: Pause})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestPluginActuator_RunsBoundPlugin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on Windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "media-control")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, plugin.ManifestFile),
		[]byte(`{"name":"media-control","executable":"run.sh","actions":["play","pause"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"),
		[]byte("#!/bin/sh\ncat > request.json\necho '{\"success\":true}'\n"), 0o755))

	mgr := plugin.NewManager(root)
	require.NoError(t, mgr.Discover())

	st, err := store.New(filepath.Join(t.TempDir(), "mudra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Recognitions().Create(&store.Recognition{ID: "rec-1", Name: "pause", Command: "pause", Strokes: 2}))

	act := NewPluginActuator(mgr, plugin.NewExecutor(5*time.Second), config.Default().GetBindings(), st)
	require.NoError(t, act.Actuate(context.Background(), Recognition{ID: "rec-1", Name: "pause", Score: 0.9, Command: Pause}))

	req, err := os.ReadFile(filepath.Join(dir, "request.json"))
	require.NoError(t, err)
	assert.Contains(t, string(req), `"action":"pause"`)
	assert.Contains(t, string(req), `"recognition_id":"rec-1"`)

	actions, err := st.Actions().ListByRecognition("rec-1")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success)
	assert.Equal(t, "media-control", actions[0].PluginName)
	assert.Equal(t, "pause", actions[0].ActionName)
}

func TestPluginActuator_MissingPlugin(t *testing.T) {
	mgr := plugin.NewManager(t.TempDir())
	require.NoError(t, mgr.Discover())

	act := NewPluginActuator(mgr, plugin.NewExecutor(0), config.Default().GetBindings(), nil)
	err := act.Actuate(context.Background(), Recognition{ID: "x", Command: Play})
	assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
}

func TestPluginActuator_UnboundCommand(t *testing.T) {
	act := NewPluginActuator(plugin.NewManager(t.TempDir()), plugin.NewExecutor(0), map[string]config.Binding{}, nil)
	assert.NoError(t, act.Actuate(context.Background(), Recognition{Command: Play}))
}
