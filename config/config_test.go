package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/feathersync"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Empty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecode_Overrides(t *testing.T) {
	c, err := Decode(strings.NewReader(`
world:
  gravity: [0, 0, -1.62]
  substeps: 4
system:
  time_step: 0.01
  workers: 8
  log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, [3]float64{0, 0, -1.62}, c.World.Gravity)
	assert.Equal(t, 4, c.World.Substeps)
	assert.Equal(t, Default().World.Workers, c.World.Workers)
	assert.Equal(t, 0.01, c.System.TimeStep)
	assert.Equal(t, 8, c.System.Workers)
	assert.Equal(t, "debug", c.System.LogLevel)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "world:\n  gravityy: [0, 0, 0]\n"},
		{name: "zero substeps", yaml: "world:\n  substeps: 0\n"},
		{name: "negative sleep time", yaml: "world:\n  sleep_time: -1\n"},
		{name: "zero time step", yaml: "system:\n  time_step: 0\n"},
		{name: "negative sleep velocity", yaml: "world:\n  sleep_velocity: -0.1\n"},
		{name: "NaN gravity", yaml: "world:\n  gravity: [0, .nan, 0]\n"},
		{name: "infinite gravity", yaml: "world:\n  gravity: [0, -.inf, 0]\n"},
		{name: "infinite time step", yaml: "system:\n  time_step: .inf\n"},
		{name: "NaN time step", yaml: "system:\n  time_step: .nan\n"},
		{name: "zero workers", yaml: "system:\n  workers: 0\n"},
		{name: "bad log level", yaml: "system:\n  log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidate_WrapsSentinel(t *testing.T) {
	c := Default()
	c.System.Workers = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = Default()
	c.World.SleepVelocity = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = Default()
	c.World.Gravity = [3]float64{0, math.Inf(-1), 0}
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = Default()
	c.System.TimeStep = math.NaN()
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestWorldConfig_Engine(t *testing.T) {
	c := Default().World
	c.Gravity = [3]float64{1, 2, 3}

	engine := c.Engine()
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, engine.Gravity)
	assert.Equal(t, c.Substeps, engine.Substeps)

	w := feathersync.NewWorld(feathersync.DefaultConfig(), nil)
	c.Apply(w)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, w.Gravity)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  substeps: 2\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.World.Substeps)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := Default().System.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  substeps: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config) { changes <- c }, func(err error) { errs <- err })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("world:\n  substeps: 3\n"), 0o644))

	select {
	case c := <-changes:
		assert.Equal(t, 3, c.World.Substeps)
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("configuration was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
