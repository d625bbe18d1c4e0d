package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/akmonengine/feathersync"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config describes the engine World and the driver stepping it.
type Config struct {
	World  WorldConfig  `yaml:"world"`
	System SystemConfig `yaml:"system"`
}

type WorldConfig struct {
	Gravity       [3]float64 `yaml:"gravity"`
	Substeps      int        `yaml:"substeps"`
	Workers       int        `yaml:"workers"`
	SleepTime     float64    `yaml:"sleep_time"`
	SleepVelocity float64    `yaml:"sleep_velocity"`
}

type SystemConfig struct {
	// TimeStep is the simulated duration of one tick, in seconds
	TimeStep float64 `yaml:"time_step"`
	// Workers bounds the goroutines used to push and pull bodies
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	engine := feathersync.DefaultConfig()
	return Config{
		World: WorldConfig{
			Gravity:       engine.Gravity,
			Substeps:      engine.Substeps,
			Workers:       engine.Workers,
			SleepTime:     engine.SleepTimeThreshold,
			SleepVelocity: engine.SleepVelocityThreshold,
		},
		System: SystemConfig{
			TimeStep: 1.0 / 60.0,
			Workers:  1,
			LogLevel: "info",
		},
	}
}

// Decode reads a YAML configuration over the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func (c Config) Validate() error {
	switch {
	case c.World.Substeps < 1:
		return fmt.Errorf("%w: world.substeps must be >= 1, got %d", ErrInvalidConfig, c.World.Substeps)
	case c.World.Workers < 1:
		return fmt.Errorf("%w: world.workers must be >= 1, got %d", ErrInvalidConfig, c.World.Workers)
	case c.World.SleepTime < 0 || math.IsNaN(c.World.SleepTime):
		return fmt.Errorf("%w: world.sleep_time must be >= 0", ErrInvalidConfig)
	case c.World.SleepVelocity < 0 || math.IsNaN(c.World.SleepVelocity):
		return fmt.Errorf("%w: world.sleep_velocity must be >= 0", ErrInvalidConfig)
	case !finite(c.World.Gravity[:]...):
		return fmt.Errorf("%w: world.gravity must be finite, got %v", ErrInvalidConfig, c.World.Gravity)
	case !(c.System.TimeStep > 0) || !finite(c.System.TimeStep):
		return fmt.Errorf("%w: system.time_step must be finite and > 0", ErrInvalidConfig)
	case c.System.Workers < 1:
		return fmt.Errorf("%w: system.workers must be >= 1, got %d", ErrInvalidConfig, c.System.Workers)
	}
	if _, err := parseLevel(c.System.LogLevel); err != nil {
		return err
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Engine converts the world section into an engine configuration.
func (c WorldConfig) Engine() feathersync.Config {
	return feathersync.Config{
		Gravity:                mgl64.Vec3(c.Gravity),
		Substeps:               c.Substeps,
		Workers:                c.Workers,
		SleepTimeThreshold:     c.SleepTime,
		SleepVelocityThreshold: c.SleepVelocity,
	}
}

// Apply copies the world section onto an existing World, keeping its bodies.
func (c WorldConfig) Apply(w *feathersync.World) {
	w.Gravity = mgl64.Vec3(c.Gravity)
	w.Substeps = c.Substeps
	w.Workers = c.Workers
	w.SleepTimeThreshold = c.SleepTime
	w.SleepVelocityThreshold = c.SleepVelocity
}
