package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akmonengine/feathersync"
	"github.com/akmonengine/feathersync/bodies"
	"github.com/akmonengine/feathersync/config"
	"github.com/akmonengine/feathersync/ecs"
	"github.com/akmonengine/feathersync/system"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "YAML configuration file, defaults when empty")
	scenePath  = flag.String("scene", "scene.yaml", "YAML scene file")
	steps      = flag.Int("steps", 300, "Ticks to simulate, 0 runs until interrupted")
	realtime   = flag.Bool("realtime", false, "Pace ticks on the configured time step")
	watch      = flag.Bool("watch", false, "Reload the configuration file when it changes")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	logger, err := cfg.System.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	scene, err := config.LoadScene(*scenePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	world := feathersync.NewWorld(cfg.World.Engine(), logger.Named("engine"))
	physics := system.NewPhysicsSystem[bodies.SimplePosition](world,
		system.WithLogger(logger.Named("physics")),
		system.WithWorkers(cfg.System.Workers),
	)

	w := ecs.NewWorld()
	names := make(map[ecs.Entity]string, len(scene.Bodies))
	for _, desc := range scene.Bodies {
		e := w.CreateEntity()
		ecs.Insert(w, e, desc.Body())
		ecs.Insert(w, e, bodies.NewSimplePosition(desc.Transform()))
		names[e] = desc.Name
	}
	logger.Info("scene loaded", zap.String("path", *scenePath), zap.Int("bodies", len(scene.Bodies)))

	reloads := make(chan config.Config, 1)
	if *watch && *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(c config.Config) {
				select {
				case reloads <- c:
				case <-ctx.Done():
				}
			}, func(err error) {
				logger.Warn("config reload failed", zap.Error(err))
			})
			if err != nil {
				logger.Error("config watch stopped", zap.Error(err))
			}
		}()
	}

	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(tickPeriod(cfg.System.TimeStep))
		defer ticker.Stop()
	}

	poses := ecs.GetStorage[bodies.SimplePosition](w)
	for tick := 0; *steps == 0 || tick < *steps; tick++ {
		select {
		case c := <-reloads:
			c.World.Apply(world)
			cfg.World = c.World
			if ticker != nil && c.System.TimeStep != cfg.System.TimeStep {
				ticker.Reset(tickPeriod(c.System.TimeStep))
			}
			cfg.System.TimeStep = c.System.TimeStep
			logger.Info("config reloaded", zap.Any("gravity", c.World.Gravity), zap.Float64("time_step", c.System.TimeStep))

			if c.System.Workers != cfg.System.Workers || c.System.LogLevel != cfg.System.LogLevel {
				logger.Warn("system.workers and system.log_level apply on restart only",
					zap.Int("workers", c.System.Workers),
					zap.String("log_level", c.System.LogLevel),
				)
			}
		default:
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}

		seen := poses.Version()
		if err := physics.Update(ctx, w, cfg.System.TimeStep); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("interrupted", zap.Int("tick", tick))
				break
			}
			return err
		}

		for _, e := range poses.Changed(seen) {
			pose, _ := poses.Get(e)
			logger.Debug("moved",
				zap.Int("tick", tick),
				zap.String("body", names[e]),
				zap.Any("position", pose.Isometry().Position),
			)
		}
	}

	for e, name := range names {
		pose, ok := poses.Get(e)
		if !ok {
			continue
		}
		body, _ := ecs.GetStorage[bodies.PhysicsBody](w).Get(e)
		logger.Info("final state",
			zap.String("body", name),
			zap.Any("position", pose.Isometry().Position),
			zap.Any("velocity", body.Velocity.Linear),
		)
	}
	logger.Info("done", zap.Int("bodies", world.Len()), zap.Any("stats", physics.Stats()))

	return nil
}

func tickPeriod(timeStep float64) time.Duration {
	return max(time.Duration(timeStep*float64(time.Second)), time.Nanosecond)
}
