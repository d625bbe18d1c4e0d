package system

import (
	"context"
	"fmt"

	"github.com/akmonengine/feathersync"
	"github.com/akmonengine/feathersync/actor"
	"github.com/akmonengine/feathersync/bodies"
	"github.com/akmonengine/feathersync/ecs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PositionPtr constrains PT to be *T implementing bodies.Position, so poses
// can be stored by value in an ecs.Storage[T].
type PositionPtr[T any] interface {
	*T
	bodies.Position
}

// TickStats summarises one Update.
type TickStats struct {
	Created int
	Removed int
	Synced  int
}

type options struct {
	logger  *zap.Logger
	workers int
}

type Option func(*options)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers bounds the goroutines used to push and pull bodies.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = max(1, workers)
	}
}

type liveBody struct {
	entity ecs.Entity
	handle actor.Handle
}

// PhysicsSystem keeps the bodies.PhysicsBody and T components of an ecs.World
// in sync with a feathersync.World, one Update per tick.
type PhysicsSystem[T any, PT PositionPtr[T]] struct {
	world   *feathersync.World
	logger  *zap.Logger
	workers int

	handles map[ecs.Entity]actor.Handle
	live    []liveBody

	// version of the pose storage right after the last pull; poses written
	// after it were moved locally and are pushed to the engine
	poseSeen uint64
	stats    TickStats
}

// NewPhysicsSystem creates a driver for world using T as the pose component.
func NewPhysicsSystem[T any, PT PositionPtr[T]](world *feathersync.World, opts ...Option) *PhysicsSystem[T, PT] {
	o := options{logger: zap.NewNop(), workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	s := &PhysicsSystem[T, PT]{
		world:   world,
		logger:  o.logger,
		workers: o.workers,
		handles: make(map[ecs.Entity]actor.Handle),
	}

	world.Events.Subscribe(feathersync.ON_SLEEP, func(event feathersync.Event) {
		s.logger.Debug("body asleep", zap.Uint32("index", event.(feathersync.SleepEvent).Body.Index()))
	})
	world.Events.Subscribe(feathersync.ON_WAKE, func(event feathersync.Event) {
		s.logger.Debug("body awake", zap.Uint32("index", event.(feathersync.WakeEvent).Body.Index()))
	})

	return s
}

// World returns the engine world driven by s.
func (s *PhysicsSystem[T, PT]) World() *feathersync.World {
	return s.world
}

// Stats returns the summary of the last Update.
func (s *PhysicsSystem[T, PT]) Stats() TickStats {
	return s.stats
}

// Update runs one tick: remove orphaned engine bodies, create missing ones,
// push every body, step the engine by dt, pull every body.
//
// Cancelling ctx stops the tick before the engine steps. After the step, the
// pull always completes and Update returns nil.
//
// Any other error means the engine no longer knows a handle recorded in a
// component; the tick is abandoned where it failed.
func (s *PhysicsSystem[T, PT]) Update(ctx context.Context, w *ecs.World, dt float64) error {
	s.stats = TickStats{}
	physicsBodies := ecs.GetStorage[bodies.PhysicsBody](w)
	poses := ecs.GetStorage[T](w)

	s.cleanup(w, physicsBodies)
	if err := s.create(physicsBodies, poses); err != nil {
		return err
	}

	if err := s.push(ctx, physicsBodies, poses); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	s.world.Step(dt)

	// once stepped, the components must receive the result or the next push
	// would rewind the engine
	if err := s.pull(context.WithoutCancel(ctx), physicsBodies, poses); err != nil {
		return err
	}
	s.poseSeen = poses.Version()

	s.logger.Debug("physics tick",
		zap.Int("created", s.stats.Created),
		zap.Int("removed", s.stats.Removed),
		zap.Int("synced", s.stats.Synced),
	)
	return nil
}

// cleanup removes the engine bodies of entities that died or lost their
// PhysicsBody since the last tick.
func (s *PhysicsSystem[T, PT]) cleanup(w *ecs.World, physicsBodies *ecs.Storage[bodies.PhysicsBody]) {
	for e, handle := range s.handles {
		if body, ok := physicsBodies.Get(e); ok && w.IsAlive(e) {
			// a replaced component no longer points at the tracked body
			if current, ok := body.Handle(); ok && current == handle {
				continue
			}
		}

		if err := s.world.RemoveBody(handle); err != nil {
			s.logger.Warn("engine body already gone", zap.Int("entity", e.ID), zap.Error(err))
		}
		delete(s.handles, e)
		s.stats.Removed++
	}
}

// create adds an engine body for every PhysicsBody without a handle, placed
// at the entity pose, and collects the bodies to sync this tick.
func (s *PhysicsSystem[T, PT]) create(physicsBodies *ecs.Storage[bodies.PhysicsBody], poses *ecs.Storage[T]) error {
	s.live = s.live[:0]

	for _, e := range physicsBodies.Entities() {
		body, _ := physicsBodies.Get(e)
		if handle, ok := body.Handle(); ok {
			s.handles[e] = handle
			s.live = append(s.live, liveBody{entity: e, handle: handle})
			continue
		}

		pose, ok := poses.Get(e)
		if !ok {
			continue
		}

		desc := body.ToBodyDesc()
		desc.Transform = PT(pose).Isometry()
		handle := s.world.CreateBody(desc)

		body, _ = physicsBodies.GetMut(e)
		if err := body.SetHandle(handle); err != nil {
			return fmt.Errorf("system: create entity %d: %w", e.ID, err)
		}
		s.handles[e] = handle
		s.live = append(s.live, liveBody{entity: e, handle: handle})
		s.stats.Created++

		s.logger.Info("physics body created",
			zap.Int("entity", e.ID),
			zap.Uint32("handle", handle.Index()),
			zap.Stringer("type", body.BodyStatus),
		)
	}

	s.stats.Synced = len(s.live)
	return nil
}

// push writes every component into its engine body. Poses moved locally
// since the last pull teleport the body.
func (s *PhysicsSystem[T, PT]) push(ctx context.Context, physicsBodies *ecs.Storage[bodies.PhysicsBody], poses *ecs.Storage[T]) error {
	return s.forEach(ctx, func(lb liveBody) error {
		rigidBody, err := s.world.Body(lb.handle)
		if err != nil {
			return fmt.Errorf("system: push entity %d: %w", lb.entity.ID, err)
		}

		// draining the force is bookkeeping, not a change dependents care about
		body, _ := physicsBodies.Peek(lb.entity)
		body.ApplyToEngine(rigidBody)

		if poses.ChangedSince(lb.entity, s.poseSeen) {
			pose, _ := poses.Get(lb.entity)
			rigidBody.SetTransform(PT(pose).Isometry())
		}
		return nil
	})
}

// pull copies the simulated state back. Components are flagged changed only
// when the engine actually moved them.
func (s *PhysicsSystem[T, PT]) pull(ctx context.Context, physicsBodies *ecs.Storage[bodies.PhysicsBody], poses *ecs.Storage[T]) error {
	return s.forEach(ctx, func(lb liveBody) error {
		rigidBody, err := s.world.Body(lb.handle)
		if err != nil {
			return fmt.Errorf("system: pull entity %d: %w", lb.entity.ID, err)
		}

		body, _ := physicsBodies.Peek(lb.entity)
		before := *body
		body.UpdateFromEngine(rigidBody)
		if *body != before {
			physicsBodies.GetMut(lb.entity)
		}

		pose, ok := poses.Peek(lb.entity)
		if !ok {
			return nil
		}
		current := PT(pose).Isometry()
		if current.Position != rigidBody.Transform.Position || current.Rotation != rigidBody.Transform.Rotation {
			pose, _ = poses.GetMut(lb.entity)
			PT(pose).SetIsometry(rigidBody.Transform)
		}
		return nil
	})
}

func (s *PhysicsSystem[T, PT]) forEach(ctx context.Context, fn func(lb liveBody) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, lb := range s.live {
		if gctx.Err() != nil {
			break
		}
		lb := lb
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lb)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
