package feathersync

import (
	"errors"
	"fmt"

	"github.com/akmonengine/feathersync/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	DEFAULT_WORKERS  = 1
	DEFAULT_SUBSTEPS = 1

	DEFAULT_SLEEP_TIME     = 0.1  // seconds below the velocity threshold before sleeping
	DEFAULT_SLEEP_VELOCITY = 0.05 // m/s and rad/s
)

// ErrInvalidHandle is returned for handles that were never issued by the
// World or whose body has since been removed.
var ErrInvalidHandle = errors.New("feathersync: invalid body handle")

type bodySlot struct {
	body       *actor.RigidBody
	generation uint32
}

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	SleepTimeThreshold     float64
	SleepVelocityThreshold float64

	Events Events
	Logger *zap.Logger

	slots []bodySlot
	free  []uint32
}

// Config gathers the tunables of a World.
type Config struct {
	Gravity                mgl64.Vec3
	Substeps               int
	Workers                int
	SleepTimeThreshold     float64
	SleepVelocityThreshold float64
}

// DefaultConfig returns earth gravity along -Y and the default tunables.
func DefaultConfig() Config {
	return Config{
		Gravity:                mgl64.Vec3{0, -9.81, 0},
		Substeps:               DEFAULT_SUBSTEPS,
		Workers:                DEFAULT_WORKERS,
		SleepTimeThreshold:     DEFAULT_SLEEP_TIME,
		SleepVelocityThreshold: DEFAULT_SLEEP_VELOCITY,
	}
}

// NewWorld creates an empty world. A nil logger disables logging.
func NewWorld(config Config, logger *zap.Logger) *World {
	return &World{
		Gravity:                config.Gravity,
		Substeps:               config.Substeps,
		Workers:                config.Workers,
		SleepTimeThreshold:     config.SleepTimeThreshold,
		SleepVelocityThreshold: config.SleepVelocityThreshold,
		Events:                 NewEvents(),
		Logger:                 logger,
	}
}

// CreateBody builds a body from desc, adds it to the world and returns its handle.
func (w *World) CreateBody(desc actor.RigidBodyDesc) actor.Handle {
	body := actor.NewRigidBodyFromDesc(desc)

	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
		w.slots[index].body = body
	} else {
		index = uint32(len(w.slots))
		w.slots = append(w.slots, bodySlot{body: body})
	}
	w.Bodies = append(w.Bodies, body)

	handle := actor.NewHandle(index, w.slots[index].generation)
	w.logger().Debug("body created",
		zap.Uint32("index", index),
		zap.Uint32("generation", handle.Generation()),
		zap.Stringer("type", desc.BodyType),
	)

	return handle
}

// Body returns the body behind handle.
func (w *World) Body(handle actor.Handle) (*actor.RigidBody, error) {
	slot, err := w.slot(handle)
	if err != nil {
		return nil, err
	}
	return slot.body, nil
}

// RemoveBody removes the body behind handle; the handle and every copy of
// it become invalid.
func (w *World) RemoveBody(handle actor.Handle) error {
	slot, err := w.slot(handle)
	if err != nil {
		return err
	}
	body := slot.body

	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	slot.body = nil
	slot.generation++
	w.free = append(w.free, handle.Index())

	w.Events.forget(handle)
	w.logger().Debug("body removed", zap.Uint32("index", handle.Index()))

	return nil
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return len(w.Bodies)
}

func (w *World) slot(handle actor.Handle) (*bodySlot, error) {
	if !handle.IsValid() || int(handle.Index()) >= len(w.slots) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidHandle, handle.Index())
	}

	slot := &w.slots[handle.Index()]
	if slot.body == nil || slot.generation != handle.Generation() {
		return nil, fmt.Errorf("%w: index %d generation %d is stale", ErrInvalidHandle, handle.Index(), handle.Generation())
	}

	return slot, nil
}

// Step advances the simulation by dt. Forces applied before the call act
// during the whole step, then are cleared. A step with dt <= 0 moves nothing
// but still consumes the forces.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		w.clearForces()
		return
	}

	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(DEFAULT_SUBSTEPS, w.Substeps)
	h := dt / float64(w.Substeps)

	for _i := 0; _i < w.Substeps; _i++ {
		w.integrate(h)
		w.trySleep(h)
	}

	w.clearForces()

	w.Events.processSleepEvents(w.slots)
	w.Events.flush()
}

func (w *World) clearForces() {
	for _, body := range w.Bodies {
		body.ClearForces()
	}
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	timeThreshold := w.SleepTimeThreshold
	if timeThreshold <= 0 {
		return
	}

	for _, body := range w.Bodies {
		body.TrySleep(h, timeThreshold, w.SleepVelocityThreshold)
	}
}

func (w *World) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}
