package bodies

import "github.com/akmonengine/feathersync/actor"

// Position is implemented by any component that places an entity in space.
//
// Initially it is used to place bodies in the engine World. After each step
// it receives the simulated placement back.
type Position interface {
	Isometry() actor.Transform
	IsometryMut() *actor.Transform
	// SetIsometry copies translation and rotation only; any other data the
	// implementation carries is left untouched.
	SetIsometry(isometry actor.Transform)
}

// SimplePosition is a Position holding nothing but a transform.
type SimplePosition struct {
	Transform actor.Transform
}

var _ Position = (*SimplePosition)(nil)

// NewSimplePosition wraps transform.
func NewSimplePosition(transform actor.Transform) SimplePosition {
	return SimplePosition{Transform: transform}
}

func (p *SimplePosition) Isometry() actor.Transform {
	return p.Transform
}

func (p *SimplePosition) IsometryMut() *actor.Transform {
	return &p.Transform
}

func (p *SimplePosition) SetIsometry(isometry actor.Transform) {
	p.Transform.SetIsometry(isometry.Position, isometry.Rotation)
}
