package phys

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/holdout/common"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeAgent
)

// Collider identifies a physics shape. Ray hits report the collider so
// callers can tell "the player" apart from scenery.
type Collider = *cp.Shape

// RayHit describes the nearest shape intersected by a ray.
type RayHit struct {
	Collider Collider
	Point    common.Vec2
	// Distance is the time of impact expressed in world units along the ray.
	Distance float64
}

// RayCaster is the single physics capability the AI core depends on.
// exclude, when non-nil, names one collider the ray passes through.
type RayCaster interface {
	CastRay(origin, dir common.Vec2, maxDist float64, exclude Collider) (RayHit, bool)
}

// World owns the Chipmunk space, the static occluder shapes, and the
// kinematic agent bodies.
type World struct {
	space *cp.Space
}

// NewWorld creates an empty physics world. Top-down plane, no gravity.
func NewWorld() *World {
	space := cp.NewSpace()
	space.Iterations = 10
	return &World{space: space}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// AddOccluder adds a static axis-aligned box that blocks sight rays.
func (w *World) AddOccluder(x, y, width, height float64) {
	if w == nil || w.space == nil || width <= 0 || height <= 0 {
		return
	}
	bb := cp.BB{L: x, B: y, R: x + width, T: y + height}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(collisionTypeSolid)
	w.space.AddShape(shape)
}

// AddBounds walls the playable area with four static segments.
func (w *World) AddBounds(width, height float64) {
	if w == nil || w.space == nil || width <= 0 || height <= 0 {
		return
	}
	thickness := 0.1
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: width, Y: 0}},
		{a: cp.Vector{X: 0, Y: height}, b: cp.Vector{X: width, Y: height}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: height}},
		{a: cp.Vector{X: width, Y: 0}, b: cp.Vector{X: width, Y: height}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeSolid)
		w.space.AddShape(shape)
	}
}

// Agent is a kinematic circle body for an enemy or the player. Positions are
// authoritative on the owning entity; SetPosition pushes them in.
type Agent struct {
	body  *cp.Body
	shape *cp.Shape
}

// AddAgent creates a kinematic agent body at pos.
func (w *World) AddAgent(pos common.Vec2, radius float64) *Agent {
	if w == nil || w.space == nil {
		return nil
	}
	if radius <= 0 {
		radius = 0.4
	}
	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetCollisionType(collisionTypeAgent)
	w.space.AddBody(body)
	w.space.AddShape(shape)
	return &Agent{body: body, shape: shape}
}

// RemoveAgent detaches an agent from the space.
func (w *World) RemoveAgent(a *Agent) {
	if w == nil || w.space == nil || a == nil {
		return
	}
	if a.shape != nil {
		w.space.RemoveShape(a.shape)
	}
	if a.body != nil {
		w.space.RemoveBody(a.body)
	}
}

// Collider returns the agent's shape identity for ray exclusion and hit
// disambiguation.
func (a *Agent) Collider() Collider {
	if a == nil {
		return nil
	}
	return a.shape
}

// Position returns the agent's physics position.
func (a *Agent) Position() common.Vec2 {
	if a == nil || a.body == nil {
		return common.Vec2{}
	}
	p := a.body.Position()
	return common.Vec2{X: p.X, Y: p.Y}
}

// SetPosition pushes a logical position into the physics body.
func (a *Agent) SetPosition(pos common.Vec2) {
	if a == nil || a.body == nil {
		return
	}
	a.body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
}

// CastRay finds the nearest shape along origin + dir*t for t in (0, maxDist],
// skipping the excluded collider. Returns false when nothing is hit.
func (w *World) CastRay(origin, dir common.Vec2, maxDist float64, exclude Collider) (RayHit, bool) {
	if w == nil || w.space == nil || maxDist <= 0 {
		return RayHit{}, false
	}
	d := dir.Normalized()
	if d.Len() == 0 {
		return RayHit{}, false
	}
	end := origin.Add(d.Scale(maxDist))

	best := RayHit{}
	bestAlpha := 0.0
	found := false
	w.space.SegmentQuery(
		cp.Vector{X: origin.X, Y: origin.Y},
		cp.Vector{X: end.X, Y: end.Y},
		0,
		cp.SHAPE_FILTER_ALL,
		func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
			if shape == nil || shape == exclude {
				return
			}
			if shape.Sensor() {
				return
			}
			if !found || alpha < bestAlpha {
				found = true
				bestAlpha = alpha
				best = RayHit{
					Collider: shape,
					Point:    common.Vec2{X: point.X, Y: point.Y},
					Distance: alpha * maxDist,
				}
			}
		},
		nil,
	)
	return best, found
}

// Step advances the physics simulation.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil {
		return
	}
	w.space.Step(dt)
}
