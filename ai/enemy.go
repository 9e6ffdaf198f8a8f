package ai

import (
	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/component"
	"github.com/milk9111/holdout/phys"
)

// Pose names the AI core may request from the animation collaborator.
const (
	PoseIdle  = "idle"
	PoseWalk  = "walk"
	PoseAlert = "alert"
	PoseShoot = "shoot"
	PoseHit   = "hit"
	PoseDeath = "death"
)

// AnimPlayer plays a named pose. The collaborator owns interpolation and
// playback; the core only selects names.
type AnimPlayer interface {
	Play(pose string)
}

// hitFlashDuration is how long the transient hit pose overrides the behavior
// pose after non-fatal damage. Kept short so AI logic is not disrupted by
// every bullet hit.
const hitFlashDuration = 0.25

// Enemy is a simulated hostile agent. Behavior timers live here rather than
// on the states so state values can stay stateless and shared safely.
type Enemy struct {
	ID        int
	Archetype string

	Pos               common.Vec2
	FacingAngle       float64
	TargetFacingAngle float64
	MoveSpeed         float64

	// LastKnown persists across states to support chained alert->attack
	// flows; states overwrite it but never clear it.
	LastKnown *common.Vec2

	Health  *component.Health
	Body    *phys.Agent
	Model   AnimPlayer
	Machine *Machine

	// behavior timers, owned per enemy
	lookTimer      float64
	baseFacing     float64
	seenTimer      float64
	alertTimer     float64
	fireTimer      float64
	lostSightTimer float64
	hitTimer       float64

	pose string
}

// NewEnemy creates an enemy at pos. Body and Model may be nil in tests.
func NewEnemy(id int, pos common.Vec2, facing float64, health float64, moveSpeed float64) *Enemy {
	if moveSpeed <= 0 {
		moveSpeed = 3
	}
	return &Enemy{
		ID:                id,
		Pos:               pos,
		FacingAngle:       common.NormalizeAngle(facing),
		TargetFacingAngle: common.NormalizeAngle(facing),
		MoveSpeed:         moveSpeed,
		Health:            component.NewHealth(health),
	}
}

// HeadPos returns the ray origin for perception. It is always derived from
// the body position, never stored.
func (e *Enemy) HeadPos() common.Vec2 {
	return e.Pos
}

// Forward returns the unit facing direction.
func (e *Enemy) Forward() common.Vec2 {
	return common.FromAngle(e.FacingAngle)
}

// SetFacing sets both the current and desired facing, normalized.
func (e *Enemy) SetFacing(a float64) {
	e.FacingAngle = common.NormalizeAngle(a)
	e.TargetFacingAngle = e.FacingAngle
}

// FaceToward sets the desired facing toward a world point; the entity turns
// there over time.
func (e *Enemy) FaceToward(p common.Vec2) {
	d := p.Sub(e.Pos)
	if d.Len() < 1e-9 {
		return
	}
	e.TargetFacingAngle = common.NormalizeAngle(d.Angle())
}

// Collider returns the enemy's own shape, excluded from its perception rays.
func (e *Enemy) Collider() phys.Collider {
	if e == nil || e.Body == nil {
		return nil
	}
	return e.Body.Collider()
}

// SetLastKnown records the last confirmed player position.
func (e *Enemy) SetLastKnown(p common.Vec2) {
	cp := p
	e.LastKnown = &cp
}

// Pose returns the current behavior pose name.
func (e *Enemy) Pose() string {
	return e.pose
}

// play requests a behavior pose. While the hit flash is active the request is
// recorded but not forwarded, so the flash is not cut short.
func (e *Enemy) play(pose string) {
	if e == nil || pose == "" || e.pose == pose {
		return
	}
	e.pose = pose
	if e.hitTimer > 0 && pose != PoseDeath {
		return
	}
	if e.Model != nil {
		e.Model.Play(pose)
	}
}

// ApplyDamage applies damage and drives the hit/death reactions: fatal damage
// transitions to the terminal death state, non-fatal damage plays a transient
// hit pose without changing the behavior state.
func (e *Enemy) ApplyDamage(amount float64) {
	if e == nil || e.Health == nil || !e.Health.IsAlive() {
		return
	}
	e.Health.ApplyDamage(amount)
	if !e.Health.IsAlive() {
		if e.Machine != nil {
			e.Machine.Transition(StateDead, e)
		} else {
			e.play(PoseDeath)
		}
		return
	}
	e.hitTimer = hitFlashDuration
	if e.Model != nil {
		e.Model.Play(PoseHit)
	}
}

// Alive reports whether the enemy still acts.
func (e *Enemy) Alive() bool {
	return e != nil && e.Health.IsAlive()
}

// tickFacing turns the current facing toward the desired facing.
func (e *Enemy) tickFacing(dt float64) {
	e.FacingAngle = common.MoveAngleToward(e.FacingAngle, e.TargetFacingAngle, facingTurnRate*dt)
}

// tickHitFlash expires the transient hit pose and restores the behavior pose.
func (e *Enemy) tickHitFlash(dt float64) {
	if e.hitTimer <= 0 {
		return
	}
	e.hitTimer -= dt
	if e.hitTimer <= 0 {
		e.hitTimer = 0
		if e.Model != nil && e.pose != "" {
			e.Model.Play(e.pose)
		}
	}
}
