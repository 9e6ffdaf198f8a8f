package ai

import (
	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/config"
	"github.com/milk9111/holdout/phys"
)

const (
	// rayOvershoot tolerates float error right at the player's body when the
	// cast ends exactly at the player's distance.
	rayOvershoot = 0.5
	// hitSlack treats a hit just short of the player as line-of-sight
	// success, absorbing geometry noise at the player's collider.
	hitSlack = 0.5
)

// Result is the per-tick perception verdict for one enemy. Distance and
// Direction are always populated so movement math needs no nil checks.
type Result struct {
	CanSeePlayer  bool
	CanHearPlayer bool
	Distance      float64
	Direction     common.Vec2
}

// Input carries everything Perceive needs about the player and the world.
// Settings are passed explicitly so perception is testable without globals.
type Input struct {
	PlayerPos        common.Vec2
	PlayerCollider   phys.Collider
	World            phys.RayCaster
	PlayerMoving     bool
	PlayerFired      bool
	PlayerTargetable bool
	Settings         config.Settings
}

// Perceive computes the sight and hearing verdicts for one enemy. It spends
// at most one raycast, and none when the player is not targetable or is out
// of sight range or field of view.
func Perceive(e *Enemy, in Input) Result {
	res := Result{}
	if e == nil {
		return res
	}

	to := in.PlayerPos.Sub(e.HeadPos())
	res.Distance = to.Len()
	res.Direction = to.Normalized()

	if !in.PlayerTargetable {
		return res
	}

	s := in.Settings
	if res.Distance <= s.SightRange && inFieldOfView(e, res, s.FOVHalfAngle) {
		res.CanSeePlayer = sightRay(e, in, res.Distance, res.Direction)
	}

	// Gunshots dominate the hearing determination for the tick; footsteps
	// are only consulted when no shot was fired.
	if in.PlayerFired {
		res.CanHearPlayer = res.Distance <= s.HearingGunshotRange
	} else if in.PlayerMoving {
		res.CanHearPlayer = res.Distance <= s.HearingFootstepRange
	}

	return res
}

// inFieldOfView checks the half-angle cone around the enemy's forward
// direction. A player standing on the enemy counts as in view: the angle is
// degenerate at zero distance, and an enemy that cannot notice a player
// inside its own collider reads as broken, so the tie breaks permissive
// rather than failing the cone check.
func inFieldOfView(e *Enemy, res Result, fovHalfAngle float64) bool {
	if res.Distance < 1e-9 {
		return true
	}
	return common.AngleBetween(e.Forward(), res.Direction) <= fovHalfAngle
}

// sightRay casts the occlusion ray. A panicking physics query is degraded to
// "not visible": an error path fails closed, unlike a normal no-hit result.
func sightRay(e *Enemy, in Input, dist float64, dir common.Vec2) (visible bool) {
	if in.World == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			visible = false
		}
	}()

	hit, ok := in.World.CastRay(e.HeadPos(), dir, dist+rayOvershoot, e.Collider())
	if !ok {
		// open line
		return true
	}
	if hit.Collider != nil && hit.Collider == in.PlayerCollider {
		return true
	}
	if hit.Distance >= dist-hitSlack {
		return true
	}
	return false
}
