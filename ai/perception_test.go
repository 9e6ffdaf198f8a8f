package ai

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/config"
	"github.com/milk9111/holdout/phys"
)

// rayFunc adapts a closure to phys.RayCaster for tests.
type rayFunc func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool)

func (f rayFunc) CastRay(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
	return f(origin, dir, maxDist, exclude)
}

// openWorld never blocks a ray.
func openWorld() rayFunc {
	return func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
		return phys.RayHit{}, false
	}
}

// wallAt blocks every ray at the given distance with the given collider.
func wallAt(dist float64, collider phys.Collider) rayFunc {
	return func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
		return phys.RayHit{Collider: collider, Distance: dist}, true
	}
}

func testShape() phys.Collider {
	return cp.NewCircle(cp.NewKinematicBody(), 0.4, cp.Vector{})
}

func testSettings() config.Settings {
	return config.Settings{
		SightRange:           18,
		FOVHalfAngle:         math.Pi / 3,
		HearingGunshotRange:  30,
		HearingFootstepRange: 6,
		SightConfirmDuration: 0.6,
	}
}

func TestPerceiveSight(t *testing.T) {
	playerShape := testShape()
	otherShape := testShape()

	cases := []struct {
		name      string
		playerPos common.Vec2
		world     phys.RayCaster
		wantSee   bool
	}{
		{"in_cone_open_line", common.Vec2{X: 10}, openWorld(), true},
		{"beyond_sight_range", common.Vec2{X: 19}, openWorld(), false},
		{"behind_enemy", common.Vec2{X: -5}, openWorld(), false},
		{"outside_cone_edge", common.Vec2{X: 5, Y: 10}, openWorld(), false},
		{"occluded", common.Vec2{X: 10}, wallAt(3, otherShape), false},
		{"ray_hits_player_collider", common.Vec2{X: 10}, wallAt(3, playerShape), true},
		{"hit_within_slack_of_player", common.Vec2{X: 10}, wallAt(9.6, otherShape), true},
		{"on_top_of_enemy", common.Vec2{}, openWorld(), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEnemy(1, common.Vec2{}, 0, 3, 3) // facing +X
			res := Perceive(e, Input{
				PlayerPos:        c.playerPos,
				PlayerCollider:   playerShape,
				World:            c.world,
				PlayerTargetable: true,
				Settings:         testSettings(),
			})
			if res.CanSeePlayer != c.wantSee {
				t.Fatalf("CanSeePlayer = %v, want %v", res.CanSeePlayer, c.wantSee)
			}
		})
	}
}

func TestPerceiveHearing(t *testing.T) {
	cases := []struct {
		name      string
		playerPos common.Vec2
		moving    bool
		fired     bool
		wantHear  bool
	}{
		{"silent", common.Vec2{X: -3}, false, false, false},
		{"footsteps_in_range", common.Vec2{X: -5}, true, false, true},
		{"footsteps_out_of_range", common.Vec2{X: -8}, true, false, false},
		{"gunshot_in_range", common.Vec2{X: -25}, false, true, true},
		{"gunshot_out_of_range", common.Vec2{X: -35}, false, true, false},
		// a distant gunshot masks nearby footsteps for the tick
		{"gunshot_overrides_footsteps", common.Vec2{X: -35}, true, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEnemy(1, common.Vec2{}, 0, 3, 3)
			res := Perceive(e, Input{
				PlayerPos:        c.playerPos,
				World:            openWorld(),
				PlayerMoving:     c.moving,
				PlayerFired:      c.fired,
				PlayerTargetable: true,
				Settings:         testSettings(),
			})
			if res.CanHearPlayer != c.wantHear {
				t.Fatalf("CanHearPlayer = %v, want %v", res.CanHearPlayer, c.wantHear)
			}
			if res.CanSeePlayer {
				t.Fatalf("player behind the enemy must not be seen")
			}
		})
	}
}

func TestPerceiveUntargetableShortCircuits(t *testing.T) {
	casts := 0
	world := rayFunc(func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
		casts++
		return phys.RayHit{}, false
	})

	e := NewEnemy(1, common.Vec2{}, 0, 3, 3)
	res := Perceive(e, Input{
		PlayerPos:        common.Vec2{X: 4},
		World:            world,
		PlayerMoving:     true,
		PlayerFired:      true,
		PlayerTargetable: false,
		Settings:         testSettings(),
	})

	if res.CanSeePlayer || res.CanHearPlayer {
		t.Fatalf("untargetable player was perceived: %+v", res)
	}
	if casts != 0 {
		t.Fatalf("raycasts = %d, want 0 for an untargetable player", casts)
	}
	// distance and direction still describe the geometry
	if res.Distance != 4 {
		t.Fatalf("distance = %v, want 4", res.Distance)
	}
	if res.Direction != (common.Vec2{X: 1}) {
		t.Fatalf("direction = %+v, want +X", res.Direction)
	}
}

func TestPerceiveNoRaycastOutOfRangeOrCone(t *testing.T) {
	casts := 0
	world := rayFunc(func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
		casts++
		return phys.RayHit{}, false
	})

	e := NewEnemy(1, common.Vec2{}, 0, 3, 3)
	for _, pos := range []common.Vec2{{X: 25}, {X: -10}} {
		Perceive(e, Input{
			PlayerPos:        pos,
			World:            world,
			PlayerTargetable: true,
			Settings:         testSettings(),
		})
	}
	if casts != 0 {
		t.Fatalf("raycasts = %d, want 0 when the cheap gates already fail", casts)
	}
}

func TestPerceiveFailsClosedOnPanickingQuery(t *testing.T) {
	world := rayFunc(func(origin, dir common.Vec2, maxDist float64, exclude phys.Collider) (phys.RayHit, bool) {
		panic("corrupt spatial index")
	})

	e := NewEnemy(1, common.Vec2{}, 0, 3, 3)
	res := Perceive(e, Input{
		PlayerPos:        common.Vec2{X: 5},
		World:            world,
		PlayerTargetable: true,
		Settings:         testSettings(),
	})
	if res.CanSeePlayer {
		t.Fatalf("a failing sight query must report not-visible")
	}
}

func TestPerceiveNilWorldNotVisible(t *testing.T) {
	e := NewEnemy(1, common.Vec2{}, 0, 3, 3)
	res := Perceive(e, Input{
		PlayerPos:        common.Vec2{X: 5},
		PlayerTargetable: true,
		Settings:         testSettings(),
	})
	if res.CanSeePlayer {
		t.Fatalf("no physics world means no confirmed sight")
	}
}
