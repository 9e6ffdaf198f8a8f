package phys

import (
	"math"
	"testing"

	"github.com/milk9111/holdout/common"
)

func TestCastRayHitsNearestOccluder(t *testing.T) {
	w := NewWorld()
	// two boxes along +X; the nearer one must win
	w.AddOccluder(4, -1, 2, 2)
	w.AddOccluder(8, -1, 2, 2)

	hit, ok := w.CastRay(common.Vec2{}, common.Vec2{X: 1}, 20, nil)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if math.Abs(hit.Distance-4) > 0.1 {
		t.Fatalf("hit distance = %v, want ~4", hit.Distance)
	}
	if math.Abs(hit.Point.X-4) > 0.1 {
		t.Fatalf("hit point = %+v, want x ~4", hit.Point)
	}
}

func TestCastRayMisses(t *testing.T) {
	w := NewWorld()
	w.AddOccluder(4, -1, 2, 2)

	cases := []struct {
		name    string
		dir     common.Vec2
		maxDist float64
	}{
		{"wrong_direction", common.Vec2{X: -1}, 20},
		{"too_short", common.Vec2{X: 1}, 3},
		{"zero_direction", common.Vec2{}, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, ok := w.CastRay(common.Vec2{}, c.dir, c.maxDist, nil); ok {
				t.Fatalf("expected a miss")
			}
		})
	}
}

func TestCastRayExcludesOneCollider(t *testing.T) {
	w := NewWorld()
	w.AddOccluder(4, -1, 2, 2)
	agent := w.AddAgent(common.Vec2{X: 2}, 0.4)

	// without exclusion the agent body blocks the ray first
	hit, ok := w.CastRay(common.Vec2{}, common.Vec2{X: 1}, 20, nil)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if hit.Collider != agent.Collider() {
		t.Fatalf("expected the agent to block the ray")
	}
	if hit.Distance > 2 {
		t.Fatalf("agent hit distance = %v, want < 2", hit.Distance)
	}

	// excluding the agent lets the ray pass through to the occluder
	hit, ok = w.CastRay(common.Vec2{}, common.Vec2{X: 1}, 20, agent.Collider())
	if !ok {
		t.Fatalf("expected a hit past the excluded agent")
	}
	if hit.Collider == agent.Collider() {
		t.Fatalf("excluded collider was still reported")
	}
	if math.Abs(hit.Distance-4) > 0.1 {
		t.Fatalf("occluder hit distance = %v, want ~4", hit.Distance)
	}
}

func TestAgentPositionRoundTrip(t *testing.T) {
	w := NewWorld()
	a := w.AddAgent(common.Vec2{X: 3, Y: 7}, 0.4)

	if got := a.Position(); got.DistTo(common.Vec2{X: 3, Y: 7}) > 1e-9 {
		t.Fatalf("initial position = %+v", got)
	}

	a.SetPosition(common.Vec2{X: 5, Y: 1})
	if got := a.Position(); got.DistTo(common.Vec2{X: 5, Y: 1}) > 1e-9 {
		t.Fatalf("position after set = %+v", got)
	}

	w.RemoveAgent(a)
	// removed agents must no longer block rays
	if hit, ok := w.CastRay(common.Vec2{Y: 1}, common.Vec2{X: 1}, 20, nil); ok {
		t.Fatalf("removed agent still hit: %+v", hit)
	}
}

func TestBoundsBlockRays(t *testing.T) {
	w := NewWorld()
	w.AddBounds(10, 10)

	hit, ok := w.CastRay(common.Vec2{X: 5, Y: 5}, common.Vec2{X: 1}, 50, nil)
	if !ok {
		t.Fatalf("expected the east wall to block the ray")
	}
	if math.Abs(hit.Distance-5) > 0.2 {
		t.Fatalf("wall hit distance = %v, want ~5", hit.Distance)
	}
}
