package ai

import (
	"math"
	"math/rand"

	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/config"
	"github.com/milk9111/holdout/phys"
)

// Squad tuning.
const (
	repulsionRadius   = 2.5
	repulsionStrength = 2.0
	repulsionMinDist  = 0.25
	repulsionMax      = 3.0

	alertRadius = 12.0
)

type playerState struct {
	pos        common.Vec2
	collider   phys.Collider
	moving     bool
	fired      bool
	targetable bool
}

// Manager owns the enemy collection and drives every state machine once per
// tick. It caches perception per enemy per tick, computes repulsion for
// crowd separation, propagates alerts, and applies area damage. All of it
// runs on the single simulation goroutine.
type Manager struct {
	world    phys.RayCaster
	settings *config.Store

	enemies []*Enemy
	nextID  int

	player playerState
	cache  map[int]Result
	cfg    config.Settings
	hasCfg bool

	propagating bool

	// OnFire is invoked when an enemy shoots at the player; the weapon and
	// VFX collaborators hang off this hook.
	OnFire func(e *Enemy, target common.Vec2)
}

// NewManager creates an empty manager over a physics world and settings
// store. Either may be nil in tests; perception then fails closed.
func NewManager(world phys.RayCaster, settings *config.Store) *Manager {
	return &Manager{
		world:    world,
		cache:    make(map[int]Result),
		settings: settings,
	}
}

// AddEnemy registers an enemy, assigning an id and a default state machine
// if the caller did not provide them, and starts it in idle.
func (m *Manager) AddEnemy(e *Enemy) {
	if m == nil || e == nil {
		return
	}
	if e.ID == 0 {
		m.nextID++
		e.ID = m.nextID
	} else if e.ID > m.nextID {
		m.nextID = e.ID
	}
	if e.Machine == nil {
		e.Machine = NewEnemyMachine(m)
	}
	m.enemies = append(m.enemies, e)
	if e.Machine.Current() == "" {
		e.Machine.Start(StateIdle, e)
	}
}

// Enemies returns the live slice; callers must not mutate it concurrently
// with Update.
func (m *Manager) Enemies() []*Enemy {
	if m == nil {
		return nil
	}
	return m.enemies
}

// SetPlayerState records the per-tick player snapshot perception reads from.
func (m *Manager) SetPlayerState(pos common.Vec2, collider phys.Collider, moving, fired, targetable bool) {
	if m == nil {
		return
	}
	m.player = playerState{
		pos:        pos,
		collider:   collider,
		moving:     moving,
		fired:      fired,
		targetable: targetable,
	}
}

// Settings returns the settings snapshot for the current tick.
func (m *Manager) Settings() config.Settings {
	if m == nil {
		return config.Default()
	}
	if m.hasCfg {
		return m.cfg
	}
	if m.settings != nil {
		return m.settings.Snapshot()
	}
	return config.Default()
}

// Update runs one simulation tick: reset the perception cache, poll
// settings once, then drive each enemy's state machine in order. Iteration
// is strictly sequential; no enemy updates concurrently with another.
func (m *Manager) Update(dt float64) {
	if m == nil {
		return
	}
	clear(m.cache)
	if m.settings != nil {
		m.cfg = m.settings.Snapshot()
		m.hasCfg = true
	}

	for _, e := range m.enemies {
		if e == nil || e.Machine == nil {
			continue
		}
		e.Machine.Update(e, dt)
		e.tickFacing(dt)
		e.tickHitFlash(dt)
	}
}

// Perception returns the tick-cached perception for e, computing it on first
// access. At most one raycast is spent per enemy per tick no matter how many
// code paths ask.
func (m *Manager) Perception(e *Enemy) Result {
	if m == nil || e == nil {
		return Result{}
	}
	if res, ok := m.cache[e.ID]; ok {
		return res
	}
	res := Perceive(e, Input{
		PlayerPos:        m.player.pos,
		PlayerCollider:   m.player.collider,
		World:            m.world,
		PlayerMoving:     m.player.moving,
		PlayerFired:      m.player.fired,
		PlayerTargetable: m.player.targetable,
		Settings:         m.Settings(),
	})
	m.cache[e.ID] = res
	return res
}

// PlayerPosition returns a value snapshot of the player's position.
func (m *Manager) PlayerPosition() common.Vec2 {
	if m == nil {
		return common.Vec2{}
	}
	return m.player.pos
}

// RepulsionForce sums separation away from nearby living enemies, scaled
// inversely by distance and capped so dense crowds cannot produce unbounded
// force.
func (m *Manager) RepulsionForce(e *Enemy) common.Vec2 {
	if m == nil || e == nil {
		return common.Vec2{}
	}
	var force common.Vec2
	for _, o := range m.enemies {
		if o == nil || o == e || !o.Alive() {
			continue
		}
		away := e.Pos.Sub(o.Pos)
		dist := away.Len()
		if dist >= repulsionRadius {
			continue
		}
		if dist < 1e-6 {
			// coincident agents; nudge apart in a random direction
			away = common.Vec2{X: rand.Float64() - 0.5, Y: rand.Float64() - 0.5}
			dist = away.Len()
			if dist < 1e-9 {
				continue
			}
		}
		scale := repulsionStrength / math.Max(dist, repulsionMinDist)
		force = force.Add(away.Normalized().Scale(scale))
	}
	if force.Len() > repulsionMax {
		force = force.Normalized().Scale(repulsionMax)
	}
	return force
}

// PropagateAlert forces nearby idle enemies into alert, seeded with the
// alerting enemy's last known player position. The propagation is single-hop:
// the recursive call from a newly alerted neighbor's Enter is a no-op.
func (m *Manager) PropagateAlert(src *Enemy) {
	if m == nil || src == nil || m.propagating {
		return
	}
	m.propagating = true
	defer func() { m.propagating = false }()

	for _, o := range m.enemies {
		if o == nil || o == src || !o.Alive() || o.Machine == nil {
			continue
		}
		if o.Machine.Current() != StateIdle {
			continue
		}
		if o.Pos.DistTo(src.Pos) > alertRadius {
			continue
		}
		if src.LastKnown != nil {
			o.SetLastKnown(*src.LastKnown)
		}
		o.Machine.Transition(StateAlert, o)
	}
}

// SyncBody pushes the enemy's authoritative position into its physics body
// after kinematic movement.
func (m *Manager) SyncBody(e *Enemy) {
	if e == nil || e.Body == nil {
		return
	}
	e.Body.SetPosition(e.Pos)
}

// DamageEnemiesInRadius applies flat damage, no distance falloff, to every
// enemy within radius of pos. Grenades and explosions call this. Enemies
// whose health crosses zero transition to the death state.
func (m *Manager) DamageEnemiesInRadius(pos common.Vec2, radius, damage float64) {
	if m == nil || radius <= 0 || damage <= 0 {
		return
	}
	for _, e := range m.enemies {
		if e == nil {
			continue
		}
		if e.Pos.DistTo(pos) > radius {
			continue
		}
		e.ApplyDamage(damage)
	}
}

func (m *Manager) notifyFire(e *Enemy, target common.Vec2) {
	if m == nil || m.OnFire == nil {
		return
	}
	m.OnFire(e, target)
}
