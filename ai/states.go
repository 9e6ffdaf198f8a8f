package ai

import (
	"math/rand"

	"github.com/milk9111/holdout/common"
)

// State names.
const (
	StateIdle   = "idle"
	StateAlert  = "alert"
	StateAttack = "attack"
	StateDead   = "dead"
)

// Behavior tuning. Attack values were chosen to match the idle/alert timer
// idioms; attack range rides the sight range so difficulty scales it too.
const (
	lookTimerMin  = 2.0
	lookTimerMax  = 5.0
	lookOffsetMax = 0.9 // radians either side of the base facing

	alertDuration   = 2.0
	alertArriveDist = 1.0
	alertRepulsion  = 0.8 // weight of the manager's repulsion while converging
	alertScanRate   = 1.0 // rad/s desired-facing drift once arrived

	attackRangeFactor = 0.8 // of sight range
	fireCooldown      = 1.2
	loseSightGrace    = 1.5

	facingTurnRate = 4.0 // rad/s toward the desired facing
)

// NewEnemyMachine builds the default machine wired to a manager. States are
// stateless; per-enemy timers live on the Enemy.
func NewEnemyMachine(m *Manager) *Machine {
	return NewMachine(
		&idleState{m: m},
		&alertState{m: m},
		&attackState{m: m},
		&deadState{},
	)
}

// NewEnemyMachineWith builds the default machine, replacing any default
// state whose name matches an override. Scripted archetypes use this to
// swap in tengo-backed states.
func NewEnemyMachineWith(m *Manager, overrides ...State) *Machine {
	defaults := []State{
		&idleState{m: m},
		&alertState{m: m},
		&attackState{m: m},
		&deadState{},
	}
	byName := make(map[string]State, len(defaults))
	order := make([]string, 0, len(defaults))
	for _, s := range defaults {
		byName[s.Name()] = s
		order = append(order, s.Name())
	}
	for _, o := range overrides {
		if o == nil {
			continue
		}
		if _, ok := byName[o.Name()]; !ok {
			order = append(order, o.Name())
		}
		byName[o.Name()] = o
	}
	states := make([]State, 0, len(order))
	for _, n := range order {
		states = append(states, byName[n])
	}
	return NewMachine(states...)
}

// idleState looks around on a randomized timer and watches for the player.
type idleState struct {
	m *Manager
}

func (s *idleState) Name() string { return StateIdle }

func (s *idleState) Enter(e *Enemy) {
	if e == nil {
		return
	}
	e.lookTimer = lookTimerMin + rand.Float64()*(lookTimerMax-lookTimerMin)
	e.baseFacing = e.FacingAngle
	e.seenTimer = 0
	e.play(PoseIdle)
}

func (s *idleState) Update(e *Enemy, dt float64) {
	if s == nil || s.m == nil || e == nil {
		return
	}

	// cosmetic look-around; does not affect perception
	e.lookTimer -= dt
	if e.lookTimer <= 0 {
		e.lookTimer = lookTimerMin + rand.Float64()*(lookTimerMax-lookTimerMin)
		offset := (rand.Float64()*2 - 1) * lookOffsetMax
		e.TargetFacingAngle = common.NormalizeAngle(e.baseFacing + offset)
	}

	p := s.m.Perception(e)
	if p.CanSeePlayer {
		e.seenTimer += dt
		if e.seenTimer >= s.m.Settings().SightConfirmDuration {
			e.SetLastKnown(s.m.PlayerPosition())
			e.Machine.Transition(StateAttack, e)
		}
		return
	}
	e.seenTimer = 0
	if p.CanHearPlayer {
		e.SetLastKnown(s.m.PlayerPosition())
		e.Machine.Transition(StateAlert, e)
	}
}

func (s *idleState) Exit(e *Enemy) {}

// alertState investigates the last known player position for a short window,
// escalating to attack on confirmed sight and decaying to idle on timeout.
type alertState struct {
	m *Manager
}

func (s *alertState) Name() string { return StateAlert }

func (s *alertState) Enter(e *Enemy) {
	if s == nil || s.m == nil || e == nil {
		return
	}
	e.alertTimer = alertDuration
	e.seenTimer = 0
	e.play(PoseAlert)
	if e.LastKnown != nil {
		e.FaceToward(*e.LastKnown)
	}
	s.m.PropagateAlert(e)
}

func (s *alertState) Update(e *Enemy, dt float64) {
	if s == nil || s.m == nil || e == nil {
		return
	}

	e.alertTimer -= dt

	p := s.m.Perception(e)
	if p.CanSeePlayer {
		e.seenTimer += dt
		e.SetLastKnown(s.m.PlayerPosition())
		if e.seenTimer >= s.m.Settings().SightConfirmDuration {
			e.Machine.Transition(StateAttack, e)
			return
		}
	} else {
		e.seenTimer = 0
	}

	// repeated noise refreshes the target and extends the investigation
	if p.CanHearPlayer {
		e.SetLastKnown(s.m.PlayerPosition())
		e.alertTimer = alertDuration
	}

	if e.LastKnown != nil {
		s.moveToward(e, *e.LastKnown, dt)
	}

	if e.alertTimer <= 0 {
		e.Machine.Transition(StateIdle, e)
	}
}

func (s *alertState) Exit(e *Enemy) {}

// moveToward walks the enemy toward target on the plane, blended with a
// weighted share of the manager's repulsion so converging enemies fan out.
func (s *alertState) moveToward(e *Enemy, target common.Vec2, dt float64) {
	to := target.Sub(e.Pos)
	if to.Len() > alertArriveDist {
		step := to.Normalized().Scale(e.MoveSpeed)
		step = step.Add(s.m.RepulsionForce(e).Scale(alertRepulsion))
		e.Pos = e.Pos.Add(step.Scale(dt))
		e.FaceToward(target)
		e.play(PoseWalk)
		s.m.SyncBody(e)
		return
	}
	// arrived; hold position and sweep the desired facing
	e.TargetFacingAngle = common.NormalizeAngle(e.TargetFacingAngle + alertScanRate*dt)
	e.play(PoseAlert)
}

// attackState engages while the player stays visible, firing on a cooldown,
// and falls back to alert once sight is lost for a sustained period.
type attackState struct {
	m *Manager
}

func (s *attackState) Name() string { return StateAttack }

func (s *attackState) Enter(e *Enemy) {
	if e == nil {
		return
	}
	e.fireTimer = 0
	e.lostSightTimer = 0
	e.play(PoseShoot)
}

func (s *attackState) Update(e *Enemy, dt float64) {
	if s == nil || s.m == nil || e == nil {
		return
	}

	if e.fireTimer > 0 {
		e.fireTimer -= dt
	}

	p := s.m.Perception(e)
	if !p.CanSeePlayer {
		e.lostSightTimer += dt
		if e.lostSightTimer >= loseSightGrace {
			e.Machine.Transition(StateAlert, e)
		}
		return
	}

	e.lostSightTimer = 0
	player := s.m.PlayerPosition()
	e.SetLastKnown(player)
	e.FaceToward(player)

	attackRange := s.m.Settings().SightRange * attackRangeFactor
	if p.Distance > attackRange {
		// close the gap before shooting
		step := p.Direction.Scale(e.MoveSpeed).Add(s.m.RepulsionForce(e))
		e.Pos = e.Pos.Add(step.Scale(dt))
		e.play(PoseWalk)
		s.m.SyncBody(e)
		return
	}

	e.play(PoseShoot)
	if e.fireTimer <= 0 {
		e.fireTimer = fireCooldown
		s.m.notifyFire(e, player)
	}
}

func (s *attackState) Exit(e *Enemy) {}

// deadState is terminal: no perception, no movement. Removal from the world
// is the owning scene's responsibility once the death pose finishes.
type deadState struct{}

func (s *deadState) Name() string { return StateDead }

func (s *deadState) Enter(e *Enemy) {
	if e == nil {
		return
	}
	e.play(PoseDeath)
}

func (s *deadState) Update(e *Enemy, dt float64) {}

func (s *deadState) Exit(e *Enemy) {}
