package ai

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/holdout/common"
)

// scriptLifecycleDispatch is appended to every behavior script. Scripts must
// define onEnter(engine, state), update(engine, state, dt), and
// onExit(engine, state).
const scriptLifecycleDispatch = `
if __phase == "enter" {
	onEnter(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state, __dt)
} else if __phase == "exit" {
	onExit(__engine, __state)
}
`

// ScriptState is a behavior state implemented in tengo. Each enemy gets its
// own compiled instance so script-local state never leaks between enemies.
type ScriptState struct {
	name     string
	m        *Manager
	compiled *tengo.Compiled
	state    *tengo.Map
	pending  string
}

// NewScriptState compiles src into a state that answers to name. The script
// is probed once with a no-op phase so definition errors surface at load
// time instead of mid-tick.
func NewScriptState(m *Manager, name string, src []byte) (*ScriptState, error) {
	if m == nil {
		return nil, fmt.Errorf("ai: script state %q needs a manager", name)
	}
	if name == "" {
		return nil, fmt.Errorf("ai: script state needs a name")
	}

	full := string(src) + "\n" + scriptLifecycleDispatch
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("ai: compile script state %q: %w", name, err)
	}

	s := &ScriptState{
		name:     name,
		m:        m,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if err := s.runPhase("noop", nil, 0); err != nil {
		return nil, fmt.Errorf("ai: probe script state %q: %w", name, err)
	}
	return s, nil
}

func (s *ScriptState) Name() string { return s.name }

func (s *ScriptState) Enter(e *Enemy) {
	if err := s.runPhase("enter", e, 0); err != nil {
		log.Printf("ai: script %s onEnter: %v", s.name, err)
	}
}

func (s *ScriptState) Update(e *Enemy, dt float64) {
	s.pending = ""
	if err := s.runPhase("update", e, dt); err != nil {
		log.Printf("ai: script %s update: %v", s.name, err)
		return
	}
	if s.pending != "" && s.pending != s.name && e != nil && e.Machine != nil {
		next := s.pending
		s.pending = ""
		e.Machine.Transition(next, e)
	}
}

func (s *ScriptState) Exit(e *Enemy) {
	if err := s.runPhase("exit", e, 0); err != nil {
		log.Printf("ai: script %s onExit: %v", s.name, err)
	}
}

func (s *ScriptState) runPhase(phase string, e *Enemy, dt float64) error {
	if s == nil || s.compiled == nil {
		return fmt.Errorf("nil script state")
	}
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.buildEngine(e, dt)); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return s.compiled.Run()
}

// buildEngine exposes the manager-mediated collaborator surface to the
// script: perception, movement, poses, and transitions.
func (s *ScriptState) buildEngine(e *Enemy, dt float64) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	vecResult := func(v common.Vec2) tengo.Object {
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: v.X},
			&tengo.Float{Value: v.Y},
		}}
	}

	values["perceive"] = &tengo.UserFunction{Name: "perceive", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil {
			return tengo.UndefinedValue, nil
		}
		p := s.m.Perception(e)
		return &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"see":      boolObject(p.CanSeePlayer),
			"hear":     boolObject(p.CanHearPlayer),
			"distance": &tengo.Float{Value: p.Distance},
			"dir_x":    &tengo.Float{Value: p.Direction.X},
			"dir_y":    &tengo.Float{Value: p.Direction.Y},
		}}, nil
	}}

	values["player_position"] = &tengo.UserFunction{Name: "player_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecResult(s.m.PlayerPosition()), nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil {
			return vecResult(common.Vec2{}), nil
		}
		return vecResult(e.Pos), nil
	}}

	values["move_towards"] = &tengo.UserFunction{Name: "move_towards", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		target := common.Vec2{X: floatArg(args[0]), Y: floatArg(args[1])}
		to := target.Sub(e.Pos)
		if to.Len() < 1e-9 {
			return tengo.FalseValue, nil
		}
		step := to.Normalized().Scale(e.MoveSpeed).Add(s.m.RepulsionForce(e))
		e.Pos = e.Pos.Add(step.Scale(dt))
		e.FaceToward(target)
		s.m.SyncBody(e)
		return tengo.TrueValue, nil
	}}

	values["face_towards"] = &tengo.UserFunction{Name: "face_towards", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		e.FaceToward(common.Vec2{X: floatArg(args[0]), Y: floatArg(args[1])})
		return tengo.TrueValue, nil
	}}

	values["set_pose"] = &tengo.UserFunction{Name: "set_pose", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		e.play(stringArg(args[0]))
		return tengo.TrueValue, nil
	}}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(stringArg(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		s.pending = name
		return tengo.TrueValue, nil
	}}

	values["last_known"] = &tengo.UserFunction{Name: "last_known", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil || e.LastKnown == nil {
			return tengo.UndefinedValue, nil
		}
		return vecResult(*e.LastKnown), nil
	}}

	values["set_last_known"] = &tengo.UserFunction{Name: "set_last_known", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		e.SetLastKnown(common.Vec2{X: floatArg(args[0]), Y: floatArg(args[1])})
		return tengo.TrueValue, nil
	}}

	values["propagate_alert"] = &tengo.UserFunction{Name: "propagate_alert", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e == nil {
			return tengo.FalseValue, nil
		}
		s.m.PropagateAlert(e)
		return tengo.TrueValue, nil
	}}

	values["sight_confirm_duration"] = &tengo.UserFunction{Name: "sight_confirm_duration", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.m.Settings().SightConfirmDuration}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatArg(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}

func stringArg(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
