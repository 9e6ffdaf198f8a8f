package ai

import (
	"reflect"
	"testing"
)

// recState records its lifecycle calls into a shared log.
type recState struct {
	name string
	log  *[]string
}

func (s *recState) Name() string                { return s.name }
func (s *recState) Enter(e *Enemy)              { *s.log = append(*s.log, "enter:"+s.name) }
func (s *recState) Update(e *Enemy, dt float64) { *s.log = append(*s.log, "update:"+s.name) }
func (s *recState) Exit(e *Enemy)               { *s.log = append(*s.log, "exit:"+s.name) }

func TestMachineLifecycle(t *testing.T) {
	var log []string
	m := NewMachine(
		&recState{name: "a", log: &log},
		&recState{name: "b", log: &log},
	)

	if m.Current() != "" {
		t.Fatalf("current before Start = %q, want empty", m.Current())
	}

	m.Start("a", nil)
	if m.Current() != "a" {
		t.Fatalf("current = %q, want a", m.Current())
	}
	if want := []string{"enter:a"}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}

	m.Update(nil, 0.1)
	m.Transition("b", nil)
	m.Update(nil, 0.1)

	// exit of the old state must run before enter of the new one
	want := []string{"enter:a", "update:a", "exit:a", "enter:b", "update:b"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
}

func TestMachineUnknownTransitionIsNoOp(t *testing.T) {
	var log []string
	m := NewMachine(&recState{name: "a", log: &log})
	m.Start("a", nil)

	m.Transition("missing", nil)
	if m.Current() != "a" {
		t.Fatalf("current = %q, want a after unknown transition", m.Current())
	}
	if want := []string{"enter:a"}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v (no exit/enter for unknown name)", log, want)
	}
}

func TestMachineUnknownStartIsNoOp(t *testing.T) {
	var log []string
	m := NewMachine(&recState{name: "a", log: &log})
	m.Start("missing", nil)
	if m.Current() != "" {
		t.Fatalf("current = %q, want empty after unknown start", m.Current())
	}
	m.Update(nil, 0.1)
	if len(log) != 0 {
		t.Fatalf("log = %v, want empty", log)
	}
}

// A transition requested from inside Update must complete synchronously: the
// next state's Enter runs before the tick's Update call returns.
type hopState struct {
	name string
	next string
	log  *[]string
	m    **Machine
}

func (s *hopState) Name() string   { return s.name }
func (s *hopState) Enter(e *Enemy) { *s.log = append(*s.log, "enter:"+s.name) }
func (s *hopState) Exit(e *Enemy)  { *s.log = append(*s.log, "exit:"+s.name) }
func (s *hopState) Update(e *Enemy, dt float64) {
	*s.log = append(*s.log, "update:"+s.name)
	if s.next != "" {
		(*s.m).Transition(s.next, e)
		*s.log = append(*s.log, "after-transition:"+s.name)
	}
}

func TestMachineSynchronousTransitionFromUpdate(t *testing.T) {
	var log []string
	var m *Machine
	m = NewMachine(
		&hopState{name: "a", next: "b", log: &log, m: &m},
		&hopState{name: "b", log: &log, m: &m},
	)
	m.Start("a", nil)
	m.Update(nil, 0.1)

	want := []string{"enter:a", "update:a", "exit:a", "enter:b", "after-transition:a"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if m.Current() != "b" {
		t.Fatalf("current = %q, want b", m.Current())
	}
}

func TestNewEnemyMachineWithOverride(t *testing.T) {
	var log []string
	m := NewEnemyMachineWith(nil, &recState{name: StateAlert, log: &log})

	m.Start(StateAlert, nil)
	if want := []string{"enter:" + StateAlert}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v (override should replace the built-in alert)", log, want)
	}

	// the remaining built-ins are still registered
	m.Transition(StateDead, nil)
	if m.Current() != StateDead {
		t.Fatalf("current = %q, want %s", m.Current(), StateDead)
	}
}
