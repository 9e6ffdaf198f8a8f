package ai

// State is a named unit of behavior. Implementations hold no per-enemy data;
// every timer a state needs lives on the Enemy.
type State interface {
	Name() string
	Enter(e *Enemy)
	Update(e *Enemy, dt float64)
	Exit(e *Enemy)
}

// Machine holds one enemy's states and the currently active one. Exactly one
// state is active at a time.
type Machine struct {
	states  map[string]State
	current State
}

// NewMachine registers states by name. No state is active until Start.
func NewMachine(states ...State) *Machine {
	m := &Machine{states: make(map[string]State, len(states))}
	for _, s := range states {
		if s == nil {
			continue
		}
		m.states[s.Name()] = s
	}
	return m
}

// Start enters the initial state without exiting anything.
func (m *Machine) Start(name string, e *Enemy) {
	if m == nil {
		return
	}
	s, ok := m.states[name]
	if !ok {
		return
	}
	m.current = s
	s.Enter(e)
}

// Transition exits the active state, swaps, then enters the new one. Unknown
// names are a no-op so a bad prefab cannot crash the tick loop. Transitions
// are synchronous: the new state's Enter runs before this call returns.
func (m *Machine) Transition(name string, e *Enemy) {
	if m == nil {
		return
	}
	next, ok := m.states[name]
	if !ok {
		return
	}
	if m.current != nil {
		m.current.Exit(e)
	}
	m.current = next
	next.Enter(e)
}

// Update delegates to the active state only.
func (m *Machine) Update(e *Enemy, dt float64) {
	if m == nil || m.current == nil {
		return
	}
	m.current.Update(e, dt)
}

// Current returns the active state's name, or "" before Start.
func (m *Machine) Current() string {
	if m == nil || m.current == nil {
		return ""
	}
	return m.current.Name()
}
