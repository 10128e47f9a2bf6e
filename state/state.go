// Package state holds the process-wide loading state and the progress
// reporters that gate its automatic transitions.
package state

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type State int

const (
	Booting State = iota
	MenuLoading
	MenuSelect
	MenuConfigure
	ArenaLoading
	ArenaPlaying
	ArenaOver
)

var stateNames = [...]string{
	Booting:       "Booting",
	MenuLoading:   "Menu(Loading)",
	MenuSelect:    "Menu(Select)",
	MenuConfigure: "Menu(Configure)",
	ArenaLoading:  "Arena(Loading)",
	ArenaPlaying:  "Arena(Playing)",
	ArenaOver:     "Arena(Over)",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// InMenu reports whether s is one of the Menu states.
func (s State) InMenu() bool {
	return s == MenuLoading || s == MenuSelect || s == MenuConfigure
}

// InArena reports whether s is one of the Arena states.
func (s State) InArena() bool {
	return s == ArenaLoading || s == ArenaPlaying || s == ArenaOver
}

var transitions = map[State][]State{
	Booting:       {MenuLoading},
	MenuLoading:   {MenuSelect},
	MenuSelect:    {MenuConfigure},
	MenuConfigure: {MenuSelect, ArenaLoading},
	ArenaLoading:  {ArenaPlaying, MenuSelect},
	ArenaPlaying:  {ArenaOver},
	ArenaOver:     {MenuSelect},
}

// CanTransition reports whether from -> to is an edge of the state graph.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var ErrIllegalTransition = errors.New("state: illegal transition")

// LoadFailedError is returned by Evaluate when a loading state is abandoned
// because a reporter failed.
type LoadFailedError struct {
	State    State
	Reporter string
	Err      error
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("state: %s failed: reporter %s: %v", e.State, e.Reporter, e.Err)
}

func (e *LoadFailedError) Unwrap() error { return e.Err }

type Hook func(from, to State)

// Machine owns the current state. Every change goes through Transition and
// is checked against the state graph.
type Machine struct {
	current State
	log     *zap.Logger
	onEnter map[State][]Hook
	onExit  map[State][]Hook
}

func NewMachine(log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		current: Booting,
		log:     log.Named("state"),
		onEnter: make(map[State][]Hook),
		onExit:  make(map[State][]Hook),
	}
}

func (m *Machine) Current() State {
	return m.current
}

// OnEnter registers fn to run after the machine enters s.
func (m *Machine) OnEnter(s State, fn Hook) {
	m.onEnter[s] = append(m.onEnter[s], fn)
}

// OnExit registers fn to run before the machine leaves s.
func (m *Machine) OnExit(s State, fn Hook) {
	m.onExit[s] = append(m.onExit[s], fn)
}

func (m *Machine) Transition(to State) error {
	from := m.current
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	for _, fn := range m.onExit[from] {
		fn(from, to)
	}
	m.current = to
	m.log.Info("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range m.onEnter[to] {
		fn(from, to)
	}
	return nil
}

// Evaluate performs the automatic exit of a loading state: once every
// reporter in t is complete the machine moves on, and a failed arena load
// falls back to map selection. It reports whether a transition happened.
// Outside loading states it does nothing.
func (m *Machine) Evaluate(t *Tracker) (bool, error) {
	var next State
	switch m.current {
	case MenuLoading:
		next = MenuSelect
	case ArenaLoading:
		next = ArenaPlaying
	default:
		return false, nil
	}

	if name, err := t.Err(); err != nil {
		failed := &LoadFailedError{State: m.current, Reporter: name, Err: err}
		if m.current != ArenaLoading {
			return false, failed
		}
		m.log.Error("load failed", zap.String("reporter", name), zap.Error(err))
		if terr := m.Transition(MenuSelect); terr != nil {
			return false, terr
		}
		return true, failed
	}

	if !t.Complete() {
		return false, nil
	}
	if err := m.Transition(next); err != nil {
		return false, err
	}
	return true, nil
}
