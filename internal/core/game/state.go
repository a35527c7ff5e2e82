package game

import "fmt"

// GameState is the game-flow state gating the tick pipeline.
type GameState uint8

const (
	StateMainMenu GameState = iota
	StateInGame
	StateGameOver
)

var stateNames = [...]string{"main_menu", "in_game", "game_over"}

func (s GameState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s GameState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var transitions = map[GameState][]GameState{
	StateMainMenu: {StateInGame},
	StateInGame:   {StateGameOver},
	StateGameOver: {StateMainMenu},
}

// CanTransition reports whether from -> to is an edge of the game flow.
func CanTransition(from, to GameState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateMachine owns the current GameState. Transitions requested during a tick
// are held until Apply runs at the tick boundary.
type StateMachine struct {
	current GameState
	pending *GameState

	onEnter      map[GameState][]func()
	onExit       map[GameState][]func()
	onTransition []func(from, to GameState)
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateMainMenu,
		onEnter: make(map[GameState][]func()),
		onExit:  make(map[GameState][]func()),
	}
}

func (m *StateMachine) Current() GameState { return m.current }

// Pending returns the transition queued for the next Apply, if any.
func (m *StateMachine) Pending() (GameState, bool) {
	if m.pending == nil {
		return m.current, false
	}
	return *m.pending, true
}

func (m *StateMachine) OnEnter(s GameState, fn func()) { m.onEnter[s] = append(m.onEnter[s], fn) }

func (m *StateMachine) OnExit(s GameState, fn func()) { m.onExit[s] = append(m.onExit[s], fn) }

// OnTransition registers fn to run after every completed transition.
func (m *StateMachine) OnTransition(fn func(from, to GameState)) {
	m.onTransition = append(m.onTransition, fn)
}

// Transition switches to the given state immediately: exit hooks of the current
// state run first, then enter hooks of the new one.
func (m *StateMachine) Transition(to GameState) error {
	from := m.current
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	for _, fn := range m.onExit[from] {
		fn()
	}
	m.current = to
	for _, fn := range m.onEnter[to] {
		fn()
	}
	for _, fn := range m.onTransition {
		fn(from, to)
	}
	return nil
}

// Request queues a transition for the next Apply. The first valid request of a tick wins.
func (m *StateMachine) Request(to GameState) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	if m.pending == nil {
		m.pending = &to
	}
	return nil
}

// Apply performs the pending transition, if any, and reports whether one happened.
func (m *StateMachine) Apply() (bool, error) {
	if m.pending == nil {
		return false, nil
	}
	to := *m.pending
	m.pending = nil
	if err := m.Transition(to); err != nil {
		return false, err
	}
	return true, nil
}

// Reset drops any pending request.
func (m *StateMachine) Reset() { m.pending = nil }
