package workflow

import (
	"errors"
	"fmt"
)

// State は実行の進行状態です。
type State string

const (
	StateInit            State = "INIT"
	StatePlanning        State = "PLANNING"
	StateCharacterDesign State = "CHARACTER_DESIGN"
	StateImageGeneration State = "IMAGE_GENERATION"
	StateAssembly        State = "ASSEMBLY"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// ErrInvalidTransition は許可されていない状態遷移を試みた場合に返されます。
var ErrInvalidTransition = errors.New("invalid state transition")

// transitions は FAILED 以外の遷移先です。FAILED は終端以外のどの状態からも遷移できます。
var transitions = map[State][]State{
	StateInit:            {StatePlanning},
	StatePlanning:        {StateCharacterDesign, StateImageGeneration, StateDone},
	StateCharacterDesign: {StateImageGeneration},
	StateImageGeneration: {StateAssembly},
	StateAssembly:        {StateDone},
}

// IsTerminal は DONE または FAILED かどうかを返します。
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition は s から to へ遷移できるかどうかを返します。
func (s State) CanTransition(to State) bool {
	if s.IsTerminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// stateMachine は現在の状態と遷移の履歴を保持します。
type stateMachine struct {
	current State
	history []State
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateInit, history: []State{StateInit}}
}

func (sm *stateMachine) transition(to State) error {
	if !sm.current.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sm.current, to)
	}
	sm.current = to
	sm.history = append(sm.history, to)
	return nil
}

// fail は終端でなければ FAILED に遷移します。
func (sm *stateMachine) fail() {
	if !sm.current.IsTerminal() {
		sm.current = StateFailed
		sm.history = append(sm.history, StateFailed)
	}
}
