package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/yspahan/internal/game/events"
)

// Transition represents a state change in the history
type Transition struct {
	From      State
	To        State
	Timestamp time.Time
	Reason    string
}

// Machine tracks the state of a running game. The board computes states
// with Next; the session feeds each result to Observe so transitions are
// recorded, logged and published in one place.
type Machine struct {
	mu             sync.RWMutex
	current        State
	context        *GameContext
	history        []Transition
	maxHistorySize int
	eventBus       events.Publisher
}

// NewMachine creates a machine positioned at initial.
func NewMachine(ctx *GameContext, initial State, eventBus events.Publisher) *Machine {
	return &Machine{
		current:        initial,
		context:        ctx,
		history:        make([]Transition, 0, 100),
		maxHistorySize: 1000,
		eventBus:       eventBus,
	}
}

// Observe records that the game is now in state to. Observing the current
// state is a no-op.
func (m *Machine) Observe(to State, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if to < 0 || to >= NumStates {
		return fmt.Errorf("invalid state %d", int(to))
	}
	m.move(to, reason)
	return nil
}

func (m *Machine) move(to State, reason string) {
	from := m.current
	if from == to {
		return
	}
	m.addToHistory(Transition{From: from, To: to, Timestamp: time.Now(), Reason: reason})
	m.current = to

	if m.eventBus != nil {
		m.eventBus.Publish(events.NewStateTransitionEvent(m.context.GameID, from.String(), to.String(), reason))
	}

	m.context.Logger.Debug().
		Str("from_state", from.String()).
		Str("to_state", to.String()).
		Str("reason", reason).
		Msg("State transition completed")
}

// addToHistory adds a transition to the history, maintaining max size
func (m *Machine) addToHistory(transition Transition) {
	m.history = append(m.history, transition)

	if len(m.history) > m.maxHistorySize {
		m.history = m.history[len(m.history)-m.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (m *Machine) GetHistory() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]Transition, len(m.history))
	copy(history, m.history)
	return history
}

// GetContext returns the game context
func (m *Machine) GetContext() *GameContext {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.context
}

// Reset clears the history and jumps to state without publishing.
func (m *Machine) Reset(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = m.history[:0]
	m.current = state
}
