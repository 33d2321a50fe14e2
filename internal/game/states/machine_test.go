package states

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game/events"
)

func newTestMachine(t *testing.T) (*Machine, *events.EventBus, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	bus := events.NewEventBus()
	ctx := NewGameContext("test-game", 3, logger)
	return NewMachine(ctx, Puzzle, bus), bus, &buf
}

func TestMachinePublishesTransitions(t *testing.T) {
	m, bus, buf := newTestMachine(t)

	var published []*events.StateTransitionEvent
	bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
		published = append(published, e.(*events.StateTransitionEvent))
	})

	require.NoError(t, m.Observe(Roll, "Start P0"))
	require.NoError(t, m.Observe(Select, "Done"))
	require.NoError(t, m.Observe(Select, "Pick"))

	require.Len(t, published, 2)
	assert.Equal(t, "Puzzle", published[0].FromState)
	assert.Equal(t, "Roll", published[0].ToState)
	assert.Equal(t, "Start P0", published[0].Reason)
	assert.Equal(t, "Roll", published[1].FromState)
	assert.Equal(t, "test-game", published[1].GameID())
	assert.Contains(t, buf.String(), "State transition completed")
}

func TestMachineObserve(t *testing.T) {
	m, _, _ := newTestMachine(t)

	require.NoError(t, m.Observe(Roll, "Start"))
	require.NoError(t, m.Observe(Roll, "Pick"))
	require.NoError(t, m.Observe(Select, "Done"))
	assert.Error(t, m.Observe(NumStates, "bogus"))
	assert.Error(t, m.Observe(-1, "bogus"))

	history := m.GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, Puzzle, history[0].From)
	assert.Equal(t, Roll, history[0].To)
	assert.Equal(t, Select, history[1].To)
	assert.False(t, history[1].Timestamp.IsZero())
}

func TestMachineHistoryLimit(t *testing.T) {
	m, _, _ := newTestMachine(t)
	m.maxHistorySize = 10

	for i := 0; i < 15; i++ {
		require.NoError(t, m.Observe(Resign, "resign"))
		require.NoError(t, m.Observe(Puzzle, "unresign"))
	}

	history := m.GetHistory()
	assert.Len(t, history, 10)
	assert.Equal(t, Puzzle, history[len(history)-1].To)
}

func TestMachineReset(t *testing.T) {
	m, _, _ := newTestMachine(t)
	require.NoError(t, m.Observe(Roll, "start"))

	m.Reset(Build)
	assert.Empty(t, m.GetHistory())
	assert.Equal(t, "test-game", m.GetContext().GameID)

	require.NoError(t, m.Observe(Build, "noop"))
	assert.Empty(t, m.GetHistory())
	require.NoError(t, m.Observe(Roll, "next"))
	require.Len(t, m.GetHistory(), 1)
	assert.Equal(t, Build, m.GetHistory()[0].From)
}

func TestGameContextElapsedTime(t *testing.T) {
	ctx := NewGameContext("g", 2, zerolog.Nop())
	assert.Zero(t, ctx.GetElapsedTime())

	ctx.StartTime = time.Now().Add(-time.Minute)
	assert.GreaterOrEqual(t, ctx.GetElapsedTime(), time.Minute)
}
