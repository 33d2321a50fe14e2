package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("test-game", "Yspahan 1 4", 4, 1))

	assert.True(t, received, "Event handler should have been called")
	require.NotNil(t, receivedEvent)
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "test-game", receivedEvent.GameID())
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := NewEventBus()

	var calls []string
	id1 := bus.SubscribeFunc(TypeMoveExecuted, func(e Event) { calls = append(calls, "first") })
	id2 := bus.SubscribeFunc(TypeMoveExecuted, func(e Event) { calls = append(calls, "second") })
	assert.NotEqual(t, id1, id2)

	bus.Publish(NewMoveExecutedEvent("g", 0, 1, "Done", "Roll", "Select", 42))
	assert.Equal(t, []string{"first", "second"}, calls)

	bus.UnsubscribeFunc(id1)
	assert.Equal(t, 1, bus.GetFuncHandlerCount(TypeMoveExecuted))
	bus.Publish(NewMoveExecutedEvent("g", 0, 2, "Done", "Select", "Select", 43))
	assert.Equal(t, []string{"first", "second", "second"}, calls)
}

type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string { return ts.id }

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus()

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeGameStarted: true,
			TypeGameEnded:   true,
		},
	}
	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.GetSubscriberCount())

	bus.Publish(NewGameStartedEvent("test-game", "Yspahan 1 2", 2, 1))
	bus.Publish(NewStateTransitionEvent("test-game", "Roll", "Select", "Done"))
	bus.Publish(NewGameEndedEvent("test-game", []int{1}, []int{40, 55}, 300, 99))

	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeGameStarted, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeGameEnded, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewGameStartedEvent("test-game", "Yspahan 1 2", 2, 1))
	assert.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, 0, bus.GetSubscriberCount())
}

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewEventBus()

	bus.SubscribeFunc(TypeDiceRolled, func(e Event) { panic("boom") })
	later := false
	bus.SubscribeFunc(TypeDiceRolled, func(e Event) { later = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewDiceRolledEvent("g", 3, [6]int{1, 2, 0, 3, 1, 2}, [6]int{1, 2, 0, 4, 5, 6}, "Roll: 1 camels"))
	})
	assert.True(t, later)
}
