package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/game/events/subscribers"
)

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Timestamp().Logger()

	logSub := subscribers.NewLoggerSubscriber("test-logger", logger, zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeGameStarted))
	assert.True(t, logSub.InterestedIn(events.TypeDiceRolled))
	assert.True(t, logSub.InterestedIn("any.event.type"))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("event-logger", logger, zerolog.InfoLevel)

	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name:  "GameStartedEvent",
			event: events.NewGameStartedEvent("test-game-1", "Yspahan 7 4", 4, 7),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "Yspahan 7 4", logLine["token"])
				assert.Equal(t, float64(4), logLine["num_players"])
				assert.Equal(t, float64(7), logLine["seed"])
			},
		},
		{
			name:  "MoveExecutedEvent",
			event: events.NewMoveExecutedEvent("test-game-1", 2, 17, "Pick green Camel_Pool 0", "TakeCamel", "TakeCamel", 123),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(2), logLine["player"])
				assert.Equal(t, float64(17), logLine["move_number"])
				assert.Equal(t, "Pick green Camel_Pool 0", logLine["move"])
				assert.Equal(t, "TakeCamel", logLine["state_after"])
			},
		},
		{
			name:  "MoveRejectedEvent",
			event: events.NewMoveRejectedEvent("test-game-1", 1, "Dance", "parse error"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "Dance", logLine["move"])
				assert.Equal(t, "parse error", logLine["reason"])
			},
		},
		{
			name:  "WeekScoredEvent",
			event: events.NewWeekScoredEvent("test-game-1", 2, []int{6, 0, 12}),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(2), logLine["week"])
				assert.Equal(t, []interface{}{float64(6), float64(0), float64(12)}, logLine["points"])
			},
		},
		{
			name:  "GameEndedEvent",
			event: events.NewGameEndedEvent("test-game-1", []int{0, 2}, []int{60, 41, 60}, 512, 9),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, []interface{}{float64(0), float64(2)}, logLine["winners"])
				assert.Equal(t, float64(512), logLine["moves"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			logSub.HandleEvent(tc.event)

			logOutput := buf.String()
			require.NotEmpty(t, logOutput, "Log output should not be empty")

			var logLine map[string]interface{}
			err := json.Unmarshal([]byte(logOutput), &logLine)
			require.NoError(t, err, "Should be able to parse log output as JSON")

			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, "Game event", logLine["message"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			assert.Equal(t, "test-game-1", logLine["game_id"])

			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberWithFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("filtered-logger", logger, zerolog.InfoLevel)
	logSub.SetEventFilter([]string{events.TypeGameStarted, events.TypeGameEnded})

	assert.True(t, logSub.InterestedIn(events.TypeGameStarted))
	assert.True(t, logSub.InterestedIn(events.TypeGameEnded))
	assert.False(t, logSub.InterestedIn(events.TypeDiceRolled))
	assert.False(t, logSub.InterestedIn(events.TypeMoveExecuted))

	bus := events.NewEventBus()
	bus.Subscribe(logSub)

	bus.Publish(events.NewDiceRolledEvent("game1", 1, [6]int{}, [6]int{}, "Roll:"))
	assert.Empty(t, buf.String())

	bus.Publish(events.NewGameStartedEvent("game1", "Yspahan 1 2", 2, 1))
	assert.NotEmpty(t, buf.String())

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeDiceRolled))
}

func TestLoggerSubscriberLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel zerolog.Level
		expected string
	}{
		{"Debug", zerolog.DebugLevel, "debug"},
		{"Info", zerolog.InfoLevel, "info"},
		{"Warn", zerolog.WarnLevel, "warn"},
		{"Error", zerolog.ErrorLevel, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(tc.logLevel)

			logSub := subscribers.NewLoggerSubscriber("level-logger", logger, tc.logLevel)
			logSub.HandleEvent(events.NewGameStartedEvent("game1", "Yspahan 1 2", 2, 1))

			require.NotZero(t, buf.Len())
			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))
			assert.Equal(t, tc.expected, logLine["level"])
		})
	}
}

func TestLoggerSubscriberDevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("dev-logger", logger, zerolog.InfoLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(events.NewStateTransitionEvent("dev-game", "Roll", "Select", "Done"))

	var logLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))

	eventData, ok := logLine["event_data"].(map[string]interface{})
	require.True(t, ok, "event_data should be an object")
	assert.Equal(t, "state.transition", eventData["type"])
	assert.Equal(t, "Select", eventData["to_state"])
}
