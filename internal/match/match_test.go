package match

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/config"
	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

const sample = `
seed = 7
games = 2

[[seat]]
name = "alice"
variant = "builder"

[[seat]]
variant = "easy"

[[seat]]
`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, int64(7), m.Seed)
	assert.Equal(t, 2, m.Games)
	assert.Equal(t, DefaultMaxMoves, m.MaxMoves)
	require.Equal(t, 3, m.Players())
	assert.Equal(t, "alice", m.Seats[0].Name)
	assert.Equal(t, "builder", m.Seats[0].Variant)
	assert.Equal(t, "easy", m.Seats[1].Variant)
	assert.Equal(t, "standard", m.Seats[2].Variant)
	assert.NotEmpty(t, m.Seats[1].Name)
	assert.NotEqual(t, m.Seats[1].Name, m.Seats[2].Name)
	assert.Equal(t, "Yspahan 7 3", m.Token(0))
	assert.Equal(t, "Yspahan 8 3", m.Token(1))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"one seat", "[[seat]]\n", "2 to 4 seats"},
		{"unknown variant", "[[seat]]\nvariant = \"nope\"\n[[seat]]\n", "seat 0"},
		{"unknown key", "speed = 3\n[[seat]]\n[[seat]]\n", "speed"},
		{"bad toml", "seed = \n", "decoding match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Players())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	c := &config.Config{
		Game:  config.GameConfig{Players: 2, Seed: 3, Seats: []string{"builder"}},
		Robot: config.RobotConfig{Variant: "easy"},
	}
	m, err := FromConfig(c, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Games)
	assert.Equal(t, "builder", m.Seats[0].Variant)
	assert.Equal(t, "easy", m.Seats[1].Variant)
}

type memSaver struct{ saved map[string]int }

func (s *memSaver) SaveSession(_ context.Context, sess *game.Session) error {
	s.saved[sess.ID()] = sess.Len()
	return nil
}

func TestRunnerPlaysToTheEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full game")
	}
	m, err := Decode(strings.NewReader("seed = 21\ngames = 1\n[[seat]]\n[[seat]]\nvariant = \"easy\"\n"))
	require.NoError(t, err)

	bus := events.NewEventBus()
	ended := 0
	bus.SubscribeFunc(events.TypeGameEnded, func(events.Event) { ended++ })
	saver := &memSaver{saved: make(map[string]int)}
	r := NewRunner(m, RunnerConfig{Bus: bus, Saver: saver, Logger: testutil.NopLogger()})
	started, moves := 0, 0
	r.OnStart = func(*game.Session) { started++ }
	r.OnMove = func(*game.Session, game.Entry) { moves++ }

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, ended)
	assert.Positive(t, moves)
	assert.Len(t, res.Scores, 2)
	assert.NotEmpty(t, res.Winners)
	assert.NotEmpty(t, res.Winner(m))
	assert.Equal(t, res.Moves, saver.saved[res.GameID])
}

func TestRunnerMoveLimit(t *testing.T) {
	m, err := Decode(strings.NewReader("max_moves = 10\n[[seat]]\n[[seat]]\n"))
	require.NoError(t, err)
	saver := &memSaver{saved: make(map[string]int)}
	r := NewRunner(m, RunnerConfig{Saver: saver, Logger: testutil.NopLogger()})

	_, err = r.Play(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMoveLimit))
	assert.Len(t, saver.saved, 1)
}

func TestRunnerCancelled(t *testing.T) {
	m, err := Decode(strings.NewReader("[[seat]]\n[[seat]]\n"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(m, RunnerConfig{Logger: testutil.NopLogger()})
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
