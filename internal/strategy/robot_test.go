package strategy

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

const maxPlayoutMoves = 30000

// playout lets robots play a whole game and checks every move they make.
func playout(t *testing.T, token string, variants ...string) *game.Board {
	t.Helper()
	b, err := game.NewBoard(token)
	require.NoError(t, err)
	robots := make([]*Robot, b.Players())
	for p := range robots {
		robots[p], err = NewRobotNamed(variants[p%len(variants)], int64(p+1), zerolog.Nop())
		require.NoError(t, err)
	}
	for i := 0; i < maxPlayoutMoves && !b.GameOver(); i++ {
		d, err := robots[b.WhoseTurn()].Decide(b)
		require.NoError(t, err, "deciding in %s on day %d", b.State(), b.GameDay())
		require.False(t, d.Pass)
		require.NoError(t, b.Execute(d.Move), "%s in %s", d.Move, b.State())
	}
	require.True(t, b.GameOver(), "game stuck in %s on day %d", b.State(), b.GameDay())
	return b
}

func TestRobotPlaysFullGames(t *testing.T) {
	if testing.Short() {
		t.Skip("full games are slow")
	}
	tests := []struct {
		players  int
		variants []string
	}{
		{2, []string{"standard", "easy"}},
		{3, []string{"builder", "standard", "easy"}},
		{4, []string{"standard", "builder"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players", tt.players), func(t *testing.T) {
			b := playout(t, fmt.Sprintf("Yspahan %d %d", 40+tt.players, tt.players), tt.variants...)
			assert.Len(t, b.Scores(), tt.players)
			assert.NotEmpty(t, b.Winners())
			assert.Equal(t, states.GameOver, b.State())
			built := 0
			for p := 0; p < tt.players; p++ {
				built += b.BuildingsOwned(p)
			}
			assert.Positive(t, built)
		})
	}
}

func TestRobotIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("full games are slow")
	}
	a := playout(t, "Yspahan 77 2", "standard")
	b := playout(t, "Yspahan 77 2", "standard")
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Scores(), b.Scores())
}

func TestRobotStartsAndRolls(t *testing.T) {
	b, err := game.NewBoard("Yspahan 5 2")
	require.NoError(t, err)
	r, err := NewRobotNamed("standard", 1, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "standard", r.Variant())

	d, err := r.Decide(b)
	require.NoError(t, err)
	assert.Equal(t, move.OpStart, d.Move.Op)
	require.NoError(t, b.Execute(d.Move))
	assert.Equal(t, states.Roll, b.State())

	for b.State() == states.Roll {
		d, err = r.Decide(b)
		require.NoError(t, err)
		require.NoError(t, b.Execute(d.Move))
	}
	assert.Equal(t, states.Select, b.State())
}

func TestRobotReplansAfterForeignMove(t *testing.T) {
	b, err := game.NewBoard("Yspahan 6 2")
	require.NoError(t, err)
	for _, text := range []string{"Start green", "Done"} {
		m, err := move.Parse(text, 0)
		require.NoError(t, err)
		require.NoError(t, b.Execute(m))
	}
	r, err := NewRobotNamed("standard", 3, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Decide(b)
	require.NoError(t, err)
	assert.Equal(t, "plan", d.Reason)
	assert.Positive(t, r.Pending())

	// the board moves on without the plan
	legal := b.LegalMoves()
	require.NotEmpty(t, legal)
	require.NoError(t, b.Execute(legal[len(legal)-1]))

	d, err = r.Decide(b)
	require.NoError(t, err)
	assert.True(t, b.IsLegal(d.Move), "%s in %s", d.Move, b.State())
}

func TestRobotGameOver(t *testing.T) {
	b, err := game.NewBoard("Yspahan 8 2")
	require.NoError(t, err)
	for _, text := range []string{"Start green", "Resign", "Done"} {
		m, err := move.Parse(text, 0)
		require.NoError(t, err)
		require.NoError(t, b.Execute(m))
	}
	r, err := NewRobotNamed("easy", 1, zerolog.Nop())
	require.NoError(t, err)
	d, err := r.Decide(b)
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.True(t, d.Pass)
}

func TestRobotTakesBackResignation(t *testing.T) {
	b, err := game.NewBoard("Yspahan 9 2")
	require.NoError(t, err)
	for _, text := range []string{"Start green", "Resign"} {
		m, err := move.Parse(text, 0)
		require.NoError(t, err)
		require.NoError(t, b.Execute(m))
	}
	r, err := NewRobotNamed("easy", 1, zerolog.Nop())
	require.NoError(t, err)
	d, err := r.Decide(b)
	require.NoError(t, err)
	assert.Equal(t, move.OpResign, d.Move.Op)
}
