package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/strategy"
)

// Token is the initialization token for a standard game.
func Token(seed int64, players int) string {
	return fmt.Sprintf("Yspahan %d %d", seed, players)
}

// CreateTestSession starts a session with a silent logger and no event bus.
func CreateTestSession(t *testing.T, id string, seed int64, players int) *game.Session {
	t.Helper()
	s, err := game.NewSession(game.SessionConfig{
		Token:  Token(seed, players),
		GameID: id,
		Logger: NopLogger(),
	})
	require.NoError(t, err)
	return s
}

// CreateTestRobots seats one robot of the named variant per player.
func CreateTestRobots(t *testing.T, variant string, players int, seed int64) []*strategy.Robot {
	t.Helper()
	robots := make([]*strategy.Robot, players)
	for p := range robots {
		r, err := strategy.NewRobotNamed(variant, seed+int64(p), NopLogger())
		require.NoError(t, err)
		robots[p] = r
	}
	return robots
}

// PlayMoves lets the robots play up to n moves on s and returns how many
// were played. It stops early when the game ends.
func PlayMoves(t *testing.T, s *game.Session, robots []*strategy.Robot, n int) int {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		b := s.Snapshot()
		d, err := robots[b.WhoseTurn()].Decide(b)
		if errors.Is(err, core.ErrGameOver) {
			return i
		}
		require.NoError(t, err, "robot failed in %s", b.State())
		require.NoError(t, s.SubmitMove(ctx, d.Move), "robot move %s in %s", d.Move, b.State())
	}
	return n
}
