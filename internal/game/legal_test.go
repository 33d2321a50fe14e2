package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

func TestLegalTargetsAfterRoll(t *testing.T) {
	b := rolledBoard(t, core.RowCamels, 1)
	targets := b.LegalTargets()
	require.NotEmpty(t, targets)

	for r := 0; r < core.NumRows; r++ {
		_, ok := targets[core.TowerDiceCell(r)]
		assert.Equal(t, b.Height(core.TowerDiceCell(r)) > 0, ok, "row %d", r)
	}
	assert.Contains(t, targets, core.MiscCell(0, core.MiscGold))
	assert.NotContains(t, targets, core.GoldPoolCell)
	assert.NotContains(t, targets, core.CamelPoolCell)
	assert.NotContains(t, targets, core.MiscCell(1, core.MiscGold))

	for id, m := range targets {
		assert.Equal(t, move.OpPick, m.Op, "%s", core.Spec(id).Loc)
		assert.True(t, b.IsLegal(m))
	}
	assert.False(t, b.DoneAllowed())
}

func TestLegalTargetsWhileHolding(t *testing.T) {
	b := rolledBoard(t, core.RowCamels, 1)
	execText(t, b, "Pick green Dice_Tower A 0 -1")
	execText(t, b, "Pick green Camel_Pool 0")

	targets := b.LegalTargets()
	assert.Len(t, targets, 2)
	assert.Contains(t, targets, core.MiscCell(0, core.MiscCamels))
	assert.Contains(t, targets, core.CamelPoolCell)
	for _, m := range targets {
		assert.Equal(t, move.OpDrop, m.Op)
	}
	assert.Empty(t, b.LegalMoves()[len(targets):])
}

func TestPlacementTargetsAreTransfers(t *testing.T) {
	var b *Board
	row := -1
	for seed := int64(1); seed < 500 && row < 0; seed++ {
		var err error
		b, err = NewBoard(fmt.Sprintf("Yspahan %d 2", seed))
		require.NoError(t, err)
		execText(t, b, "Start green")
		execText(t, b, "Done")
		for r := core.RowBag; r <= core.RowVase; r++ {
			if b.Height(core.TowerDiceCell(r)) > 0 {
				row = r
				break
			}
		}
	}
	require.GreaterOrEqual(t, row, 0)

	exec(t, b, move.Pick(0, loc(core.TowerDiceCell(row)), move.Top))
	assert.Equal(t, states.ThreewayFor[row], b.State())

	houses := b.NeighborhoodDests()
	require.NotEmpty(t, houses)
	targets := b.LegalTargets()
	for _, h := range houses {
		m, ok := targets[h]
		require.True(t, ok, "%s", core.Spec(h).Loc)
		assert.Equal(t, move.OpMove, m.Op)
		assert.Equal(t, core.MiscTrack, m.Source.Rack)
	}

	m := targets[houses[0]]
	exec(t, b, m)
	assert.Equal(t, 19, b.Cubes(0))
	top, ok := b.Top(houses[0])
	require.True(t, ok)
	assert.Equal(t, core.Cube(core.Green), top)
}

func TestSupervisorDestsFollowDie(t *testing.T) {
	b := rolledBoard(t, core.RowCamels, 1)
	exec(t, b, move.Pick(0, loc(core.TowerDiceCell(core.RowCamels)), move.Top))
	exec(t, b, move.Pick(0, loc(b.Supervisor()), move.Top))
	require.Equal(t, states.MoveSupervisor, b.State())

	die, ok := b.Top(core.TowerDiceCell(core.RowCamels))
	require.True(t, ok)
	min, max := b.SupervisorRange()
	assert.Equal(t, die.Face(), min)
	assert.Equal(t, die.Face(), max)

	dests := b.SupervisorDests()
	require.NotEmpty(t, dests)
	targets := b.LegalTargets()
	for _, d := range dests {
		assert.Contains(t, targets, d)
	}
	assert.Contains(t, targets, core.TrackCell(core.Hub))
}

// playout drives a game with uniformly chosen legal moves.
func playout(t *testing.T, token string, steps int, visit func(b *Board)) *Board {
	t.Helper()
	b, err := NewBoard(token)
	require.NoError(t, err)
	exec(t, b, move.Start(0))
	spec, err := ParseInit(token)
	require.NoError(t, err)
	r := random.New(spec.Seed)
	for i := 0; i < steps && !b.GameOver(); i++ {
		moves := b.LegalMoves()
		require.NotEmpty(t, moves, "no legal move in %s after %d steps", b.State(), i)
		exec(t, b, moves[r.NextInt(len(moves))])
		if visit != nil {
			visit(b)
		}
	}
	return b
}

func TestRandomPlayoutsKeepInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("long playout")
	}
	for _, token := range []string{"Yspahan 11 2", "Yspahan 12 3", "Yspahan 13 4"} {
		t.Run(token, func(t *testing.T) {
			var moves []move.Move
			var digests []int64
			final := playout(t, token, 250, func(b *Board) {
				for p := 0; p < b.Players(); p++ {
					camels, gold := b.BuildCredits(p)
					assert.GreaterOrEqual(t, camels, 0)
					assert.GreaterOrEqual(t, gold, 0)
				}
				assert.LessOrEqual(t, b.Height(core.CaravanCell(b.CaravanLen()-1)), 1)
				digests = append(digests, b.Digest())
			})

			replay, err := NewBoard(token)
			require.NoError(t, err)
			moves = append(moves, move.Start(0))
			exec(t, replay, moves[0])
			r := random.New(final.Seed())
			for i := range digests {
				legal := replay.LegalMoves()
				m := legal[r.NextInt(len(legal))]
				exec(t, replay, m)
				require.Equal(t, digests[i], replay.Digest(), "digest diverged at move %d", i)
			}
			assert.Equal(t, final.Digest(), replay.Digest())
		})
	}
}
