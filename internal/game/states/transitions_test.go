package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

func TestStateNames(t *testing.T) {
	for s := State(0); s < NumStates; s++ {
		parsed, ok := ParseState(s.String())
		require.True(t, ok, s.String())
		assert.Equal(t, s, parsed)
		assert.NotEmpty(t, s.Message())
	}
	_, ok := ParseState("Nowhere")
	assert.False(t, ok)
	assert.Equal(t, "Unknown(99)", State(99).String())
}

func TestStateProperties(t *testing.T) {
	assert.True(t, GameOver.IsTerminal())
	assert.False(t, Build.IsTerminal())

	assert.True(t, Roll.DoneAlways())
	assert.True(t, DesignatedCube.DoneAlways())
	assert.False(t, PayCamel.DoneAlways())
	assert.False(t, CardScoreGold.DoneAlways())

	assert.True(t, CardTradeCamelsGold.IsCardScoring())
	assert.True(t, ThreewayPlaceVase.IsThreeway())
	assert.False(t, PlaceVase.IsThreeway())
	assert.True(t, PlaceBarrel.IsPlacement())
	assert.True(t, ThreewayPlaceBag.CanPlaceInSouk())
	assert.True(t, CardPlaceCubeSouk.CanPlaceInSouk())
	assert.False(t, ThreewayTakeGold.CanPlaceInSouk())
}

func TestNextTurnSequence(t *testing.T) {
	steps := []struct {
		on   Trigger
		want State
	}{
		{On(Start), Roll},
		{On(Hold), Roll},
		{On(Done), Select},
		{On(SelectRow, core.RowChest), ThreewayPlaceChest},
		{On(SelectRow, core.RowGold), ThreewayTakeGold},
		{On(CommitRow), TakeGold},
		{On(Took), Prebuild},
		{On(Done), Build},
		{On(Built), Confirm},
		{On(EndTurn, int(NextSelect)), Select},
	}

	s := Puzzle
	for i, step := range steps {
		next, err := Next(s, step.on)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, next, "step %d", i)
		s = next
	}
}

func TestNextSupervisorBranches(t *testing.T) {
	tests := []struct {
		from State
		on   Trigger
		want State
	}{
		{ThreewayTakeCamel, On(TakeSupervisor), MoveSupervisor},
		{Select, On(PayGold), MoveSupervisor},
		{MoveSupervisor, On(SupervisorStop, 0), Prebuild},
		{MoveSupervisor, On(SupervisorStop, 1), DesignatedCube},
		{MoveSupervisor, On(SupervisorStop, 2), DesignateCube},
		{DesignateCube, On(ToggleCube, 1), DesignatedCube},
		{DesignatedCube, On(ToggleCube, 0), DesignateCube},
		{DesignatedCube, On(OwnerMayPay), PayCamel},
		{PayCamel, On(CamelPaid), PaidCamel},
		{PaidCamel, On(SupervisorStop, 0), Prebuild},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.on.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.on)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextCards(t *testing.T) {
	s, err := Next(Build, On(PlayHandCard))
	require.NoError(t, err)
	assert.Equal(t, PlayCardEffect, s)

	for k := core.Card3Camels; k < core.NumCardKinds; k++ {
		got, err := Next(PlayCardEffect, On(PlaceCard, int(k)))
		require.NoError(t, err)
		assert.Equal(t, CardEffectState[k], got)
	}

	got, err := Next(PlayCardDice, On(BoostRow, core.RowCamels))
	require.NoError(t, err)
	assert.Equal(t, TakeCamel, got)

	got, err = Next(CardScoreGold, On(ScoreStep, 1))
	require.NoError(t, err)
	assert.Equal(t, ConfirmCard, got)

	got, err = Next(ConfirmCard, On(Resume, int(ThreewayPlaceBag)))
	require.NoError(t, err)
	assert.Equal(t, ThreewayPlaceBag, got)

	_, err = Next(ConfirmCard, On(Resume, int(GameOver)))
	assert.ErrorIs(t, err, ErrNoTransition)
}

func TestNextGlobalTriggers(t *testing.T) {
	for s := State(0); s < NumStates; s++ {
		got, err := Next(s, On(Hold))
		require.NoError(t, err)
		assert.Equal(t, s, got)

		got, err = Next(s, On(Edit))
		require.NoError(t, err)
		assert.Equal(t, Puzzle, got)

		if s != Resign {
			got, err = Next(s, On(ResignToggle))
			require.NoError(t, err)
			assert.Equal(t, Resign, got)

			back, err := Next(Resign, On(Resume, int(s)))
			require.NoError(t, err)
			assert.Equal(t, s, back)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	assert.True(t, Select.CanTransitionTo(ThreewayTakeGold))
	assert.True(t, Select.CanTransitionTo(Select))
	assert.False(t, Select.CanTransitionTo(Confirm))
	assert.True(t, Build.CanTransitionTo(GameOver))

	allowed := Prebuild.AllowedTransitions()
	assert.Contains(t, allowed, Build)
	assert.NotContains(t, allowed, Prebuild)

	triggers := Triggers(PayCamel)
	assert.Contains(t, triggers, On(CamelPaid))
	for i := 1; i < len(triggers); i++ {
		prev, cur := triggers[i-1], triggers[i]
		assert.True(t, prev.Kind < cur.Kind || (prev.Kind == cur.Kind && prev.Arg < cur.Arg))
	}
}
