package move

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		text string
		want Move
	}{
		{"Pick green Camel_Pool 0", Pick(0, core.Location{Rack: core.CamelPool}, 0)},
		{"Pick red Dice_Tower A 3 -1", Pick(1, core.Location{Rack: core.DiceTower, Col: 'A', Row: 3}, Top)},
		{"Pick blue Misc_Track C 2 7", Pick(2, core.Location{Rack: core.MiscTrack, Col: 'C', Row: 2}, 7)},
		{"Drop green Supervisor_Track 14", Drop(0, core.Location{Rack: core.SupervisorTrack, Row: 14})},
		{"Drop yellow Bag_Neighborhood B 1", Drop(3, core.Location{Rack: core.BagNeighborhood, Col: 'B', Row: 1})},
		{"Drop green Misc_Track", DropHome(0)},
		{"Move red Gold_Pool -1 Misc_Track B 1", Transfer(1, core.Location{Rack: core.GoldPool}, Top,
			core.Location{Rack: core.MiscTrack, Col: 'B', Row: 1})},
		{"Start blue", Start(2)},
		{"Done", Done(1)},
		{"Edit", Simple(OpEdit, 1)},
		{"Resign", Simple(OpResign, 1)},
		{"ViewCards", Simple(OpViewCards, 1)},
		{"GameOverOnTime", Simple(OpGameOverOnTime, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, err := Parse(tt.text, 1)
			require.NoError(t, err)
			assert.True(t, m.IsEquivalentTo(tt.want), "parsed %v want %v", m, tt.want)
			assert.Equal(t, tt.text, m.String())

			again, err := Parse(m.String(), m.Player)
			require.NoError(t, err)
			assert.True(t, again.IsEquivalentTo(m))
		})
	}
}

func TestParseSequenceNumber(t *testing.T) {
	m, err := Parse("42 Pick green Camel_Pool 0", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, m.Seq)
	assert.Equal(t, "Pick green Camel_Pool 0", m.String())
	assert.Equal(t, "42 Pick green Camel_Pool 0", m.Numbered())

	plain, err := Parse("Pick green Camel_Pool 0", 0)
	require.NoError(t, err)
	assert.True(t, m.IsEquivalentTo(plain))
	assert.Equal(t, NoSeq, plain.Seq)
}

func TestParseColorIgnoresCase(t *testing.T) {
	m, err := Parse("Pick GREEN Gold_Pool 0", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Player)
	assert.Equal(t, "Pick green Gold_Pool 0", m.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text string
		pos  int
	}{
		{"", 0},
		{"Fly green", 0},
		{"pick green Camel_Pool 0", 0},
		{"Pick purple Camel_Pool 0", 1},
		{"Pick green Camel_Poo 0", 2},
		{"Pick green Camel_Pool", 3},
		{"Pick green Dice_Tower a 1 0", 3},
		{"Pick green Dice_Tower A x 0", 4},
		{"Drop green Caravan_Track", 3},
		{"Done now", 1},
		{"7 Fly", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Parse(tt.text, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrParse))

			var pe *core.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.pos, pe.Pos)
			assert.Equal(t, tt.text, pe.Text)
		})
	}
}

func TestIsEquivalentTo(t *testing.T) {
	src := core.Location{Rack: core.MiscTrack, Col: 'A', Row: core.MiscGold}
	a := Pick(0, src, Top)

	assert.True(t, a.IsEquivalentTo(Pick(0, src, Top)))
	assert.False(t, a.IsEquivalentTo(Pick(1, src, Top)))
	assert.False(t, a.IsEquivalentTo(Pick(0, src, 3)))
	assert.False(t, a.IsEquivalentTo(Drop(0, src)))

	home := DropHome(0)
	explicit := Drop(0, src)
	assert.True(t, home.IsEquivalentTo(explicit))
	assert.False(t, home.IsEquivalentTo(Drop(0, core.Location{Rack: core.GoldPool})))
	assert.False(t, home.HasDest())
	assert.True(t, home.WithDest(src).HasDest())

	pool := Pick(0, core.Location{Rack: core.GoldPool, Row: 9}, 0)
	assert.True(t, pool.IsEquivalentTo(Pick(0, core.Location{Rack: core.GoldPool}, 0)))
}
