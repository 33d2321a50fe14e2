package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

func TestTrackDistance(t *testing.T) {
	tests := []struct {
		from, to, want int
	}{
		{core.Hub, 12, 2},
		{12, core.Hub, 2},
		{8, 12, 4},
		{11, 15, 4},
		{core.Hub, core.HubAlias, 0},
		{20, 24, 4},
		{0, core.Hub, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrackDistance(tt.from, tt.to), "%d to %d", tt.from, tt.to)
	}
}

func TestSupCost(t *testing.T) {
	assert.Equal(t, 2, SupCost(core.Hub, 13, 5, false))
	assert.Equal(t, 0, SupCost(core.Hub, 13, 5, true))
	assert.Equal(t, 0, SupCost(core.Hub, 13, 3, false))
	assert.Equal(t, 4, SupCost(core.Hub, 2, 1, true))
}

func TestSupOptionNearHub(t *testing.T) {
	assert.True(t, SupOption{Dest: 11}.NearHub())
	assert.True(t, SupOption{Dest: 21}.NearHub())
	assert.False(t, SupOption{Dest: 14}.NearHub())
}

func TestDesignatePrefersOpponent(t *testing.T) {
	d := &PlayData{Player: 0, Caravan: []int{-1, -1, 1, -1}}
	owners := map[core.CellID]int{1: 0, 2: 1}
	owner := func(id core.CellID) int { return owners[id] }

	assert.Equal(t, core.CellID(2), d.Designate([]core.CellID{1, 2}, owner))
	assert.Equal(t, core.CellID(2), d.Designate([]core.CellID{2, 1}, owner))
	assert.Equal(t, core.CellID(1), d.Designate([]core.CellID{1}, owner))
	assert.Equal(t, core.NoCell, d.Designate(nil, owner))

	d.Caravan = []int{-1, 1, 1, 1}
	assert.Equal(t, core.CellID(1), d.Designate([]core.CellID{1, 2}, owner))
}
