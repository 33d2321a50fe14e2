package game

import (
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

const (
	cellDigestKey  = 63546
	boardDigestKey = 64000
)

// cellRand is the fixed per-cell random mixed into each cell's contents.
var cellRand []int64

func init() {
	r := random.New(cellDigestKey)
	cellRand = make([]int64, core.NumCells)
	for i := range cellRand {
		cellRand[i] = r.NextLong()
	}
}

func cellDigest(id core.CellID, stack []core.Chip) int64 {
	if len(stack) == 0 {
		return 0
	}
	var v uint64
	for i, c := range stack {
		v = v*1000003 + uint64(c.Code()+1)*uint64(i+1)
	}
	return int64(v * uint64(cellRand[id]))
}

type digester struct {
	r *random.Stream
	v int64
}

func (d *digester) mix(n int) { d.v ^= int64(n) * d.r.NextLong() }

func (d *digester) mixCell(id core.CellID) { d.mix(int(id)) }

func (d *digester) mixBool(b bool) { d.mix(b2i(b)) }

// Digest is a hash over the cells and scalar fields that decide how the
// game continues. Replaying the same moves from the same token always
// gives the same digest. The pools and cube piles are refilled freely and
// are left out.
func (b *Board) Digest() int64 {
	s := b.st
	d := &digester{r: random.New(boardDigestKey)}
	for i, stack := range s.cells {
		id := core.CellID(i)
		if !core.Spec(id).Digestable {
			continue
		}
		d.v ^= cellDigest(id, stack)
	}
	for p := 0; p < b.init.Players; p++ {
		pl := s.pl[p]
		d.mix(pl.buildNoCamels)
		d.mix(pl.buildNoGold)
		d.mixBool(pl.paidCamelsByCard)
		d.mixBool(pl.paidGoldByCard)
		d.mix(pl.viewCardCount)
	}
	d.mix(int(s.ccundo))
	d.mix(s.payCamelReturn)
	d.mix(int(s.resetState))
	d.mix(s.resetDice)
	d.mix(s.selectedDice)
	d.mixCell(s.selectedCube)
	d.mixCell(s.protectedCube)
	d.mixCell(s.protectedCube2)
	d.mixCell(s.supervisor)
	d.mixCell(s.nextSupervisor)
	d.mix(s.cardTradeCount)
	d.mix(s.startPlayer)
	d.mix(s.gameDay)
	d.mix(int(s.held.chip.Code()))
	d.mix(s.held.count)
	for _, c := range s.picks {
		d.mixCell(c)
	}
	for _, c := range s.drops {
		d.mixCell(c)
	}
	d.mix(b.init.Players)
	d.mix(int(s.phase))
	d.mix(s.whoseTurn)
	return d.v
}
