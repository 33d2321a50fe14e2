package strategy

import (
	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

// planner builds a sequence of moves for player p on a private board. Every
// move is executed as it is added, so a finished plan replays cleanly on
// the board it was made for.
type planner struct {
	b     *game.Board
	p     int
	moves []move.Move
}

func newPlanner(b *game.Board) *planner {
	return &planner{b: b.Clone(), p: b.WhoseTurn()}
}

func (pl *planner) state() states.State { return pl.b.State() }

// mine is one of the player's own supply cells.
func (pl *planner) mine(row int) core.CellID { return core.MiscCell(pl.p, row) }

func (pl *planner) exec(m move.Move) bool {
	if pl.b.Execute(m) != nil {
		return false
	}
	pl.moves = append(pl.moves, m)
	return true
}

// try runs fn on a copy of the plan and keeps its moves only if fn succeeds.
func (pl *planner) try(fn func(s *planner) bool) bool {
	sub := &planner{b: pl.b.Clone(), p: pl.p}
	if !fn(sub) {
		return false
	}
	pl.b = sub.b
	pl.moves = append(pl.moves, sub.moves...)
	return true
}

func loc(id core.CellID) core.Location { return core.Spec(id).Loc }

func (pl *planner) pick(id core.CellID, depth int) bool {
	return pl.exec(move.Pick(pl.p, loc(id), depth))
}

func (pl *planner) drop(id core.CellID) bool {
	return pl.exec(move.Drop(pl.p, loc(id)))
}

func (pl *planner) transfer(src, dst core.CellID) bool {
	return pl.exec(move.Transfer(pl.p, loc(src), move.Top, loc(dst)))
}

func (pl *planner) done() bool { return pl.exec(move.Done(pl.p)) }

// playCard picks card k from the hand.
func (pl *planner) playCard(k core.CardKind) bool {
	return pl.pick(pl.mine(core.MiscCards), int(k))
}

// selectRow commits to a dice row, either by its dice or by adding card k
// as an extra die when boost is set.
func (pl *planner) selectRow(row int, k core.CardKind, boost bool) bool {
	if pl.state().IsThreeway() && pl.b.SelectedRow() == row && !boost {
		return true
	}
	if boost {
		return pl.playCard(k) && pl.drop(core.TowerCardCell(row))
	}
	return pl.pick(core.TowerDiceCell(row), move.Top)
}

// takePool takes camels or gold with the selected row.
func (pl *planner) takePool(row int) bool {
	pool, home := core.CamelPoolCell, pl.mine(core.MiscCamels)
	if row == core.RowGold {
		pool, home = core.GoldPoolCell, pl.mine(core.MiscGold)
	}
	return pl.pick(pool, move.Top) && pl.drop(home) && pl.state() == states.Prebuild
}

// placeCubes fills houses until the placement is over, preferring the
// souks of groups in order.
func (pl *planner) placeCubes(region int, groups []Group) bool {
	for i := 0; i < core.StartingCubes && pl.state() != states.Prebuild; i++ {
		if !pl.state().CanPlaceInSouk() {
			return false
		}
		dest := pickHouse(pl.b.NeighborhoodDests(), groups)
		if dest == core.NoCell || !pl.transfer(pl.mine(core.MiscCubes), dest) {
			return false
		}
	}
	return pl.state() == states.Prebuild
}

// pickHouse returns the first allowed house in the preferred groups, or the
// first allowed house at all.
func pickHouse(dests []core.CellID, groups []Group) core.CellID {
	allowed := make(map[core.CellID]bool, len(dests))
	for _, id := range dests {
		allowed[id] = true
	}
	for _, g := range groups {
		for _, h := range g.Houses {
			if allowed[h] {
				return h
			}
		}
	}
	if len(dests) > 0 {
		return dests[0]
	}
	return core.NoCell
}

// drawCard takes the top card of the stack into the hand.
func (pl *planner) drawCard() bool {
	return pl.pick(core.CardStackCell, move.Top) && pl.drop(pl.mine(core.MiscCards)) &&
		pl.state() == states.Prebuild
}

// paySupervisor moves the supervisor to dest with the selected row, paying
// cost gold into the tower first.
func (pl *planner) paySupervisor(row, cost int, dest core.CellID) bool {
	for i := 0; i < cost; i++ {
		if !pl.pick(pl.mine(core.MiscGold), move.Top) || !pl.drop(core.TowerGoldCell(row)) {
			return false
		}
	}
	return pl.pick(pl.b.Supervisor(), move.Top) && pl.drop(dest)
}

// playEffect plays card k from the hand during the build phase and returns
// with the card effect state entered.
func (pl *planner) playEffect(k core.CardKind) bool {
	if !pl.playCard(k) || !pl.drop(core.DiscardCell) {
		return false
	}
	return pl.state() == states.CardEffectState[k]
}

// confirmEffect plays a card whose effect needs no further moves.
func (pl *planner) confirmEffect(k core.CardKind) bool {
	return pl.playEffect(k) && pl.state() == states.ConfirmCard && pl.done()
}

// score returns n of the player's camels or gold to the pool with a scoring
// card.
func (pl *planner) score(k core.CardKind, n int) bool {
	row, pool := core.MiscGold, core.GoldPoolCell
	if k == core.CardScoreCamels {
		row, pool = core.MiscCamels, core.CamelPoolCell
	}
	if n <= 0 || !pl.playEffect(k) {
		return false
	}
	for i := 0; i < n && pl.state() == states.CardEffectState[k]; i++ {
		if !pl.pick(pl.mine(row), move.Top) || !pl.drop(pool) {
			return false
		}
	}
	return pl.done() && pl.state() == states.Build
}

// swap trades n camels for gold, or n gold for camels when toCamels is set.
func (pl *planner) swap(n int, toCamels bool) bool {
	from, to := pl.mine(core.MiscCamels), pl.mine(core.MiscGold)
	if toCamels {
		from, to = to, from
	}
	if n <= 0 || !pl.playEffect(core.CardSwapCamelsGold) {
		return false
	}
	for i := 0; i < n; i++ {
		if !pl.pick(from, move.Top) || !pl.drop(to) {
			return false
		}
	}
	return pl.done() && pl.state() == states.Build
}

// build puts a cube on a building.
func (pl *planner) build(bld core.Building) bool {
	return pl.transfer(pl.mine(core.MiscCubes), core.BuildingCell(pl.p, bld)) &&
		pl.state() == states.Confirm
}

// buyDie moves a yellow die from the extra row onto the dice table.
func (pl *planner) buyDie() bool {
	src := core.NoCell
	for i := 0; i < core.NumExtraDice; i++ {
		if die, ok := pl.b.Top(core.ExtraDieCell(i)); ok && die.Yellow() {
			src = core.ExtraDieCell(i)
			break
		}
	}
	if src == core.NoCell {
		return false
	}
	for i := 0; i < core.NumTableDice; i++ {
		dst := core.TableCell(i)
		if core.Spec(dst).Loc.Col == core.Spec(src).Loc.Col || pl.b.Height(dst) > 0 {
			continue
		}
		if pl.try(func(s *planner) bool { return s.transfer(src, dst) }) {
			return true
		}
	}
	return false
}
