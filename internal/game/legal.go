package game

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

var errNotHere = fmt.Errorf("%w: not a target in this state", core.ErrIllegalMove)

func isTowerDice(c core.CellID) bool {
	return core.TowerRow(c) >= 0 && core.Spec(c).Class == core.ClassDice
}

func (x *executor) own(c core.CellID, row int) bool { return c == misc(x.st.whoseTurn, row) }

// legalPick filters the cells that may be picked with empty hands.
func (x *executor) legalPick(c core.CellID) error {
	s := x.st
	if c == core.ReshuffleCell {
		return errNotHere
	}
	if s.height(c) == 0 {
		return fmt.Errorf("%w: %s", core.ErrEmptyCell, core.Spec(c).Loc)
	}
	if c == s.lastDrop() {
		return nil
	}
	ok := false
	switch s.phase {
	case states.Puzzle:
		ok = true
	case states.ThreewayPlaceBag, states.ThreewayPlaceBarrel, states.ThreewayPlaceChest, states.ThreewayPlaceVase:
		ok = isTowerDice(c) || c == core.CardStackCell || c == s.supervisor ||
			x.own(c, core.MiscCubes) || x.own(c, core.MiscGold) || x.own(c, core.MiscCards)
	case states.ThreewayTakeCamel, states.ThreewayTakeGold:
		ok = isTowerDice(c) || c == core.CardStackCell || c == s.supervisor ||
			x.own(c, core.MiscCards) || x.own(c, core.MiscGold) ||
			(s.phase == states.ThreewayTakeCamel && c == core.CamelPoolCell) ||
			(s.phase == states.ThreewayTakeGold && c == core.GoldPoolCell)
	case states.MoveSupervisor:
		ok = c == s.supervisor || x.own(c, core.MiscGold) ||
			(s.selectedDice >= 0 && c == core.TowerGoldCell(s.selectedDice))
	case states.TakeCard:
		ok = c == core.CardStackCell
	case states.TakeCamel:
		ok = c == core.CamelPoolCell
	case states.TakeGold:
		ok = c == core.GoldPoolCell
	case states.Select:
		ok = isTowerDice(c) || x.own(c, core.MiscCards) || x.own(c, core.MiscGold)
	case states.Roll:
		d, _ := s.top(c)
		ok = (core.Spec(c).Loc.Rack == core.DiceTable && d.Yellow()) || x.own(c, core.MiscCards)
	case states.PlaceBag, states.PlaceBarrel, states.PlaceChest, states.PlaceVase, states.CardPlaceCubeSouk:
		ok = x.own(c, core.MiscCubes)
	case states.CardTradeCamelsGold:
		ok = x.own(c, core.MiscCamels) || x.own(c, core.MiscGold)
	case states.Build:
		ok = x.own(c, core.MiscCubes) || x.own(c, core.MiscCards)
	case states.DesignateCube, states.DesignatedCube:
		for _, h := range core.AdjacentHouses(x.watching()) {
			if h == c && h != s.protectedCube && h != s.protectedCube2 {
				ok = true
			}
		}
	case states.PayCamel:
		if s.selectedCube != core.NoCell {
			if cube, has := s.top(s.selectedCube); has {
				ok = c == misc(int(cube.Color()), core.MiscCamels)
			}
		}
	case states.CardScoreGold:
		ok = x.own(c, core.MiscGold)
	case states.CardScoreCamels:
		ok = x.own(c, core.MiscCamels)
	}
	if !ok {
		return errNotHere
	}
	return nil
}

// watching is the track cell whose neighbors are being designated.
func (x *executor) watching() core.CellID {
	if x.st.nextSupervisor != core.NoCell {
		return x.st.nextSupervisor
	}
	return x.st.supervisor
}

func rowHasDice(s *state, c core.CellID) bool {
	r := core.TowerRow(c)
	return r >= 0 && s.height(core.TowerDiceCell(r)) > 0
}

// legalDrop filters the cells the held object may be dropped on.
func (x *executor) legalDrop(c core.CellID) error {
	s := x.st
	spec := core.Spec(c)
	held := s.held.chip
	if c == core.ReshuffleCell {
		return errNotHere
	}
	if held.Class() != spec.Class {
		return fmt.Errorf("%w: %s cannot hold %s", core.ErrIllegalMove, spec.Loc, held)
	}
	if !spec.Stackable && s.height(c) > 0 {
		return fmt.Errorf("%w: %s is occupied", core.ErrIllegalMove, spec.Loc)
	}
	if c == s.lastPick() {
		return nil
	}
	ok := false
	switch s.phase {
	case states.Puzzle:
		top, has := s.top(c)
		ok = held.Kind != core.DieChip || !has || top == held
	case states.Build:
		ok = buildingDests(s)[c]
	case states.Select:
		switch held.Class() {
		case core.ClassCards:
			ok = c == core.DiscardCell
		case core.ClassGold:
			ok = (rowHasDice(s, c) && s.selectedDice < 0) || x.own(c, core.MiscGold)
		}
	case states.MoveSupervisor:
		switch held.Class() {
		case core.ClassGold:
			if s.selectedDice < 0 {
				ok = x.own(c, core.MiscGold) || rowHasDice(s, c)
			} else {
				ok = x.own(c, core.MiscGold) || c == core.TowerGoldCell(s.selectedDice)
			}
		case core.ClassSupervisor:
			ok = c == s.supervisor || supervisorDests(s)[c]
		}
	case states.TakeGold:
		ok = c == core.GoldPoolCell || x.own(c, core.MiscGold)
	case states.TakeCard:
		ok = c == core.CardStackCell || x.own(c, core.MiscCards)
	case states.TakeCamel:
		ok = c == core.CamelPoolCell || x.own(c, core.MiscCamels)
	case states.PlaceBag, states.PlaceBarrel, states.PlaceChest, states.PlaceVase, states.CardPlaceCubeSouk:
		ok = x.own(c, core.MiscCubes) || neighborhoodDests(s)[c]
	case states.Roll:
		switch held.Class() {
		case core.ClassDice:
			cost := int(core.Spec(s.lastPick()).Loc.Col) - int(spec.Loc.Col)
			ok = spec.Loc.Rack == core.DiceTable && s.height(misc(s.whoseTurn, core.MiscGold)) >= cost
		case core.ClassCards:
			ok = c == core.DiscardCell
		}
	case states.CardTradeCamelsGold:
		ok = x.own(c, core.MiscCamels) || x.own(c, core.MiscGold)
	case states.Prebuild, states.PlayCardEffect:
		ok = c == core.DiscardCell
	case states.PlayCardDice:
		ok = c == core.DiscardCell || x.own(c, core.MiscCards) ||
			(rowHasDice(s, c) && s.ccundo != states.Roll &&
				(s.selectedDice < 0 || core.TowerRow(c) == s.selectedDice))
	case states.CardScoreGold:
		ok = c == core.GoldPoolCell
	case states.CardScoreCamels, states.PayCamel:
		ok = c == core.CamelPoolCell
	}
	if !ok {
		return errNotHere
	}
	return nil
}

func (b *Board) probe() *executor {
	return &executor{st: b.st, players: b.init.Players, seed: b.init.Seed, rep: &Report{}}
}

func (b *Board) validCell(c core.CellID) bool {
	spec := core.Spec(c)
	if spec.Player >= b.init.Players {
		return false
	}
	if spec.Loc.Rack == core.SupervisorTrack && spec.Loc.Row == core.HubAlias {
		return false
	}
	return spec.Loc.Rack != core.CaravanTrack || spec.Loc.Row < b.CaravanLen()
}

// LegalTargets maps every cell the player to move may hit to the move that
// hitting it makes. An empty house that can take a cube maps to moving a
// cube there from the player's pile.
func (b *Board) LegalTargets() map[core.CellID]move.Move {
	out := make(map[core.CellID]move.Move)
	s := b.st
	if s.phase.IsTerminal() {
		return out
	}
	x := b.probe()
	p := s.whoseTurn
	var souks map[core.CellID]bool
	if s.held.count == 0 && s.phase.CanPlaceInSouk() {
		souks = neighborhoodDests(s)
	}
	for i := 0; i < core.NumCells; i++ {
		c := core.CellID(i)
		if !b.validCell(c) {
			continue
		}
		loc := core.Spec(c).Loc
		var m move.Move
		switch {
		case s.held.count > 0:
			if x.legalDrop(c) != nil {
				continue
			}
			m = move.Drop(p, loc)
		case souks[c]:
			m = move.Transfer(p, core.Spec(misc(p, core.MiscCubes)).Loc, move.Top, loc)
		default:
			if x.legalPick(c) != nil {
				continue
			}
			depth := move.Top
			if loc.Rack == core.MiscTrack && loc.Row == core.MiscCards {
				top, _ := s.top(c)
				depth = int(top.CardKind())
			}
			m = move.Pick(p, loc, depth)
		}
		if b.IsLegal(m) {
			out[c] = m
		}
	}
	return out
}

// DoneAllowed reports whether a Done would be accepted.
func (b *Board) DoneAllowed() bool { return b.st.doneAllowed() }

// LegalMoves lists every legal move in a stable order.
func (b *Board) LegalMoves() []move.Move {
	targets := b.LegalTargets()
	ids := make([]core.CellID, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]move.Move, 0, len(ids)+2)
	for _, id := range ids {
		out = append(out, targets[id])
	}
	if b.DoneAllowed() {
		out = append(out, move.Done(b.st.whoseTurn))
	}
	if b.st.phase == states.Resign {
		out = append(out, move.Simple(move.OpResign, b.st.whoseTurn))
	}
	return out
}

// IsLegal reports whether m would execute.
func (b *Board) IsLegal(m move.Move) bool {
	return b.Clone().Execute(m) == nil
}

// NeighborhoodDests lists the empty houses the player to move may fill.
func (b *Board) NeighborhoodDests() []core.CellID { return sortedIDs(neighborhoodDests(b.st)) }

// SupervisorDests lists the track cells the supervisor may stop on.
func (b *Board) SupervisorDests() []core.CellID { return sortedIDs(supervisorDests(b.st)) }

// BuildingDests lists the buildings the player to move can afford.
func (b *Board) BuildingDests() []core.CellID { return sortedIDs(buildingDests(b.st)) }

// WatchedCubes lists the unprotected cubes next to a track cell.
func (b *Board) WatchedCubes(track core.CellID) []core.CellID { return adjacentCubes(b.st, track) }

// SupervisorRange is the step window for the selected dice.
func (b *Board) SupervisorRange() (min, max int) { return supervisorRange(b.st) }

func sortedIDs(m map[core.CellID]bool) []core.CellID {
	out := make([]core.CellID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
