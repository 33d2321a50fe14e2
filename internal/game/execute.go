package game

import (
	"fmt"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

// executor applies one move to a private copy of the state. Nothing it
// does is visible until Execute commits the copy.
type executor struct {
	st      *state
	players int
	seed    int64
	rep     *Report
}

// Execute applies m. On error the board is unchanged and the error is an
// *core.IllegalMoveError.
func (b *Board) Execute(m move.Move) error {
	x := &executor{st: b.st.clone(), players: b.init.Players, seed: b.init.Seed, rep: &Report{}}
	if err := x.execute(m); err != nil {
		return &core.IllegalMoveError{Move: m.String(), State: b.st.phase.String(), Err: err}
	}
	b.st = x.st
	b.report = *x.rep
	return nil
}

func (x *executor) animate(from, to core.CellID) {
	x.rep.Animations = append(x.rep.Animations, Animation{From: from, To: to})
}

func (x *executor) fire(k states.TriggerKind, arg ...int) error {
	t := states.On(k, arg...)
	from := x.st.phase
	to, err := states.Next(from, t)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIllegalMove, err)
	}
	if to != from {
		x.rep.Transitions = append(x.rep.Transitions, Transition{From: from, To: to, Trigger: t})
	}
	x.st.phase = to
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (x *executor) execute(m move.Move) error {
	s := x.st
	if s.phase == states.GameOver && m.Op != move.OpEdit && m.Op != move.OpViewCards {
		return core.ErrGameOver
	}
	switch m.Op {
	case move.OpPick, move.OpDrop, move.OpMove:
		if s.phase != states.Puzzle && m.Player != s.whoseTurn {
			return fmt.Errorf("%w: %s moved on %s's turn", core.ErrInvalidPlayer, core.Color(m.Player), core.Color(s.whoseTurn))
		}
	}

	switch m.Op {
	case move.OpPick:
		return x.pickMove(m)
	case move.OpDrop:
		return x.dropMove(m)
	case move.OpMove:
		return x.transfer(m)
	case move.OpDone:
		return x.done()
	case move.OpStart:
		return x.start(m.Player)
	case move.OpEdit:
		x.returnHeld()
		x.acceptPlacement()
		return x.fire(states.Edit)
	case move.OpResign:
		if s.phase == states.Resign {
			to := s.unresign
			s.unresign = noState
			return x.fire(states.Resume, int(to))
		}
		s.unresign = s.phase
		return x.fire(states.ResignToggle)
	case move.OpViewCards:
		s.pl[s.whoseTurn].viewCardCount++
		return nil
	case move.OpGameOverOnTime:
		s.win[s.whoseTurn] = true
		return x.fire(states.TimeOut)
	}
	return fmt.Errorf("%w: unknown operation %s", core.ErrIllegalMove, m.Op)
}

// cell resolves a location and rejects cells of absent players.
func (x *executor) cell(l core.Location) (core.CellID, error) {
	id, err := core.Lookup(l)
	if err != nil {
		return core.NoCell, err
	}
	spec := core.Spec(id)
	if spec.Player >= x.players {
		return core.NoCell, fmt.Errorf("%w: %s belongs to no player", core.ErrIllegalMove, l)
	}
	if spec.Loc.Rack == core.CaravanTrack && spec.Loc.Row >= x.caravanLen() {
		return core.NoCell, fmt.Errorf("%w: caravan has %d cells", core.ErrIllegalMove, x.caravanLen())
	}
	return id, nil
}

func (s *state) lastDrop() core.CellID {
	if len(s.drops) == 0 {
		return core.NoCell
	}
	return s.drops[len(s.drops)-1]
}

func (s *state) lastPick() core.CellID {
	if len(s.picks) == 0 {
		return core.NoCell
	}
	return s.picks[len(s.picks)-1]
}

func (s *state) snapshot() *state {
	c := s.clone()
	c.trail = nil
	return c
}

// restore rewinds to trail entry i, dropping it and everything after.
func (x *executor) restore(i int) {
	snap := x.st.trail[i].clone()
	snap.trail = append([]*state(nil), x.st.trail[:i]...)
	x.st = snap
}

// returnHeld puts the held object back where it came from.
func (x *executor) returnHeld() {
	if x.st.held.count > 0 && len(x.st.trail) > 0 {
		x.restore(len(x.st.trail) - 1)
	}
}

func (x *executor) acceptPlacement() {
	s := x.st
	s.held = holding{}
	s.picks = nil
	s.drops = nil
	s.trail = nil
	if s.nextSupervisor != core.NoCell {
		s.supervisor = s.nextSupervisor
		s.nextSupervisor = core.NoCell
	}
}

func (x *executor) pickMove(m move.Move) error {
	s := x.st
	if s.held.count > 0 {
		return core.ErrAlreadyPicked
	}
	c, err := x.cell(m.Source)
	if err != nil {
		return err
	}
	if c == s.lastDrop() {
		x.restore(len(s.trail) - 1)
		return nil
	}
	if err := x.legalPick(c); err != nil {
		return err
	}
	if s.phase != states.Puzzle && core.Spec(c).Class == core.ClassDice && core.TowerRow(c) >= 0 {
		row := core.TowerRow(c)
		s.selectedDice = row
		return x.fire(states.SelectRow, row)
	}
	if s.phase == states.DesignateCube || s.phase == states.DesignatedCube {
		if s.selectedCube == c {
			s.selectedCube = core.NoCell
		} else {
			s.selectedCube = c
		}
		return x.fire(states.ToggleCube, b2i(s.selectedCube != core.NoCell))
	}
	return x.pickAndAdvance(c, m.Depth)
}

func (x *executor) pickAndAdvance(c core.CellID, depth int) error {
	idx, err := x.pickIndex(c, depth)
	if err != nil {
		return err
	}
	x.pick(c, idx)
	return x.afterPick(c)
}

func (x *executor) pickIndex(c core.CellID, depth int) (int, error) {
	s := x.st
	h := s.height(c)
	if h == 0 {
		return 0, fmt.Errorf("%w: %s", core.ErrEmptyCell, core.Spec(c).Loc)
	}
	spec := core.Spec(c)
	if spec.Loc.Rack == core.MiscTrack && spec.Loc.Row == core.MiscCards && depth >= 0 {
		for i, card := range s.cells[c] {
			if int(card.CardKind()) == depth {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: no %s in hand", core.ErrIllegalMove, core.CardKind(depth))
	}
	if depth == move.Top {
		return h - 1, nil
	}
	if depth < 0 || depth >= h {
		return 0, fmt.Errorf("%w: depth %d of %d", core.ErrIllegalMove, depth, h)
	}
	return depth, nil
}

func (x *executor) pick(c core.CellID, idx int) {
	s := x.st
	snap := s.snapshot()
	chip := s.removeAt(c, idx)
	count := 1
	switch {
	case c == core.GoldPoolCell:
		count = takeGoldCount(s)
		x.topUp(c, count)
	case c == core.CamelPoolCell:
		count = takeCamelCount(s)
		x.topUp(c, count)
	case chip.Kind == core.CubeChip && core.Spec(c).Loc.Rack == core.MiscTrack:
		for s.height(c)-poolReserve < count {
			s.push(c, chip)
		}
	}
	for i := 1; i < count; i++ {
		s.pop(c)
	}
	if chip == core.Supervisor {
		s.nextSupervisor = core.NoCell
	}
	if s.phase == states.CardTradeCamelsGold {
		switch chip {
		case core.Camel:
			chip = core.Gold
		case core.Gold:
			chip = core.Camel
		}
	}
	s.held = holding{chip: chip, count: count}
	s.picks = append(s.picks, c)
	s.trail = append(s.trail, snap)
}

func (x *executor) afterPick(src core.CellID) error {
	s := x.st
	switch {
	case s.phase == states.Build:
		if s.held.chip.Kind == core.CardChip {
			s.ccundo = s.phase
			return x.fire(states.PlayHandCard)
		}
	case s.phase == states.Select || s.phase == states.Roll || s.phase.IsThreeway():
		switch s.held.chip.Class() {
		case core.ClassGold:
			if src == core.GoldPoolCell {
				return x.fire(states.CommitRow)
			}
			return x.fire(states.PayGold)
		case core.ClassCamels, core.ClassCubes:
			return x.fire(states.CommitRow)
		case core.ClassCards:
			if src == core.CardStackCell {
				return x.fire(states.DrawCard)
			}
			s.ccundo = s.phase
			return x.fire(states.PlayHandCard)
		case core.ClassSupervisor:
			return x.fire(states.TakeSupervisor)
		}
	}
	return nil
}

func (x *executor) dropMove(m move.Move) error {
	s := x.st
	if s.held.count == 0 {
		return core.ErrNothingPicked
	}
	var c core.CellID
	if m.HasDest() {
		var err error
		if c, err = x.cell(m.Dest); err != nil {
			return err
		}
	} else {
		row := core.MiscRowFor(s.held.chip.Class())
		if row < 0 || m.Player < 0 || m.Player >= x.players {
			return fmt.Errorf("%w: no home row for %s", core.ErrIllegalMove, s.held.chip)
		}
		c = core.MiscCell(m.Player, row)
	}
	return x.dropAndAdvance(c)
}

func (x *executor) dropAndAdvance(c core.CellID) error {
	s := x.st
	if c == s.lastPick() && !movingSupervisorZero(s, c) {
		x.restore(len(s.trail) - 1)
		return nil
	}
	if err := x.legalDrop(c); err != nil {
		return err
	}
	if err := x.drop(c); err != nil {
		return err
	}
	return x.afterDrop(c)
}

func (x *executor) drop(c core.CellID) error {
	s := x.st
	snap := s.snapshot()
	if s.height(core.CardStackCell) == 0 {
		x.reshuffle()
	}
	if s.held.chip == core.Supervisor {
		s.nextSupervisor = c
	}
	src := s.lastPick()
	for i := 0; i < s.held.count; i++ {
		s.push(c, s.held.chip)
		x.animate(src, c)
	}
	s.drops = append(s.drops, c)
	s.held = holding{}
	s.trail = append(s.trail, snap)
	return x.transfers(c, src)
}

// transfers applies the side effects of a drop.
func (x *executor) transfers(c, src core.CellID) error {
	s := x.st
	p := s.whoseTurn
	if s.phase == states.Puzzle {
		return nil
	}
	if c == core.DiscardCell {
		card, _ := s.top(c)
		switch card.CardKind() {
		case core.Card3Camels:
			x.topUp(core.CamelPoolCell, 3)
			return x.moveChips(core.CamelPoolCell, misc(p, core.MiscCamels), 3)
		case core.Card3Gold:
			x.topUp(core.GoldPoolCell, 3)
			return x.moveChips(core.GoldPoolCell, misc(p, core.MiscGold), 3)
		case core.CardBuyNoCamels:
			s.pl[p].buildNoCamels++
		case core.CardBuyNoGold:
			s.pl[p].buildNoGold++
		case core.CardPlaceCaravan:
			return x.sendCubeToCaravan(misc(p, core.MiscCubes), true)
		}
		return nil
	}
	switch s.phase {
	case states.Build:
		spec := core.Spec(c)
		if spec.Loc.Rack != core.BuildingTrack {
			return fmt.Errorf("%w: %s is not a building", core.ErrIllegalMove, spec.Loc)
		}
		return x.payForBuilding(core.Building(spec.Loc.Row))
	case states.CardTradeCamelsGold:
		if core.Spec(c).Class == core.ClassGold {
			s.cardTradeCount++
		} else {
			s.cardTradeCount--
		}
	case states.CardScoreGold:
		x.addVP(p, 1)
		s.cardTradeCount++
	case states.CardScoreCamels:
		x.addVP(p, 2)
		s.cardTradeCount++
	case states.Roll:
		from, to := core.Spec(src).Loc.Col, core.Spec(c).Loc.Col
		if from != to {
			return x.spendGold(p, int(from)-int(to))
		}
	}
	return nil
}

func (x *executor) soukDrops() int {
	n := 0
	for _, d := range x.st.drops {
		if core.IsSouk(d) {
			n++
		}
	}
	return n
}

func (x *executor) afterDrop(c core.CellID) error {
	s := x.st
	switch {
	case s.phase == states.CardScoreGold:
		return x.fire(states.ScoreStep, b2i(s.cardTradeCount == core.ScoreGoldLimit))
	case s.phase == states.CardScoreCamels:
		return x.fire(states.ScoreStep, b2i(s.cardTradeCount == core.ScoreCamelLimit))
	case s.phase == states.Build:
		return x.fire(states.Built)
	case s.phase == states.PlayCardEffect:
		card, _ := s.top(core.DiscardCell)
		return x.fire(states.PlaceCard, int(card.CardKind()))
	case s.phase == states.PlayCardDice:
		if c == core.DiscardCell {
			card, _ := s.top(core.DiscardCell)
			return x.fire(states.PlaceCard, int(card.CardKind()))
		}
		if s.selectedDice < 0 {
			s.selectedDice = core.TowerRow(c)
		}
		return x.fire(states.BoostRow, s.selectedDice)
	case s.phase == states.PayCamel:
		s.protectedCube2 = s.protectedCube
		s.protectedCube = s.selectedCube
		return x.fire(states.CamelPaid)
	case s.phase == states.MoveSupervisor:
		if core.Spec(c).Class == core.ClassGold {
			if s.selectedDice < 0 && core.TowerRow(c) >= 0 {
				s.selectedDice = core.TowerRow(c)
			}
			return nil
		}
		return x.supervisorStop(c)
	case s.phase == states.TakeCard || s.phase == states.TakeCamel || s.phase == states.TakeGold:
		return x.fire(states.Took)
	case s.phase == states.CardPlaceCubeSouk:
		return x.fire(states.CardPlaced)
	case s.phase.IsPlacement():
		finished := x.soukDrops() == cubePlacementCount(s) || len(neighborhoodDests(s)) == 0
		return x.fire(states.PlaceCube, b2i(finished))
	case s.phase == states.Puzzle:
		x.acceptPlacement()
	}
	return nil
}

// supervisorStop counts the cubes the supervisor now watches and moves on
// to designating them.
func (x *executor) supervisorStop(track core.CellID) error {
	adj := adjacentCubes(x.st, track)
	n := len(adj)
	if n > 2 {
		n = 2
	}
	if n == 1 {
		x.st.selectedCube = adj[0]
	}
	return x.fire(states.SupervisorStop, n)
}

func (x *executor) transfer(m move.Move) error {
	s := x.st
	if s.held.count > 0 {
		return core.ErrAlreadyPicked
	}
	src, err := x.cell(m.Source)
	if err != nil {
		return err
	}
	dst, err := x.cell(m.Dest)
	if err != nil {
		return err
	}
	if src == s.lastDrop() && dst == s.lastPick() && len(s.trail) >= 2 {
		x.restore(len(s.trail) - 2)
		return nil
	}
	if err := x.legalPick(src); err != nil {
		return err
	}
	if err := x.pickAndAdvance(src, m.Depth); err != nil {
		return err
	}
	return x.dropAndAdvance(dst)
}

func (x *executor) start(player int) error {
	if player < 0 || player >= x.players {
		return fmt.Errorf("%w: %d", core.ErrInvalidPlayer, player)
	}
	x.returnHeld()
	s := x.st
	x.deriveGameDay()
	s.selectedCube = core.NoCell
	s.protectedCube = core.NoCell
	s.protectedCube2 = core.NoCell
	s.whoseTurn = player
	setStartPlayer(s, x.players, player)
	x.acceptPlacement()
	s.selectedDice = -1
	return x.fire(states.Start)
}

func (s *state) doneAllowed() bool {
	if s.held.count > 0 {
		return false
	}
	switch {
	case s.phase.DoneAlways():
		return true
	case s.phase.IsCardScoring():
		return s.cardTradeCount != 0
	}
	return s.phase == states.PayCamel
}

func (x *executor) done() error {
	if !x.st.doneAllowed() {
		if x.st.held.count > 0 {
			return fmt.Errorf("%w: put down %s first", core.ErrAlreadyPicked, x.st.held.chip)
		}
		return fmt.Errorf("%w: nothing to confirm", core.ErrIllegalMove)
	}
	x.acceptPlacement()
	s := x.st
	ccundo := s.ccundo
	s.cardTradeCount = 0
	s.ccundo = noState
	if s.height(core.CardStackCell) == 0 {
		x.reshuffle()
	}

	switch s.phase {
	case states.PayCamel, states.PaidCamel:
		from := misc(s.whoseTurn, core.MiscCubes)
		if s.phase == states.PayCamel {
			from = s.selectedCube
		}
		if err := x.sendCubeToCaravan(from, false); err != nil {
			return err
		}
		s.selectedCube = core.NoCell
		s.whoseTurn = s.payCamelReturn
		s.payCamelReturn = -1
		return x.supervisorStop(s.supervisor)

	case states.DesignatedCube:
		cube, ok := s.top(s.selectedCube)
		if !ok {
			return fmt.Errorf("%w: no cube designated", core.ErrEmptyCell)
		}
		owner := int(cube.Color())
		if s.height(misc(owner, core.MiscCamels)) > 0 {
			s.payCamelReturn = s.whoseTurn
			s.whoseTurn = owner
			return x.fire(states.OwnerMayPay)
		}
		if err := x.sendCubeToCaravan(s.selectedCube, false); err != nil {
			return err
		}
		s.selectedCube = core.NoCell
		return x.supervisorStop(s.supervisor)

	case states.Roll:
		x.doRoll()
		s.resetState = states.Select
		s.resetDice = s.selectedDice
		return x.fire(states.Done)

	case states.ConfirmCard, states.CardTradeCamelsGold, states.CardScoreCamels, states.CardScoreGold:
		x.scoreCaravanIfFull()
		if ccundo == noState {
			return fmt.Errorf("%w: no state to return to", core.ErrIllegalMove)
		}
		s.resetState = ccundo
		s.resetDice = s.selectedDice
		return x.fire(states.Resume, int(ccundo))

	case states.Prebuild:
		x.scoreCaravanIfFull()
		s.protectedCube = core.NoCell
		s.protectedCube2 = core.NoCell
		return x.fire(states.Done)

	case states.Pass:
		x.rep.Info = "Pass"
		return x.fire(states.Done)

	case states.Confirm, states.Build:
		return x.endTurn()

	case states.Resign:
		x.decideWinners(s.whoseTurn)
		return x.fire(states.Done)
	}
	return fmt.Errorf("%w: done in %s", core.ErrIllegalMove, s.phase)
}

func (x *executor) endTurn() error {
	s := x.st
	x.scoreCaravanIfFull()
	s.pl[s.whoseTurn].paidCamelsByCard = false
	s.pl[s.whoseTurn].paidGoldByCard = false
	if s.selectedDice >= 0 {
		s.clear(core.TowerDiceCell(s.selectedDice))
		x.removeExtraDiceItems()
		s.selectedDice = -1
	}
	x.setNextPlayer()

	if s.whoseTurn == s.startPlayer {
		if s.gameDay%core.Days == 0 {
			x.scoreSouksEndOfWeek()
			x.scoreCaravan(false)
		}
		if s.gameDay >= core.LastDay {
			x.decideWinners(-1)
			return x.fire(states.EndTurn, int(states.Finished))
		}
		x.resetExtraDice()
		return x.fire(states.EndTurn, int(states.NewRound))
	}

	outcome := states.NextPass
	switch {
	case someDiceRemain(s):
		outcome = states.NextSelect
	case s.height(core.CardStackCell) > 0:
		outcome = states.NextTakeCard
	}
	if err := x.fire(states.EndTurn, int(outcome)); err != nil {
		return err
	}
	s.resetState = s.phase
	s.resetDice = -1
	return nil
}
