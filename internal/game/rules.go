package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

// pools are topped up so this many chips remain after a large take
const poolReserve = 5

func misc(p, row int) core.CellID { return core.MiscCell(p, row) }

func towerCardBonus(s *state) int {
	if s.selectedDice < 0 {
		return 0
	}
	return s.height(core.TowerCardCell(s.selectedDice))
}

func takeGoldCount(s *state) int {
	if s.selectedDice != core.RowGold || s.phase == states.CardTradeCamelsGold {
		return 1
	}
	n := s.height(core.TowerDiceCell(s.selectedDice)) + towerCardBonus(s)
	if owns(s, s.whoseTurn, core.ExtraGold) {
		n += 2
	}
	return n
}

func takeCamelCount(s *state) int {
	if s.selectedDice != core.RowCamels || s.phase == states.CardTradeCamelsGold {
		return 1
	}
	n := s.height(core.TowerDiceCell(s.selectedDice)) + towerCardBonus(s)
	if owns(s, s.whoseTurn, core.ExtraCamel) {
		n++
	}
	return n
}

func cubePlacementCount(s *state) int {
	if s.selectedDice < 0 {
		return 1
	}
	n := s.height(core.TowerDiceCell(s.selectedDice)) + towerCardBonus(s)
	if owns(s, s.whoseTurn, core.ExtraCube) {
		n++
	}
	return n
}

// supervisorRange is the number of steps the supervisor may take with the
// selected dice, widened by paid gold and the movement building.
func supervisorRange(s *state) (min, max int) {
	if s.selectedDice < 0 {
		return 0, 0
	}
	die, ok := s.top(core.TowerDiceCell(s.selectedDice))
	if !ok {
		return 0, 0
	}
	extra := s.height(core.TowerGoldCell(s.selectedDice))
	if owns(s, s.whoseTurn, core.ExtraMovement) {
		extra += 3
	}
	min = die.Face() - extra
	if min < 0 {
		min = 0
	}
	return min, die.Face() + extra
}

// movingSupervisorZero reports whether putting the supervisor back where it
// stood counts as a move rather than a cancelled pick.
func movingSupervisorZero(s *state, c core.CellID) bool {
	if s.phase != states.MoveSupervisor || c != s.supervisor {
		return false
	}
	min, _ := supervisorRange(s)
	return min <= 0
}

func supervisorDests(s *state) map[core.CellID]bool {
	out := make(map[core.CellID]bool)
	if s.selectedDice < 0 {
		return out
	}
	min, max := supervisorRange(s)
	for p := range core.SupervisorDests(core.TrackPos(s.supervisor), min, max) {
		out[core.TrackCell(p)] = true
	}
	return out
}

// adjacentCubes lists the unprotected occupied houses next to a track cell.
func adjacentCubes(s *state, track core.CellID) []core.CellID {
	var out []core.CellID
	for _, h := range core.AdjacentHouses(track) {
		if h == s.protectedCube || h == s.protectedCube2 || s.height(h) == 0 {
			continue
		}
		out = append(out, h)
	}
	return out
}

// neighborhoodDests are the empty houses a cube may go to. A souk the
// player has started must be finished first; souks held by others are
// closed.
func neighborhoodDests(s *state) map[core.CellID]bool {
	out := make(map[core.CellID]bool)
	switch {
	case s.phase == states.CardPlaceCubeSouk:
		for r := core.BagNeighborhood; r <= core.VaseNeighborhood; r++ {
			addNeighborhoodDests(s, r, out)
		}
	case s.selectedDice > core.RowCamels && s.selectedDice < core.RowGold:
		addNeighborhoodDests(s, core.RowRack[s.selectedDice], out)
	}
	return out
}

func addNeighborhoodDests(s *state, r core.Rack, out map[core.CellID]bool) {
	mine := core.Cube(core.Color(s.whoseTurn))
	var open, started, taken []int
	for _, si := range core.SouksIn(r) {
		var hasEmpty, hasMine, hasOther bool
		for _, h := range core.SoukCells(si) {
			c, ok := s.top(h)
			switch {
			case !ok:
				hasEmpty = true
			case c == mine:
				hasMine = true
			default:
				hasOther = true
			}
		}
		if hasEmpty {
			open = append(open, si)
			if hasMine {
				started = append(started, si)
			}
		}
		if hasOther {
			taken = append(taken, si)
		}
	}
	allowed := open
	if len(started) > 0 {
		allowed = started
	}
	for _, si := range allowed {
		if len(started) == 0 && containsInt(taken, si) {
			continue
		}
		for _, h := range core.SoukCells(si) {
			if s.height(h) == 0 {
				out[h] = true
			}
		}
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func buildingDests(s *state) map[core.CellID]bool {
	out := make(map[core.CellID]bool)
	p := s.whoseTurn
	pl := s.pl[p]
	for bld := core.Building(0); bld < core.NumBuildings; bld++ {
		id := core.BuildingCell(p, bld)
		if s.height(id) > 0 {
			continue
		}
		cost := core.BuildingCosts[bld]
		if (pl.buildNoCamels > 0 || s.height(misc(p, core.MiscCamels)) >= cost.Camels) &&
			(pl.buildNoGold > 0 || s.height(misc(p, core.MiscGold)) >= cost.Gold) {
			out[id] = true
		}
	}
	return out
}

func someDiceRemain(s *state) bool {
	for r := 0; r < core.NumRows; r++ {
		if s.height(core.TowerDiceCell(r)) > 0 {
			return true
		}
	}
	return false
}

func (x *executor) moveChips(from, to core.CellID, n int) error {
	for ; n > 0; n-- {
		if x.st.height(from) == 0 {
			return fmt.Errorf("%w: %s", core.ErrEmptyCell, core.Spec(from).Loc)
		}
		x.st.push(to, x.st.pop(from))
		x.animate(from, to)
	}
	return nil
}

func (x *executor) topUp(pool core.CellID, need int) {
	chip := core.Gold
	if pool == core.CamelPoolCell {
		chip = core.Camel
	}
	for x.st.height(pool)-poolReserve < need {
		x.st.push(pool, chip)
	}
}

func (x *executor) addVP(p, n int) {
	id := misc(p, core.MiscPoints)
	for ; n > 0; n-- {
		x.st.push(id, core.Point)
	}
}

// spendGold pays gold to the pool, or refunds it when amount is negative.
func (x *executor) spendGold(p, amount int) error {
	own := misc(p, core.MiscGold)
	if amount >= 0 {
		if x.st.height(own) < amount {
			return fmt.Errorf("%w: %s has %d gold, needs %d", core.ErrIllegalMove, core.Color(p), x.st.height(own), amount)
		}
		return x.moveChips(own, core.GoldPoolCell, amount)
	}
	x.topUp(core.GoldPoolCell, -amount)
	return x.moveChips(core.GoldPoolCell, own, -amount)
}

func (x *executor) spendCamels(p, amount int) error {
	own := misc(p, core.MiscCamels)
	if x.st.height(own) < amount {
		return fmt.Errorf("%w: %s has %d camels, needs %d", core.ErrIllegalMove, core.Color(p), x.st.height(own), amount)
	}
	return x.moveChips(own, core.CamelPoolCell, amount)
}

// payForBuilding spends credits before resources, then awards the bonus
// for the number of buildings now owned.
func (x *executor) payForBuilding(bld core.Building) error {
	p := x.st.whoseTurn
	pl := &x.st.pl[p]
	cost := core.BuildingCosts[bld]
	if cost.Camels > 0 {
		if pl.buildNoCamels > 0 {
			pl.buildNoCamels--
			pl.paidCamelsByCard = true
		} else if err := x.spendCamels(p, cost.Camels); err != nil {
			return err
		}
	}
	if cost.Gold > 0 {
		if pl.buildNoGold > 0 {
			pl.buildNoGold--
			pl.paidGoldByCard = true
		} else if err := x.spendGold(p, cost.Gold); err != nil {
			return err
		}
	}
	x.addVP(p, core.BuildingBonus[buildingsOwned(x.st, p)])
	return nil
}

func (x *executor) caravanLen() int { return core.CaravanLen(x.players) }

func (x *executor) caravanFull() bool {
	return x.st.height(core.CaravanCell(x.caravanLen()-1)) > 0
}

// sendCubeToCaravan moves the top cube of from to the first free caravan
// cell and pays its owner.
func (x *executor) sendCubeToCaravan(from core.CellID, usingCard bool) error {
	x.scoreCaravanIfFull()
	n := x.caravanLen()
	dest := core.NoCell
	for i := 0; i < n; i++ {
		if x.st.height(core.CaravanCell(i)) == 0 {
			dest = core.CaravanCell(i)
			break
		}
	}
	if spec := core.Spec(from); spec.Loc.Rack == core.MiscTrack && x.st.height(from) == 0 {
		x.st.push(from, core.Cube(core.Color(spec.Player)))
	}
	cube, ok := x.st.top(from)
	if !ok {
		return fmt.Errorf("%w: no cube at %s", core.ErrEmptyCell, core.Spec(from).Loc)
	}
	if err := x.moveChips(from, dest, 1); err != nil {
		return err
	}
	owner := int(cube.Color())
	x.addVP(owner, core.CaravanImmediateVP(core.Spec(dest).Loc.Row, n))
	if owns(x.st, owner, core.ExtraCard) && !usingCard && x.st.height(core.CardStackCell) > 0 {
		if err := x.moveChips(core.CardStackCell, misc(owner, core.MiscCards), 1); err != nil {
			return err
		}
	}
	pile := misc(owner, core.MiscCubes)
	if x.st.height(pile) == 0 {
		x.st.push(pile, cube)
	}
	return nil
}

func (x *executor) scoreCaravanIfFull() {
	if x.caravanFull() {
		x.scoreCaravan(true)
	}
}

// scoreCaravan pays each player their highest third times their cube
// count. A full caravan is emptied back to the players.
func (x *executor) scoreCaravan(empty bool) {
	n := x.caravanLen()
	points := make([]int, x.players)
	for p := 0; p < x.players; p++ {
		mine := core.Cube(core.Color(p))
		count, highest := 0, -1
		for i := 0; i < n; i++ {
			if c, ok := x.st.top(core.CaravanCell(i)); ok && c == mine {
				count++
				highest = i
			}
		}
		if count > 0 {
			points[p] = core.CaravanFactor(highest, n) * count
			x.addVP(p, points[p])
		}
	}
	if empty {
		for i := 0; i < n; i++ {
			id := core.CaravanCell(i)
			if c, ok := x.st.top(id); ok {
				x.st.pop(id)
				home := misc(int(c.Color()), core.MiscCubes)
				x.st.push(home, c)
				x.animate(id, home)
			}
		}
	}
	x.rep.Caravans = append(x.rep.Caravans, CaravanScore{Points: points, Emptied: empty})
}

// soukScore is what player p earns for the souks they completed.
func soukScore(s *state, p int) int {
	mine := core.Cube(core.Color(p))
	extra := 0
	if owns(s, p, core.ExtraPoints) {
		extra = 2
	}
	score := 0
	for si, souk := range core.Souks {
		full := true
		for _, h := range core.SoukCells(si) {
			if s.height(h) == 0 {
				full = false
				break
			}
		}
		if c, ok := s.top(core.SoukCell(si, 0)); full && ok && c == mine {
			score += souk.Value + extra
		}
	}
	return score
}

func (x *executor) scoreSouksEndOfWeek() {
	points := make([]int, x.players)
	for p := range points {
		points[p] = soukScore(x.st, p)
		x.addVP(p, points[p])
	}
	x.rep.Weeks = append(x.rep.Weeks, WeekScore{Week: x.st.gameDay / core.Days, Points: points})
	x.clearSouks()
}

// clearSouks returns the supervisor to the hub and every cube home.
func (x *executor) clearSouks() {
	hub := core.TrackCell(core.Hub)
	if x.st.supervisor != hub {
		x.st.push(hub, x.st.pop(x.st.supervisor))
		x.st.supervisor = hub
	}
	for si := range core.Souks {
		for _, h := range core.SoukCells(si) {
			if c, ok := x.st.top(h); ok {
				x.st.pop(h)
				home := misc(int(c.Color()), core.MiscCubes)
				x.st.push(home, c)
				x.animate(h, home)
			}
		}
	}
}

func (x *executor) setGameDay(day int) {
	s := x.st
	s.clear(core.DayCell(s.gameDay % core.Days))
	s.clear(core.WeekCell(s.gameDay / core.Days))
	s.push(core.DayCell(day%core.Days), core.TimeMarker)
	s.push(core.WeekCell(day/core.Days), core.TimeMarker)
	s.gameDay = day
}

// deriveGameDay reads the day back from the time markers.
func (x *executor) deriveGameDay() {
	day, week := 0, 0
	for d := 0; d < core.Days; d++ {
		if x.st.height(core.DayCell(d)) > 0 {
			day = d
		}
	}
	for w := 0; w < core.WeekCells; w++ {
		if x.st.height(core.WeekCell(w)) > 0 {
			week = w
		}
	}
	x.st.gameDay = week*core.Days + day
}

// lastTurnOrder puts the lowest score first for the final day of a four
// player game. Ties go to the later seat in the round.
func (x *executor) lastTurnOrder() {
	s := x.st
	order := make([]int, x.players)
	for i := range order {
		order[i] = i
	}
	vp := func(p int) int { return s.height(misc(p, core.MiscPoints)) }
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			swap := vp(a) > vp(b) || (vp(a) == vp(b) && s.pl[a].startPlayerIndex < s.pl[b].startPlayerIndex)
			if !swap {
				break
			}
			order[j-1], order[j] = b, a
		}
	}
	setStartPlayer(s, x.players, order[0])
	s.lastTurn = order
	s.lastTurnIndex = 0
	s.whoseTurn = s.startPlayer
}

func (x *executor) setNextPlayer() {
	s := x.st
	s.moveNumber++
	if s.lastTurn != nil {
		s.lastTurnIndex = (s.lastTurnIndex + 1) % len(s.lastTurn)
		s.whoseTurn = s.lastTurn[s.lastTurnIndex]
		if s.lastTurnIndex == 0 {
			s.lastTurn = nil
		}
	} else {
		s.whoseTurn = (s.whoseTurn + 1) % x.players
	}
	if s.whoseTurn != s.startPlayer {
		return
	}
	x.setGameDay(s.gameDay + 1)
	if s.gameDay == core.LastDay-1 && x.players == 4 {
		x.lastTurnOrder()
		return
	}
	setStartPlayer(s, x.players, (s.startPlayer+1)%x.players)
	s.whoseTurn = s.startPlayer
}

// reshuffle turns the discards into a new draw pile. The reshuffled cards
// are also recorded in order on the second discard row.
func (x *executor) reshuffle() {
	s := x.st
	h := s.height(core.DiscardCell)
	if h == 0 {
		return
	}
	for ; h > 0; h-- {
		c := s.pop(core.DiscardCell)
		s.push(core.CardStackCell, c)
		s.push(core.ReshuffleCell, c)
	}
	deck := s.cells[core.CardStackCell]
	random.New(x.seed+int64(s.gameDay)+5424).Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// doRoll rolls the table dice and sorts them into the tower. The lowest
// face takes camels, the highest gold, and the faces between fill the
// neighborhoods in order.
func (x *executor) doRoll() {
	s := x.st
	r := random.New(x.seed + int64(s.gameDay)*10 + 1)
	var byFace [6][]core.Chip
	for i := 0; i < core.NumTableDice; i++ {
		id := core.TableCell(i)
		if d, ok := s.top(id); ok {
			nd := core.Die(r.RollDie(), d.Yellow())
			s.cells[id][len(s.cells[id])-1] = nd
			byFace[nd.Face()-1] = append(byFace[nd.Face()-1], nd)
		}
	}
	for row := 0; row < core.NumRows; row++ {
		s.clear(core.TowerDiceCell(row))
	}
	lowest, highest := 0, 5
	for lowest < 6 && len(byFace[lowest]) == 0 {
		lowest++
	}
	for highest >= 0 && len(byFace[highest]) == 0 {
		highest--
	}
	if lowest > highest {
		return
	}
	fill := func(row, face int) {
		s.cells[core.TowerDiceCell(row)] = append([]core.Chip(nil), byFace[face]...)
	}
	fill(core.RowCamels, lowest)
	if lowest < highest {
		fill(core.RowGold, highest)
	}
	lowest++
	for row := core.RowBag; row <= core.RowVase; row++ {
		for lowest < highest && len(byFace[lowest]) == 0 {
			lowest++
		}
		if lowest < highest {
			fill(row, lowest)
			lowest++
		}
	}

	var sb strings.Builder
	sb.WriteString("Roll: ")
	roll := &RollSummary{Day: s.gameDay}
	for row := 0; row < core.NumRows; row++ {
		h := s.height(core.TowerDiceCell(row))
		roll.Rows[row] = h
		if d, ok := s.top(core.TowerDiceCell(row)); ok {
			roll.Faces[row] = d.Face()
		}
		if h > 0 {
			fmt.Fprintf(&sb, "%d %s,", h, core.RowNames[row])
		}
	}
	roll.Summary = sb.String()
	x.rep.Roll = roll
	x.rep.Info = roll.Summary
}

// removeExtraDiceItems clears the yellow dice and the payments from the
// tower at the end of a turn.
func (x *executor) removeExtraDiceItems() {
	s := x.st
	for row := 0; row < core.NumRows; row++ {
		id := core.TowerDiceCell(row)
		for {
			d, ok := s.top(id)
			if !ok || !d.Yellow() {
				break
			}
			s.pop(id)
		}
		for s.height(core.TowerGoldCell(row)) > 0 {
			s.push(core.GoldPoolCell, s.pop(core.TowerGoldCell(row)))
		}
		for s.height(core.TowerCardCell(row)) > 0 {
			s.push(core.DiscardCell, s.pop(core.TowerCardCell(row)))
		}
	}
}

// resetExtraDice moves bought yellow dice back to the reserve.
func (x *executor) resetExtraDice() {
	s := x.st
	to := 0
	for i := core.NumWhiteDice; i < core.NumTableDice; i++ {
		id := core.TableCell(i)
		if d, ok := s.top(id); ok {
			for s.height(core.ExtraDieCell(to)) > 0 {
				to++
			}
			s.pop(id)
			s.push(core.ExtraDieCell(to), d)
		}
	}
}

// decideWinners marks every player with the top score, skipping a
// resigning player.
func (x *executor) decideWinners(loser int) {
	best := -1
	for p := 0; p < x.players; p++ {
		if p != loser && x.st.height(misc(p, core.MiscPoints)) > best {
			best = x.st.height(misc(p, core.MiscPoints))
		}
	}
	for p := 0; p < x.players; p++ {
		x.st.win[p] = p != loser && x.st.height(misc(p, core.MiscPoints)) == best
	}
}
