package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

// GameName is the first word of every initialization token.
const GameName = "Yspahan"

// noState marks an unset state field.
const noState states.State = -1

// InitSpec is a parsed initialization token.
type InitSpec struct {
	Seed     int64
	Players  int
	Revision int
}

// ParseInit reads "Yspahan <seed> <players> [revision]".
func ParseInit(token string) (InitSpec, error) {
	f := strings.Fields(token)
	if len(f) < 3 || len(f) > 4 || !strings.EqualFold(f[0], GameName) {
		return InitSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownInit, token)
	}
	seed, err := strconv.ParseInt(f[1], 10, 64)
	if err != nil {
		return InitSpec{}, fmt.Errorf("%w: bad seed %q", core.ErrUnknownInit, f[1])
	}
	players, err := strconv.Atoi(f[2])
	if err != nil || players < 2 || players > core.MaxPlayers {
		return InitSpec{}, fmt.Errorf("%w: bad player count %q", core.ErrUnknownInit, f[2])
	}
	spec := InitSpec{Seed: seed, Players: players}
	if len(f) == 4 {
		if spec.Revision, err = strconv.Atoi(f[3]); err != nil {
			return InitSpec{}, fmt.Errorf("%w: bad revision %q", core.ErrUnknownInit, f[3])
		}
	}
	return spec, nil
}

func (s InitSpec) String() string {
	if s.Revision != 0 {
		return fmt.Sprintf("%s %d %d %d", GameName, s.Seed, s.Players, s.Revision)
	}
	return fmt.Sprintf("%s %d %d", GameName, s.Seed, s.Players)
}

type playerState struct {
	buildNoCamels    int
	buildNoGold      int
	paidCamelsByCard bool
	paidGoldByCard   bool
	viewCardCount    int
	startPlayerIndex int
}

type holding struct {
	chip  core.Chip
	count int
}

// state is everything Execute mutates. A Board swaps in a new state only
// when a move succeeds.
type state struct {
	cells [][]core.Chip
	pl    [core.MaxPlayers]playerState

	phase     states.State
	unresign  states.State
	whoseTurn int

	startPlayer   int
	gameDay       int
	moveNumber    int
	lastTurn      []int
	lastTurnIndex int

	selectedDice   int
	selectedCube   core.CellID
	protectedCube  core.CellID
	protectedCube2 core.CellID
	supervisor     core.CellID
	nextSupervisor core.CellID

	ccundo         states.State
	resetState     states.State
	resetDice      int
	payCamelReturn int
	cardTradeCount int

	held  holding
	picks []core.CellID
	drops []core.CellID
	// trail holds the snapshot taken before each pick and drop of the
	// current placement, innermost last.
	trail []*state

	win []bool
}

func (s *state) clone() *state {
	c := *s
	c.cells = make([][]core.Chip, len(s.cells))
	for i, st := range s.cells {
		if len(st) > 0 {
			c.cells[i] = append([]core.Chip(nil), st...)
		}
	}
	c.lastTurn = append([]int(nil), s.lastTurn...)
	c.picks = append([]core.CellID(nil), s.picks...)
	c.drops = append([]core.CellID(nil), s.drops...)
	c.trail = append([]*state(nil), s.trail...)
	c.win = append([]bool(nil), s.win...)
	return &c
}

func (s *state) height(id core.CellID) int {
	if id < 0 || int(id) >= len(s.cells) {
		return 0
	}
	return len(s.cells[id])
}

func (s *state) top(id core.CellID) (core.Chip, bool) {
	if s.height(id) == 0 {
		return core.Chip{}, false
	}
	st := s.cells[id]
	return st[len(st)-1], true
}

func (s *state) push(id core.CellID, c core.Chip) { s.cells[id] = append(s.cells[id], c) }

func (s *state) pop(id core.CellID) core.Chip {
	st := s.cells[id]
	c := st[len(st)-1]
	s.cells[id] = st[:len(st)-1]
	return c
}

func (s *state) removeAt(id core.CellID, i int) core.Chip {
	st := s.cells[id]
	c := st[i]
	s.cells[id] = append(st[:i:i], st[i+1:]...)
	return c
}

func (s *state) clear(id core.CellID) { s.cells[id] = nil }

// Board is the authoritative state of one game. It is not safe for
// concurrent use; Clone gives an independent copy for lookahead.
type Board struct {
	init   InitSpec
	st     *state
	report Report
}

// NewBoard builds a board from an initialization token.
func NewBoard(token string) (*Board, error) {
	b := &Board{}
	if err := b.Reinit(token); err != nil {
		return nil, err
	}
	return b, nil
}

// Reinit resets the board to the start of a game. The token may differ from
// the one the board was built with.
func (b *Board) Reinit(token string) error {
	spec, err := ParseInit(token)
	if err != nil {
		return err
	}
	b.init = spec
	b.st = initialState(spec)
	b.report = Report{}
	return nil
}

func initialState(spec InitSpec) *state {
	s := &state{
		cells:          make([][]core.Chip, core.NumCells),
		phase:          states.Puzzle,
		unresign:       noState,
		selectedDice:   -1,
		selectedCube:   core.NoCell,
		protectedCube:  core.NoCell,
		protectedCube2: core.NoCell,
		supervisor:     core.TrackCell(core.Hub),
		nextSupervisor: core.NoCell,
		ccundo:         noState,
		resetState:     states.Select,
		resetDice:      -1,
		payCamelReturn: -1,
		lastTurnIndex:  -1,
		moveNumber:     1,
		win:            make([]bool, spec.Players),
	}
	s.push(s.supervisor, core.Supervisor)
	for i := 0; i < core.PoolSize; i++ {
		s.push(core.GoldPoolCell, core.Gold)
		s.push(core.CamelPoolCell, core.Camel)
	}
	s.push(core.DayCell(0), core.TimeMarker)
	s.push(core.WeekCell(0), core.TimeMarker)

	for k := core.Card3Camels; k < core.NumCardKinds; k++ {
		s.push(core.CardStackCell, core.Card(k))
		s.push(core.CardStackCell, core.Card(k))
	}
	deck := s.cells[core.CardStackCell]
	random.New(spec.Seed).Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for p := 0; p < spec.Players; p++ {
		for i := 0; i < core.StartingGold; i++ {
			s.push(core.MiscCell(p, core.MiscGold), core.Gold)
		}
		for i := 0; i < core.StartingCubes; i++ {
			s.push(core.MiscCell(p, core.MiscCubes), core.Cube(core.Color(p)))
		}
	}
	for i := 0; i < core.NumWhiteDice; i++ {
		s.push(core.TableCell(i), core.Die(i%6+1, false))
	}
	for i := 0; i < core.NumExtraDice; i++ {
		s.push(core.ExtraDieCell(i), core.Die(i%6+2, true))
	}
	setStartPlayer(s, spec.Players, 0)
	return s
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{init: b.init, st: b.st.clone(), report: b.report}
}

// Token is the canonical initialization token.
func (b *Board) Token() string { return b.init.String() }

func (b *Board) Seed() int64  { return b.init.Seed }
func (b *Board) Players() int { return b.init.Players }

func (b *Board) State() states.State { return b.st.phase }
func (b *Board) WhoseTurn() int      { return b.st.whoseTurn }
func (b *Board) StartPlayer() int    { return b.st.startPlayer }
func (b *Board) GameDay() int        { return b.st.gameDay }
func (b *Board) MoveNumber() int     { return b.st.moveNumber }

// Report describes the effects of the last successful Execute.
func (b *Board) Report() Report { return b.report }

// Chips returns a copy of the stack on a cell, bottom first.
func (b *Board) Chips(id core.CellID) []core.Chip {
	return append([]core.Chip(nil), b.st.cells[id]...)
}

func (b *Board) Height(id core.CellID) int { return b.st.height(id) }

func (b *Board) Top(id core.CellID) (core.Chip, bool) { return b.st.top(id) }

// Held reports the object in hand, if any.
func (b *Board) Held() (core.Chip, int, bool) {
	return b.st.held.chip, b.st.held.count, b.st.held.count > 0
}

// PickedFrom is the source of the object in hand, or NoCell.
func (b *Board) PickedFrom() core.CellID {
	if b.st.held.count == 0 || len(b.st.picks) == 0 {
		return core.NoCell
	}
	return b.st.picks[len(b.st.picks)-1]
}

// Supervisor is where the supervisor stands, counting an uncommitted move.
func (b *Board) Supervisor() core.CellID {
	if b.st.nextSupervisor != core.NoCell {
		return b.st.nextSupervisor
	}
	return b.st.supervisor
}

// SelectedRow is the dice tower row chosen this turn, or -1.
func (b *Board) SelectedRow() int { return b.st.selectedDice }

func (b *Board) SelectedCube() core.CellID { return b.st.selectedCube }

func (b *Board) Gold(p int) int   { return b.st.height(core.MiscCell(p, core.MiscGold)) }
func (b *Board) Camels(p int) int { return b.st.height(core.MiscCell(p, core.MiscCamels)) }
func (b *Board) Cubes(p int) int  { return b.st.height(core.MiscCell(p, core.MiscCubes)) }
func (b *Board) VP(p int) int     { return b.st.height(core.MiscCell(p, core.MiscPoints)) }

// Cards lists player p's hand, bottom first.
func (b *Board) Cards(p int) []core.CardKind {
	st := b.st.cells[core.MiscCell(p, core.MiscCards)]
	out := make([]core.CardKind, len(st))
	for i, c := range st {
		out[i] = c.CardKind()
	}
	return out
}

// HasCard reports whether player p holds a card of kind k.
func (b *Board) HasCard(p int, k core.CardKind) bool {
	for _, c := range b.st.cells[core.MiscCell(p, core.MiscCards)] {
		if c.CardKind() == k {
			return true
		}
	}
	return false
}

func (b *Board) Owns(p int, bld core.Building) bool { return owns(b.st, p, bld) }

func owns(s *state, p int, bld core.Building) bool {
	return s.height(core.BuildingCell(p, bld)) > 0
}

// BuildingsOwned counts player p's buildings.
func (b *Board) BuildingsOwned(p int) int { return buildingsOwned(b.st, p) }

func buildingsOwned(s *state, p int) int {
	n := 0
	for bld := core.Building(0); bld < core.NumBuildings; bld++ {
		if owns(s, p, bld) {
			n++
		}
	}
	return n
}

// BuildCredits are the outstanding build-without-camels and
// build-without-gold card credits of player p.
func (b *Board) BuildCredits(p int) (camels, gold int) {
	return b.st.pl[p].buildNoCamels, b.st.pl[p].buildNoGold
}

func (b *Board) ViewCardCount(p int) int { return b.st.pl[p].viewCardCount }

// CardsLeft is the height of the draw pile.
func (b *Board) CardsLeft() int { return b.st.height(core.CardStackCell) }

// CaravanLen is the number of active caravan cells.
func (b *Board) CaravanLen() int { return core.CaravanLen(b.init.Players) }

// Scores are the victory points of every player.
func (b *Board) Scores() []int {
	out := make([]int, b.init.Players)
	for p := range out {
		out[p] = b.VP(p)
	}
	return out
}

// Winners lists the winning players once the game is over.
func (b *Board) Winners() []int {
	var out []int
	for p, w := range b.st.win {
		if w {
			out = append(out, p)
		}
	}
	return out
}

// GameOver reports whether the game has ended.
func (b *Board) GameOver() bool { return b.st.phase.IsTerminal() }

// TakeCount is how many chips a pick from the gold or camel pool lifts.
func (b *Board) TakeCount(pool core.CellID) int {
	if pool == core.GoldPoolCell {
		return takeGoldCount(b.st)
	}
	return takeCamelCount(b.st)
}

func setStartPlayer(s *state, players, n int) {
	s.startPlayer = n
	for i := 0; i < players; i++ {
		s.pl[(i+n)%players].startPlayerIndex = i
	}
}
