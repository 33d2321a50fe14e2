// Package strategy implements the rule-based robot. A Core reads a
// PlayData snapshot of the board, walks the stages of a Variant and plans
// the moves of one decision on a private copy of the board, so every move it
// proposes has already executed once.
package strategy

import (
	"sort"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

// NumRegions is the number of neighborhoods. Region r is filled from dice
// row r+1.
const NumRegions = 4

// Group is one souk seen as a capacity-limited group of houses.
type Group struct {
	Region int
	Souk   int
	Houses []core.CellID
	// Used marks the occupied houses.
	Used     []bool
	Filled   int
	Capacity int
	// Owner is the player whose cubes sit in the souk, or -1.
	Owner int
	Value int
}

func (g Group) Full() bool     { return g.Filled >= g.Capacity }
func (g Group) Remaining() int { return g.Capacity - g.Filled }

// PlayData is a read-only snapshot of everything the robot looks at.
type PlayData struct {
	Player  int
	Players int

	// Day is the game day, 0 based. Week and DayInWeek are 1 based.
	Day         int
	Week        int
	DayInWeek   int
	StartPlayer int

	Gold      []int
	Camels    []int
	Cubes     []int
	VP        []int
	Cards     [][]core.CardKind
	Buildings [][core.NumBuildings]bool
	// Credits are the unspent buy-without-camels and buy-without-gold cards.
	CamelCredits []int
	GoldCredits  []int

	// Dice is the number of dice in each tower row, Faces their value.
	Dice  [core.NumRows]int
	Faces [core.NumRows]int
	// SelectedRow is the row already chosen this turn, or -1.
	SelectedRow int

	// Regions holds the souks of each neighborhood, smallest first.
	Regions [NumRegions][]Group

	Supervisor int
	Caravan    []int
	CardsLeft  int
}

// NewPlayData captures b from the point of view of player.
func NewPlayData(b *game.Board, player int) *PlayData {
	n := b.Players()
	d := &PlayData{
		Player:       player,
		Players:      n,
		Day:          b.GameDay(),
		Week:         b.GameDay()/core.Days + 1,
		DayInWeek:    b.GameDay()%core.Days + 1,
		StartPlayer:  b.StartPlayer(),
		Gold:         make([]int, n),
		Camels:       make([]int, n),
		Cubes:        make([]int, n),
		VP:           make([]int, n),
		Cards:        make([][]core.CardKind, n),
		Buildings:    make([][core.NumBuildings]bool, n),
		CamelCredits: make([]int, n),
		GoldCredits:  make([]int, n),
		SelectedRow:  b.SelectedRow(),
		Supervisor:   core.TrackPos(b.Supervisor()),
		CardsLeft:    b.CardsLeft(),
	}
	for p := 0; p < n; p++ {
		d.Gold[p] = b.Gold(p)
		d.Camels[p] = b.Camels(p)
		d.Cubes[p] = b.Cubes(p)
		d.VP[p] = b.VP(p)
		d.Cards[p] = b.Cards(p)
		for bld := core.Building(0); bld < core.NumBuildings; bld++ {
			d.Buildings[p][bld] = b.Owns(p, bld)
		}
		d.CamelCredits[p], d.GoldCredits[p] = b.BuildCredits(p)
	}
	for r := 0; r < core.NumRows; r++ {
		d.Dice[r] = b.Height(core.TowerDiceCell(r))
		if die, ok := b.Top(core.TowerDiceCell(r)); ok {
			d.Faces[r] = die.Face()
		}
	}
	for region := 0; region < NumRegions; region++ {
		for _, si := range core.SouksIn(core.RowRack[region+1]) {
			g := Group{
				Region:   region,
				Souk:     si,
				Houses:   core.SoukCells(si),
				Capacity: core.Souks[si].Houses(),
				Owner:    -1,
				Value:    core.Souks[si].Value,
			}
			g.Used = make([]bool, g.Capacity)
			for h, id := range g.Houses {
				if cube, ok := b.Top(id); ok {
					g.Used[h] = true
					g.Filled++
					g.Owner = int(cube.Color())
				}
			}
			d.Regions[region] = append(d.Regions[region], g)
		}
		sort.SliceStable(d.Regions[region], func(i, j int) bool {
			return d.Regions[region][i].Capacity < d.Regions[region][j].Capacity
		})
	}
	d.Caravan = make([]int, b.CaravanLen())
	for i := range d.Caravan {
		d.Caravan[i] = -1
		if cube, ok := b.Top(core.CaravanCell(i)); ok {
			d.Caravan[i] = int(cube.Color())
		}
	}
	return d
}

// Round is the 1 based day of the game.
func (d *PlayData) Round() int { return d.Day + 1 }

func (d *PlayData) LastRound() bool { return d.Round() >= core.LastDay }

func (d *PlayData) Has(p int, bld core.Building) bool { return d.Buildings[p][bld] }

// DiceCount is what the dice of row are worth to player p, counting the
// bonus of the matching building.
func (d *PlayData) DiceCount(p, row int) int {
	n := d.Dice[row]
	if n == 0 {
		return 0
	}
	switch row {
	case core.RowCamels:
		if d.Has(p, core.ExtraCamel) {
			n++
		}
	case core.RowGold:
		if d.Has(p, core.ExtraGold) {
			n += 2
		}
	default:
		if d.Has(p, core.ExtraCube) {
			n++
		}
	}
	return n
}

// CardIndex returns the position of card k in p's hand, or -1.
func (d *PlayData) CardIndex(p int, k core.CardKind) int {
	for i, c := range d.Cards[p] {
		if c == k {
			return i
		}
	}
	return -1
}

func (d *PlayData) HasCard(p int, k core.CardKind) bool { return d.CardIndex(p, k) >= 0 }

func (d *PlayData) CountCard(p int, k core.CardKind) int {
	n := 0
	for _, c := range d.Cards[p] {
		if c == k {
			n++
		}
	}
	return n
}

// GroupValue is what completing g is worth to p at the end of the week.
func (d *PlayData) GroupValue(p int, g Group) int {
	if d.Has(p, core.ExtraPoints) {
		return g.Value + 2
	}
	return g.Value
}

// GroupStarted returns the smallest unfinished group p has cubes in, or -1.
func (d *PlayData) GroupStarted(p, region int) int {
	for i, g := range d.Regions[region] {
		if g.Owner == p && !g.Full() {
			return i
		}
	}
	return -1
}

// HasEmptyGroup reports whether region still has an untouched souk.
func (d *PlayData) HasEmptyGroup(region int) bool {
	for _, g := range d.Regions[region] {
		if g.Owner < 0 && g.Capacity > 0 {
			return true
		}
	}
	return false
}

// RegionUsable reports whether p can place a cube in region.
func (d *PlayData) RegionUsable(p, region int) bool {
	return d.HasEmptyGroup(region) || d.GroupStarted(p, region) >= 0
}

// SmallestEmptyGroup returns the first untouched group of region, or -1.
func (d *PlayData) SmallestEmptyGroup(region int) int {
	for i, g := range d.Regions[region] {
		if g.Owner < 0 && g.Capacity > 0 {
			return i
		}
	}
	return -1
}

// GroupOf finds the group holding house id.
func (d *PlayData) GroupOf(id core.CellID) (Group, bool) {
	si := core.Spec(id).Souk
	if si < 0 {
		return Group{}, false
	}
	for _, g := range d.Regions[core.RowForRack(core.Souks[si].Rack)-1] {
		if g.Souk == si {
			return g, true
		}
	}
	return Group{}, false
}

// CaravanFactor is the multiplier p's highest caravan cube earns, 0 when p
// has none there.
func (d *PlayData) CaravanFactor(p int) int {
	level := 0
	for i, owner := range d.Caravan {
		if owner == p {
			level = core.CaravanFactor(i, len(d.Caravan))
		}
	}
	return level
}

// CaravanCubes counts p's cubes in the caravan.
func (d *PlayData) CaravanCubes(p int) int {
	n := 0
	for _, owner := range d.Caravan {
		if owner == p {
			n++
		}
	}
	return n
}

// CaravanOpen counts the free caravan cells.
func (d *PlayData) CaravanOpen() int { return d.CaravanCubes(-1) }

func (d *PlayData) BuildingsOwned(p int) int {
	n := 0
	for _, has := range d.Buildings[p] {
		if has {
			n++
		}
	}
	return n
}

// MissingBuilding returns the first building p lacks.
func (d *PlayData) MissingBuilding(p int) (core.Building, bool) {
	for bld := core.Building(0); bld < core.NumBuildings; bld++ {
		if !d.Has(p, bld) {
			return bld, true
		}
	}
	return 0, false
}

// OpponentsToMove lists the players who still act this round after the
// player the snapshot was taken for. On the last day of a four player game
// every opponent ahead on points counts.
func (d *PlayData) OpponentsToMove() []bool {
	opp := make([]bool, d.Players)
	if d.LastRound() && d.Players == 4 {
		for q := 0; q < d.Players; q++ {
			opp[q] = q != d.Player && d.VP[q] > d.VP[d.Player]
		}
		return opp
	}
	for i := 1; i < d.Players; i++ {
		q := (d.Player + i) % d.Players
		if q == d.StartPlayer {
			break
		}
		opp[q] = true
	}
	return opp
}
