package core

import "fmt"

// CellID indexes a cell in the board arena. The layout is fixed for the
// life of the process and the id order is also the digest order.
type CellID int

// NoCell is the zero location.
const NoCell CellID = -1

// CellSpec is the static description of one cell.
type CellSpec struct {
	ID         CellID
	Loc        Location
	Class      Class
	Stackable  bool
	Digestable bool
	// Player owns the cell on a player board, or -1.
	Player int
	// Souk indexes Souks for neighborhood cells, or -1.
	Souk int
}

// Fixed arena offsets.
var (
	TrackBase     CellID
	SoukBase      []CellID // first house of each souk
	DayBase       CellID
	WeekBase      CellID
	TowerBase     CellID
	TableBase     CellID // 12 roll slots then NumExtraDice reserve slots
	CaravanBase   CellID
	BuildingBase  CellID
	MiscBase      CellID
	GoldPoolCell  CellID
	CamelPoolCell CellID
	CardStackCell CellID
	DiscardCell   CellID
	ReshuffleCell CellID
	NumCells      int
)

var (
	cellSpecs   []CellSpec
	byLoc       map[Location]CellID
	trackHouses [][]CellID
)

func init() {
	add := func(loc Location, cl Class, stackable, digestable bool, player, souk int) CellID {
		id := CellID(len(cellSpecs))
		cellSpecs = append(cellSpecs, CellSpec{
			ID: id, Loc: loc, Class: cl, Stackable: stackable,
			Digestable: digestable, Player: player, Souk: souk,
		})
		return id
	}

	TrackBase = CellID(len(cellSpecs))
	for p := 0; p < TrackCells; p++ {
		// the alias slot is kept so track ids stay TrackBase+position
		add(Location{SupervisorTrack, '@', p}, ClassSupervisor, false, p != HubAlias, -1, -1)
	}
	for si, s := range Souks {
		SoukBase = append(SoukBase, CellID(len(cellSpecs)))
		for h := range s.Links {
			add(Location{s.Rack, s.Letter, h}, ClassCubes, false, true, -1, si)
		}
	}
	DayBase = CellID(len(cellSpecs))
	for d := 0; d < Days; d++ {
		add(Location{TimeTrack, 'A', d}, ClassTime, false, true, -1, -1)
	}
	WeekBase = CellID(len(cellSpecs))
	for w := 0; w < WeekCells; w++ {
		add(Location{TimeTrack, 'B', w}, ClassTime, false, true, -1, -1)
	}
	TowerBase = CellID(len(cellSpecs))
	for r := 0; r < NumRows; r++ {
		add(Location{DiceTower, TowerDice, r}, ClassDice, true, true, -1, -1)
		add(Location{DiceTower, TowerGold, r}, ClassGold, true, true, -1, -1)
		add(Location{DiceTower, TowerCard, r}, ClassCards, false, true, -1, -1)
	}
	TableBase = CellID(len(cellSpecs))
	for i := 0; i < NumTableDice; i++ {
		add(Location{DiceTable, 'A', i}, ClassDice, false, true, -1, -1)
	}
	for i := 0; i < NumExtraDice; i++ {
		add(Location{DiceTable, 'B', i}, ClassDice, false, true, -1, -1)
	}
	CaravanBase = CellID(len(cellSpecs))
	for i := 0; i < CaravanCells; i++ {
		add(Location{CaravanTrack, '@', i}, ClassCubes, false, true, -1, -1)
	}
	BuildingBase = CellID(len(cellSpecs))
	for p := 0; p < MaxPlayers; p++ {
		for b := 0; b < int(NumBuildings); b++ {
			add(Location{BuildingTrack, PlayerCol(p), b}, ClassCubes, false, true, p, -1)
		}
	}
	MiscBase = CellID(len(cellSpecs))
	for p := 0; p < MaxPlayers; p++ {
		for m := 0; m < NumMisc; m++ {
			add(Location{MiscTrack, PlayerCol(p), m}, MiscClass[m], true, m != MiscCubes, p, -1)
		}
	}
	GoldPoolCell = add(Location{GoldPool, '@', 0}, ClassGold, true, false, -1, -1)
	CamelPoolCell = add(Location{CamelPool, '@', 0}, ClassCamels, true, false, -1, -1)
	CardStackCell = add(Location{CardStack, '@', 0}, ClassCards, true, true, -1, -1)
	DiscardCell = add(Location{DiscardStack, '@', 0}, ClassCards, true, true, -1, -1)
	ReshuffleCell = add(Location{DiscardStack, '@', 1}, ClassCards, true, true, -1, -1)
	NumCells = len(cellSpecs)

	trackHouses = make([][]CellID, TrackCells)
	for si, s := range Souks {
		for h, links := range s.Links {
			for _, p := range links {
				trackHouses[p] = append(trackHouses[p], SoukCell(si, h))
			}
		}
	}

	byLoc = make(map[Location]CellID, NumCells)
	for _, c := range cellSpecs {
		byLoc[canonical(c.Loc)] = c.ID
	}
}

// canonical drops the column for racks whose text form has none.
func canonical(l Location) Location {
	switch l.Rack.Arity() {
	case ArityNone:
		return Location{Rack: l.Rack}
	case ArityRow:
		return Location{Rack: l.Rack, Row: l.Row}
	}
	return l
}

// Spec returns the static description of id.
func Spec(id CellID) CellSpec { return cellSpecs[id] }

// Lookup resolves a location to a cell.
func Lookup(l Location) (CellID, error) {
	if l.Rack == SupervisorTrack && l.Row == HubAlias {
		l.Row = Hub
	}
	id, ok := byLoc[canonical(l)]
	if !ok {
		return NoCell, fmt.Errorf("%w: no cell at %s", ErrIllegalMove, l)
	}
	return id, nil
}

// Track cell helpers.
func TrackCell(p int) CellID       { return TrackBase + CellID(p) }
func TrackPos(id CellID) int       { return int(id - TrackBase) }
func DayCell(d int) CellID         { return DayBase + CellID(d) }
func WeekCell(w int) CellID        { return WeekBase + CellID(w) }
func CaravanCell(i int) CellID     { return CaravanBase + CellID(i) }
func TableCell(i int) CellID       { return TableBase + CellID(i) }
func ExtraDieCell(i int) CellID    { return TableBase + CellID(NumTableDice+i) }
func TowerDiceCell(r int) CellID   { return TowerBase + CellID(r*3) }
func TowerGoldCell(r int) CellID   { return TowerBase + CellID(r*3+1) }
func TowerCardCell(r int) CellID   { return TowerBase + CellID(r*3+2) }
func SoukCell(s, house int) CellID { return SoukBase[s] + CellID(house) }

// BuildingCell is building b on player p's board.
func BuildingCell(p int, b Building) CellID {
	return BuildingBase + CellID(p*int(NumBuildings)+int(b))
}

// MiscCell is misc row m on player p's board.
func MiscCell(p, m int) CellID { return MiscBase + CellID(p*NumMisc+m) }

// IsTrack reports whether id is on the supervisor track.
func IsTrack(id CellID) bool { return id >= TrackBase && id < TrackBase+TrackCells }

// TowerRow returns the dice row of a tower cell, or -1.
func TowerRow(id CellID) int {
	if id < TowerBase || id >= TowerBase+CellID(NumRows*3) {
		return -1
	}
	return int(id-TowerBase) / 3
}

// SoukCells lists the houses of souk s in order.
func SoukCells(s int) []CellID {
	out := make([]CellID, Souks[s].Houses())
	for h := range out {
		out[h] = SoukCell(s, h)
	}
	return out
}

// SouksIn lists souk indexes of a neighborhood.
func SouksIn(r Rack) []int {
	var out []int
	for i, s := range Souks {
		if s.Rack == r {
			out = append(out, i)
		}
	}
	return out
}

// AdjacentHouses lists the souk houses a supervisor standing on track cell
// id watches.
func AdjacentHouses(id CellID) []CellID {
	if !IsTrack(id) {
		return nil
	}
	p := TrackPos(id)
	if p == HubAlias {
		p = Hub
	}
	return trackHouses[p]
}

// IsSouk reports whether id is a house in a souk.
func IsSouk(id CellID) bool { return Spec(id).Souk >= 0 }
