package core

// Supervisor track. The horizontal street is 0..17, the vertical street is
// 18..29 and both cross at the hub. Position 22 on the vertical street is
// the hub itself.
const (
	TrackCells = 30
	Hub        = 10
	HubAlias   = 22
)

// Track directions.
const (
	DirEast  = iota // toward 17
	DirSouth        // toward 29
	DirWest         // toward 0
	DirNorth        // toward 18
	NumDirs
)

// Reverse returns the opposite direction.
func Reverse(dir int) int { return (dir + NumDirs/2) % NumDirs }

// IsTrackCell reports whether p names a distinct track cell.
func IsTrackCell(p int) bool { return p >= 0 && p < TrackCells && p != HubAlias }

func vertical(p int) bool { return p >= 18 && p < TrackCells }

// TrackStep returns the cell one step from p in dir.
func TrackStep(p, dir int) (int, bool) {
	if p == Hub || p == HubAlias {
		switch dir {
		case DirEast:
			return Hub + 1, true
		case DirWest:
			return Hub - 1, true
		case DirSouth:
			return HubAlias + 1, true
		case DirNorth:
			return HubAlias - 1, true
		}
		return 0, false
	}
	if vertical(p) {
		n := p
		switch dir {
		case DirSouth:
			n++
		case DirNorth:
			n--
		default:
			return 0, false
		}
		if n == HubAlias {
			return Hub, true
		}
		if n < 18 || n >= TrackCells {
			return 0, false
		}
		return n, true
	}
	switch dir {
	case DirEast:
		if p < 17 {
			return p + 1, true
		}
	case DirWest:
		if p > 0 {
			return p - 1, true
		}
	}
	return 0, false
}

// SupervisorDests returns every track cell the supervisor can stop on
// moving between min and max steps from start. At the hub the path may turn
// in any direction except straight back.
func SupervisorDests(start, min, max int) map[int]bool {
	dests := make(map[int]bool)
	for dir := 0; dir < NumDirs; dir++ {
		stepSupervisor(start, dir, min, max, dests)
	}
	return dests
}

func stepSupervisor(from, dir, min, max int, dests map[int]bool) {
	next, ok := TrackStep(from, dir)
	if !ok {
		return
	}
	min--
	max--
	if min <= 0 {
		dests[next] = true
		min++
	}
	if max <= 0 {
		return
	}
	if next == Hub {
		back := Reverse(dir)
		for d := 0; d < NumDirs; d++ {
			if d != back {
				stepSupervisor(next, d, min, max, dests)
			}
		}
		return
	}
	stepSupervisor(next, dir, min, max, dests)
}

// Souk describes one capacity-limited group of houses in a neighborhood.
type Souk struct {
	Rack   Rack
	Letter byte
	Value  int
	// Links lists, per house, the supervisor track cells adjacent to it.
	Links [][]int
}

// Houses is the souk's capacity.
func (s Souk) Houses() int { return len(s.Links) }

// Souks is the static souk table, neighborhood by neighborhood.
var Souks = []Souk{
	{BagNeighborhood, 'A', 8, [][]int{{1}, nil, nil, nil, nil, nil}},
	{BagNeighborhood, 'B', 6, [][]int{{3}, {5}, nil, nil, nil}},
	{BagNeighborhood, 'C', 3, [][]int{{7}, {9, 23}, {24}}},
	{BagNeighborhood, 'D', 4, [][]int{{26}, {28}, nil, nil}},
	{BarrelNeighborhood, 'A', 3, [][]int{{11, 23}, {12}}},
	{BarrelNeighborhood, 'B', 6, [][]int{{14}, {16}, nil, nil}},
	{BarrelNeighborhood, 'C', 4, [][]int{{25}, nil, nil}},
	{BarrelNeighborhood, 'D', 8, [][]int{{29}, {27}, nil, nil, nil}},
	{ChestNeighborhood, 'A', 6, [][]int{{0}, {2}, {4}}},
	{ChestNeighborhood, 'B', 4, [][]int{{6}, {8}}},
	{ChestNeighborhood, 'C', 8, [][]int{{20}, {18}, nil, nil}},
	{VaseNeighborhood, 'A', 4, [][]int{{11, 21}}},
	{VaseNeighborhood, 'B', 6, [][]int{{19}, nil}},
	{VaseNeighborhood, 'C', 12, [][]int{{13}, {15}, {17}}},
}

// SoukIndex finds the souk at rack and letter.
func SoukIndex(r Rack, letter byte) (int, bool) {
	for i, s := range Souks {
		if s.Rack == r && s.Letter == letter {
			return i, true
		}
	}
	return -1, false
}

// Dice tower rows.
const (
	RowCamels = iota
	RowBag
	RowBarrel
	RowChest
	RowVase
	RowGold
	NumRows
)

// RowRack is the rack a dice row takes from or places into.
var RowRack = [NumRows]Rack{CamelPool, BagNeighborhood, BarrelNeighborhood, ChestNeighborhood, VaseNeighborhood, GoldPool}

// RowNames are used in roll summaries.
var RowNames = [NumRows]string{"camels", "bag", "barrel", "chest", "vase", "gold"}

// RowForRack maps a neighborhood or pool back to its dice row.
func RowForRack(r Rack) int {
	for i, rr := range RowRack {
		if rr == r {
			return i
		}
	}
	return -1
}

// Dice tower columns.
const (
	TowerDice = 'A'
	TowerGold = 'B'
	TowerCard = 'C'
)

// Building is a player board improvement.
type Building int

const (
	ExtraCamel Building = iota
	ExtraGold
	ExtraMovement
	ExtraCard
	ExtraPoints
	ExtraCube
	NumBuildings
)

var buildingNames = [...]string{"extra_camel", "extra_gold", "extra_movement", "extra_card", "extra_points", "extra_cube"}

func (b Building) String() string { return buildingNames[b] }

// BuildingCost is the price of a building in camels and gold.
type BuildingCost struct{ Camels, Gold int }

var BuildingCosts = [NumBuildings]BuildingCost{
	{2, 2}, {2, 3}, {3, 3}, {3, 4}, {4, 4}, {4, 5},
}

// BuildingBonus is the victory point award indexed by buildings owned after
// the purchase.
var BuildingBonus = [NumBuildings + 1]int{0, 0, 0, 5, 5, 5, 10}

// Player board misc rows.
const (
	MiscCamels = iota
	MiscGold
	MiscCards
	MiscCubes
	MiscPoints
	NumMisc
)

// MiscClass is the content class of each misc row.
var MiscClass = [NumMisc]Class{ClassCamels, ClassGold, ClassCards, ClassCubes, ClassPoints}

// MiscRowFor returns the misc row that holds chips of class c.
func MiscRowFor(c Class) int {
	for i, mc := range MiscClass {
		if mc == c {
			return i
		}
	}
	return -1
}

// Game constants.
const (
	NumWhiteDice    = 9
	NumExtraDice    = 3
	NumTableDice    = NumWhiteDice + NumExtraDice
	PoolSize        = 30
	StartingGold    = 2
	StartingCubes   = 20
	Days            = 7
	WeekCells       = 4
	LastDay         = 21
	CaravanCells    = 12
	ScoreGoldLimit  = 10
	ScoreCamelLimit = 4
)

// CaravanLen is the caravan length for a seat count.
func CaravanLen(players int) int {
	if players == 4 {
		return 12
	}
	return 9
}

// CaravanImmediateVP is the award for placing a cube on row of a caravan.
func CaravanImmediateVP(row, length int) int { return 2 - row/(length/3) }

// CaravanFactor is the per-cube multiplier for a player whose highest cube
// sits on row.
func CaravanFactor(row, length int) int { return row/(length/3) + 1 }
