package core

import "fmt"

// Rack names a region of the board. Rack names appear verbatim in move text.
type Rack int

const (
	NoRack Rack = iota
	CamelPool
	GoldPool
	CardStack
	DiscardStack
	BagNeighborhood
	BarrelNeighborhood
	ChestNeighborhood
	VaseNeighborhood
	SupervisorTrack
	DiceTower
	DiceTable
	CaravanTrack
	TimeTrack
	BuildingTrack
	MiscTrack
	numRacks
)

var rackNames = [...]string{
	"NoWhere", "Camel_Pool", "Gold_Pool", "Card_Stack", "Discard_Stack",
	"Bag_Neighborhood", "Barrel_Neighborhood", "Chest_Neighborhood", "Vase_Neighborhood",
	"Supervisor_Track", "Dice_Tower", "Dice_Table", "Caravan_Track", "Time_Track",
	"Building_Track", "Misc_Track",
}

func (r Rack) String() string {
	if r >= 0 && r < numRacks {
		return rackNames[r]
	}
	return fmt.Sprintf("Rack(%d)", int(r))
}

// ParseRack matches a rack name exactly.
func ParseRack(s string) (Rack, bool) {
	for i := Rack(1); i < numRacks; i++ {
		if rackNames[i] == s {
			return i, true
		}
	}
	return NoRack, false
}

// Arity is the number of location tokens a rack takes in move text.
type Arity int

const (
	ArityNone   Arity = iota // the rack is a single cell
	ArityRow                 // row only
	ArityColRow              // column letter and row
)

func (r Rack) Arity() Arity {
	switch r {
	case CamelPool, GoldPool, CardStack:
		return ArityNone
	case DiscardStack, SupervisorTrack, CaravanTrack:
		return ArityRow
	}
	return ArityColRow
}

// IsNeighborhood reports whether r is one of the four souk neighborhoods.
func (r Rack) IsNeighborhood() bool {
	return r >= BagNeighborhood && r <= VaseNeighborhood
}

// Location addresses a cell by rack, column letter and row.
type Location struct {
	Rack Rack
	Col  byte
	Row  int
}

func (l Location) String() string {
	switch l.Rack.Arity() {
	case ArityNone:
		return l.Rack.String()
	case ArityRow:
		return fmt.Sprintf("%s %d", l.Rack, l.Row)
	}
	return fmt.Sprintf("%s %c %d", l.Rack, l.Col, l.Row)
}

// PlayerCol is the column letter used for a player's board.
func PlayerCol(p int) byte { return byte('A' + p) }
