package game

import (
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

// Animation is one chip travelling between cells.
type Animation struct {
	From core.CellID
	To   core.CellID
}

// Transition is one step of the turn sequence taken while executing a move.
type Transition struct {
	From    states.State
	To      states.State
	Trigger states.Trigger
}

// RollSummary describes how a roll filled the dice tower.
type RollSummary struct {
	Day     int
	Rows    [core.NumRows]int
	Faces   [core.NumRows]int
	Summary string
}

// WeekScore is the souk scoring at the end of a week.
type WeekScore struct {
	Week   int
	Points []int
}

// CaravanScore is a caravan payout, either because it filled up or at the
// end of a week.
type CaravanScore struct {
	Points  []int
	Emptied bool
}

// Report collects what happened during one Execute.
type Report struct {
	Transitions []Transition
	Animations  []Animation
	Roll        *RollSummary
	Weeks       []WeekScore
	Caravans    []CaravanScore
	// Info is a short annotation for the move log, such as the roll.
	Info string
}
