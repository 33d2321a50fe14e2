// Package move implements the textual move grammar. A Move is a small value
// that parses from and serializes to one line of a game record.
package move

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

// Op is a move operation code.
type Op int

const (
	OpPick Op = iota
	OpDrop
	OpMove
	OpDone
	OpStart
	OpEdit
	OpResign
	OpViewCards
	OpGameOverOnTime
	numOps
)

var opNames = [numOps]string{"Pick", "Drop", "Move", "Done", "Start", "Edit", "Resign", "ViewCards", "GameOverOnTime"}

func (o Op) String() string {
	if o >= 0 && o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// colored reports whether the op names the mover's color in its text.
func (o Op) colored() bool { return o == OpPick || o == OpDrop || o == OpMove || o == OpStart }

// Top is the depth that addresses the top of a stack.
const Top = -1

// NoSeq marks a move without a sequence number prefix.
const NoSeq = -1

type field uint8

const (
	hasSource field = 1 << iota
	hasDepth
	hasDest
)

// Move is one player action.
type Move struct {
	Op     Op
	Player int
	Source core.Location
	// Depth indexes the picked stack from the bottom, or Top. On the card
	// row of a player board it is the card ordinal.
	Depth int
	Dest  core.Location
	// Seq is the optional record number. It is not part of the move.
	Seq int

	specified field
}

// Pick lifts an object from a cell.
func Pick(player int, src core.Location, depth int) Move {
	return Move{Op: OpPick, Player: player, Source: src, Depth: depth, Seq: NoSeq, specified: hasSource | hasDepth}
}

// Drop places the held object on a cell.
func Drop(player int, dst core.Location) Move {
	return Move{Op: OpDrop, Player: player, Dest: dst, Seq: NoSeq, specified: hasDest}
}

// DropHome places the held object on the mover's own board. The row is
// chosen by the board from the object's class.
func DropHome(player int) Move {
	return Move{Op: OpDrop, Player: player, Dest: core.Location{Rack: core.MiscTrack}, Seq: NoSeq}
}

// Transfer is a pick and drop in one step.
func Transfer(player int, src core.Location, depth int, dst core.Location) Move {
	return Move{Op: OpMove, Player: player, Source: src, Depth: depth, Dest: dst, Seq: NoSeq,
		specified: hasSource | hasDepth | hasDest}
}

// Simple builds one of the argument-free operations, or Start.
func Simple(op Op, player int) Move {
	return Move{Op: op, Player: player, Seq: NoSeq}
}

func Done(player int) Move  { return Simple(OpDone, player) }
func Start(player int) Move { return Simple(OpStart, player) }

// HasDest reports whether the destination was given. A DropHome does not
// name its row.
func (m Move) HasDest() bool { return m.specified&hasDest != 0 }

// HasSource reports whether the move names a source cell.
func (m Move) HasSource() bool { return m.specified&hasSource != 0 }

// WithDest returns m with the destination filled in.
func (m Move) WithDest(dst core.Location) Move {
	m.Dest = dst
	m.specified |= hasDest
	return m
}

// IsEquivalentTo compares the fields given when the moves were built.
// Fields only one side specified are ignored, as is Seq.
func (m Move) IsEquivalentTo(o Move) bool {
	if m.Op != o.Op || m.Player != o.Player {
		return false
	}
	both := m.specified & o.specified
	if both&hasSource != 0 && !sameLocation(m.Source, o.Source) {
		return false
	}
	if both&hasDepth != 0 && m.Depth != o.Depth {
		return false
	}
	if both&hasDest != 0 && !sameLocation(m.Dest, o.Dest) {
		return false
	}
	if m.Op == OpDrop && m.Dest.Rack != o.Dest.Rack {
		return false
	}
	return true
}

func sameLocation(a, b core.Location) bool {
	if a.Rack != b.Rack {
		return false
	}
	switch a.Rack.Arity() {
	case core.ArityNone:
		return true
	case core.ArityRow:
		return a.Row == b.Row
	}
	return a.Col == b.Col && a.Row == b.Row
}

// String is the canonical text without the sequence number.
func (m Move) String() string {
	var sb strings.Builder
	sb.WriteString(m.Op.String())
	if m.Op.colored() {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(core.Color(m.Player).String()))
	}
	switch m.Op {
	case OpPick:
		writeLocation(&sb, m.Source)
		fmt.Fprintf(&sb, " %d", m.Depth)
	case OpDrop:
		if m.HasDest() {
			writeLocation(&sb, m.Dest)
		} else {
			sb.WriteByte(' ')
			sb.WriteString(m.Dest.Rack.String())
		}
	case OpMove:
		writeLocation(&sb, m.Source)
		fmt.Fprintf(&sb, " %d", m.Depth)
		writeLocation(&sb, m.Dest)
	}
	return sb.String()
}

// Numbered prefixes the sequence number when there is one.
func (m Move) Numbered() string {
	if m.Seq == NoSeq {
		return m.String()
	}
	return strconv.Itoa(m.Seq) + " " + m.String()
}

func writeLocation(sb *strings.Builder, l core.Location) {
	sb.WriteByte(' ')
	sb.WriteString(l.String())
}
