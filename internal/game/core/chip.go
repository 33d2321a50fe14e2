package core

import (
	"fmt"
	"strings"
)

// Color identifies a player seat. Player i always plays color i.
type Color int

const (
	Green Color = iota
	Red
	Blue
	Yellow
)

// MaxPlayers is the largest supported seat count.
const MaxPlayers = 4

var colorNames = [...]string{"Green", "Red", "Blue", "Yellow"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor accepts a color name in any letter case.
func ParseColor(s string) (Color, bool) {
	for i, n := range colorNames {
		if strings.EqualFold(n, s) {
			return Color(i), true
		}
	}
	return 0, false
}

// CardKind enumerates the bonus cards. Ordinals are part of the move grammar.
type CardKind uint8

const (
	CardBack CardKind = iota
	Card3Camels
	Card3Gold
	CardBuyNoCamels
	CardBuyNoGold
	CardPlaceBoard
	CardPlaceCaravan
	CardScoreCamels
	CardScoreGold
	CardSwapCamelsGold
	NumCardKinds
)

var cardNames = [...]string{
	"back", "card_3_camels", "card_3_gold", "card_buy_no_camels", "card_buy_no_gold",
	"card_place_board", "card_place_caravan", "card_score_camels", "card_score_gold",
	"card_swap_camels_gold",
}

func (k CardKind) String() string {
	if int(k) < len(cardNames) {
		return cardNames[k]
	}
	return fmt.Sprintf("CardKind(%d)", k)
}

// ChipKind is the physical kind of a piece.
type ChipKind uint8

const (
	NoChip ChipKind = iota
	GoldChip
	CamelChip
	PointChip
	SupervisorChip
	TimeChip
	CubeChip
	DieChip
	CardChip
)

// Class groups chips by the cells that may hold them.
type Class uint8

const (
	ClassNone Class = iota
	ClassGold
	ClassCamels
	ClassCards
	ClassDice
	ClassCubes
	ClassSupervisor
	ClassTime
	ClassPoints
)

var classNames = [...]string{"none", "gold", "camels", "cards", "dice", "cubes", "supervisor", "time", "points"}

func (c Class) String() string { return classNames[c] }

const yellowDie = 0x10

// Chip is a single piece. Chips are small values and are copied freely.
type Chip struct {
	Kind ChipKind
	Arg  uint8
}

var (
	Gold       = Chip{Kind: GoldChip}
	Camel      = Chip{Kind: CamelChip}
	Point      = Chip{Kind: PointChip}
	Supervisor = Chip{Kind: SupervisorChip}
	TimeMarker = Chip{Kind: TimeChip}
)

// Cube returns the cube of color c.
func Cube(c Color) Chip { return Chip{Kind: CubeChip, Arg: uint8(c)} }

// Die returns a die showing face. Yellow dice are the purchasable extras.
func Die(face int, yellow bool) Chip {
	a := uint8(face)
	if yellow {
		a |= yellowDie
	}
	return Chip{Kind: DieChip, Arg: a}
}

// Card returns the card of kind k.
func Card(k CardKind) Chip { return Chip{Kind: CardChip, Arg: uint8(k)} }

func (c Chip) IsZero() bool { return c.Kind == NoChip }

// Color is the owner of a cube.
func (c Chip) Color() Color { return Color(c.Arg) }

// Face is the pip count of a die.
func (c Chip) Face() int { return int(c.Arg &^ yellowDie) }

func (c Chip) Yellow() bool { return c.Kind == DieChip && c.Arg&yellowDie != 0 }

func (c Chip) CardKind() CardKind { return CardKind(c.Arg) }

// Class is the cell class that accepts this chip.
func (c Chip) Class() Class {
	switch c.Kind {
	case GoldChip:
		return ClassGold
	case CamelChip:
		return ClassCamels
	case PointChip:
		return ClassPoints
	case SupervisorChip:
		return ClassSupervisor
	case TimeChip:
		return ClassTime
	case CubeChip:
		return ClassCubes
	case DieChip:
		return ClassDice
	case CardChip:
		return ClassCards
	}
	return ClassNone
}

// Code is a dense small integer used by digests.
func (c Chip) Code() int64 { return int64(c.Kind)<<5 | int64(c.Arg) }

func (c Chip) String() string {
	switch c.Kind {
	case GoldChip:
		return "gold"
	case CamelChip:
		return "camel"
	case PointChip:
		return "point"
	case SupervisorChip:
		return "supervisor"
	case TimeChip:
		return "time"
	case CubeChip:
		return strings.ToLower(c.Color().String()) + "-cube"
	case DieChip:
		if c.Yellow() {
			return fmt.Sprintf("yellow-die-%d", c.Face())
		}
		return fmt.Sprintf("die-%d", c.Face())
	case CardChip:
		return c.CardKind().String()
	}
	return "none"
}
