package move

import (
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

type scanner struct {
	text   string
	tokens []string
	pos    int
}

func (s *scanner) fail(reason string) error {
	return &core.ParseError{Text: s.text, Pos: s.pos, Reason: reason}
}

func (s *scanner) next(what string) (string, error) {
	if s.pos >= len(s.tokens) {
		return "", s.fail("missing " + what)
	}
	t := s.tokens[s.pos]
	s.pos++
	return t, nil
}

func (s *scanner) more() bool { return s.pos < len(s.tokens) }

func (s *scanner) integer(what string) (int, error) {
	t, err := s.next(what)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(t)
	if convErr != nil {
		s.pos--
		return 0, s.fail(what + " is not a number: " + t)
	}
	return n, nil
}

func (s *scanner) color() (int, error) {
	t, err := s.next("color")
	if err != nil {
		return 0, err
	}
	c, ok := core.ParseColor(t)
	if !ok {
		s.pos--
		return 0, s.fail("unknown color " + t)
	}
	return int(c), nil
}

func (s *scanner) rack() (core.Rack, error) {
	t, err := s.next("rack")
	if err != nil {
		return core.NoRack, err
	}
	r, ok := core.ParseRack(t)
	if !ok {
		s.pos--
		return core.NoRack, s.fail("unknown rack " + t)
	}
	return r, nil
}

// location reads the coordinates r takes.
func (s *scanner) location(r core.Rack) (core.Location, error) {
	loc := core.Location{Rack: r}
	switch r.Arity() {
	case core.ArityNone:
		return loc, nil
	case core.ArityColRow:
		t, err := s.next("column")
		if err != nil {
			return loc, err
		}
		if len(t) != 1 || t[0] < 'A' || t[0] > 'Z' {
			s.pos--
			return loc, s.fail("bad column " + t)
		}
		loc.Col = t[0]
	}
	row, err := s.integer("row")
	if err != nil {
		return loc, err
	}
	loc.Row = row
	return loc, nil
}

// Parse reads one move. player is the seat submitting the text and is used
// by operations that do not name a color.
func Parse(text string, player int) (Move, error) {
	s := &scanner{text: text, tokens: strings.Fields(text)}
	m := Move{Player: player, Seq: NoSeq}

	if len(s.tokens) == 0 {
		return m, s.fail("empty move")
	}
	if n, err := strconv.Atoi(s.tokens[0]); err == nil {
		m.Seq = n
		s.pos++
	}

	opText, err := s.next("operation")
	if err != nil {
		return m, err
	}
	op := Op(-1)
	for i, name := range opNames {
		if name == opText {
			op = Op(i)
			break
		}
	}
	if op < 0 {
		s.pos--
		return m, s.fail("unknown operation " + opText)
	}
	m.Op = op

	if op.colored() {
		if m.Player, err = s.color(); err != nil {
			return m, err
		}
	}

	switch op {
	case OpPick, OpMove:
		r, err := s.rack()
		if err != nil {
			return m, err
		}
		if m.Source, err = s.location(r); err != nil {
			return m, err
		}
		if m.Depth, err = s.integer("depth"); err != nil {
			return m, err
		}
		m.specified |= hasSource | hasDepth
		if op == OpMove {
			if r, err = s.rack(); err != nil {
				return m, err
			}
			if m.Dest, err = s.location(r); err != nil {
				return m, err
			}
			m.specified |= hasDest
		}
	case OpDrop:
		r, err := s.rack()
		if err != nil {
			return m, err
		}
		m.Dest.Rack = r
		if r == core.MiscTrack && !s.more() {
			break
		}
		if m.Dest, err = s.location(r); err != nil {
			return m, err
		}
		m.specified |= hasDest
	}

	if s.more() {
		return m, s.fail("unexpected " + s.tokens[s.pos])
	}
	return m, nil
}
