// Package match describes robot matches and plays them out.
package match

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	petname "github.com/dustinkirkland/golang-petname"

	"github.com/mitchelldurbincs/yspahan/internal/config"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/strategy"
)

// DefaultMaxMoves caps a single game. Robot games finish far below it.
const DefaultMaxMoves = 20000

// Seat is one robot player.
type Seat struct {
	Name    string `toml:"name"`
	Variant string `toml:"variant"`
}

// Match is the content of a match file:
//
//	seed = 7
//	games = 10
//
//	[[seat]]
//	name = "alice"
//	variant = "builder"
//
//	[[seat]]
//	variant = "standard"
type Match struct {
	Seed     int64  `toml:"seed"`
	Games    int    `toml:"games"`
	Revision int    `toml:"revision"`
	MaxMoves int    `toml:"max_moves"`
	Seats    []Seat `toml:"seat"`
}

// Decode reads a match file and fills in defaults.
func Decode(r io.Reader) (*Match, error) {
	var m Match
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("decoding match: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown match keys: %s", strings.Join(keys, ", "))
	}
	if err := m.normalize("standard"); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads the match file at path.
func LoadFile(path string) (*Match, error) {
	var m Match
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("reading match file %s: %w", path, err)
	}
	if err := m.normalize("standard"); err != nil {
		return nil, err
	}
	return &m, nil
}

// FromConfig builds a match from the game and robot sections.
func FromConfig(c *config.Config, games int) (*Match, error) {
	m := &Match{
		Seed:     c.Game.Seed,
		Games:    games,
		Revision: c.Game.Revision,
	}
	for p := 0; p < c.Game.Players; p++ {
		m.Seats = append(m.Seats, Seat{Variant: c.SeatVariant(p)})
	}
	if err := m.normalize(c.Robot.Variant); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Match) normalize(variant string) error {
	if m.Games <= 0 {
		m.Games = 1
	}
	if m.MaxMoves <= 0 {
		m.MaxMoves = DefaultMaxMoves
	}
	used := make(map[string]bool)
	for i := range m.Seats {
		s := &m.Seats[i]
		if s.Variant == "" {
			s.Variant = variant
		}
		if s.Name == "" {
			s.Name = petname.Generate(2, "-")
			for used[s.Name] {
				s.Name = petname.Generate(2, "-")
			}
		}
		used[s.Name] = true
	}
	return m.Validate()
}

// Validate checks the seat count and that every variant exists.
func (m *Match) Validate() error {
	if n := len(m.Seats); n < 2 || n > core.MaxPlayers {
		return fmt.Errorf("a match needs 2 to %d seats, got %d", core.MaxPlayers, n)
	}
	for i, s := range m.Seats {
		if _, err := strategy.LoadVariant(s.Variant); err != nil {
			return fmt.Errorf("seat %d (%s): %w", i, s.Name, err)
		}
	}
	if m.Revision < 0 {
		return fmt.Errorf("revision must be non-negative")
	}
	return nil
}

// Players is the seat count.
func (m *Match) Players() int { return len(m.Seats) }

// Token is the initialization token of game n. Each game uses its own seed.
func (m *Match) Token(n int) string {
	seed := m.Seed + int64(n)
	if m.Revision > 0 {
		return fmt.Sprintf("Yspahan %d %d %d", seed, m.Players(), m.Revision)
	}
	return fmt.Sprintf("Yspahan %d %d", seed, m.Players())
}
