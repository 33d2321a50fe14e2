package strategy

import (
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

// Core turns a variant into plans. It keeps no game state between calls;
// the random generator only breaks ties.
type Core struct {
	v      *Variant
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewCore creates a Core playing variant v.
func NewCore(v *Variant, seed int64, logger zerolog.Logger) *Core {
	return &Core{
		v:      v,
		rng:    rand.New(random.New(seed)),
		logger: logger.With().Str("component", "strategy").Str("variant", v.Name).Logger(),
	}
}

func (c *Core) Variant() *Variant { return c.v }

// Plan is the result of one planning round.
type Plan struct {
	Moves []move.Move
	Stage string
	Step  string
}

// Plan builds the moves the player to move should make next on b. It
// returns an empty plan when no policy applies.
func (c *Core) Plan(b *game.Board) Plan {
	pl := newPlanner(b)
	d := NewPlayData(b, pl.p)
	out := Plan{}
	switch st := b.State(); {
	case st == states.Puzzle:
		pl.exec(move.Start(pl.p))
	case st == states.Roll:
		c.roll(pl, d)
	case st == states.Select || st.IsThreeway():
		out.Stage, out.Step = c.turn(pl, d)
	case st == states.TakeCard:
		if pl.drawCard() {
			c.finishTurn(pl)
		}
	case st == states.TakeCamel || st == states.TakeGold:
		row := core.RowCamels
		if st == states.TakeGold {
			row = core.RowGold
		}
		if pl.takePool(row) {
			c.finishTurn(pl)
		}
	case st.IsPlacement():
		region := b.SelectedRow() - 1
		if region >= 0 && region < NumRegions && pl.placeCubes(region, c.placementGroups(d, region, d.Cubes[pl.p])) {
			c.finishTurn(pl)
		}
	case st == states.MoveSupervisor, st == states.DesignateCube, st == states.DesignatedCube:
		c.resolveSupervisor(pl, d)
	case st == states.PayCamel, st == states.PaidCamel:
		c.payCamel(pl, d)
	case st == states.Prebuild, st == states.Build, st == states.Pass:
		c.finishTurn(pl)
	case st == states.ConfirmCard, st == states.Confirm:
		pl.done()
	}
	out.Moves = pl.moves
	return out
}

// roll buys yellow dice for the start player and rolls.
func (c *Core) roll(pl *planner, d *PlayData) {
	bought := 0
	for bought < c.v.YellowDice && pl.b.Gold(pl.p) > c.v.YellowGoldReserve && pl.buyDie() {
		bought++
	}
	pl.done()
}

// turn walks the stage for the player's dice choice and finishes the turn.
func (c *Core) turn(pl *planner, d *PlayData) (stage, step string) {
	st := c.v.StageFor(d)
	stage = st.Name
	for _, s := range st.Steps {
		if c.perform(pl, d, s) {
			step = s.Name
			break
		}
	}
	if step == "" {
		if c.anyMove(pl, d) {
			step = "any"
		} else if c.takeCard(pl, d, -1) {
			step = "any card"
		}
	}
	if step != "" {
		c.finishTurn(pl)
	}
	return stage, step
}

// boost returns the card to spend on an extra die when s allows it.
func (c *Core) boost(d *PlayData, s Step) (core.CardKind, bool) {
	if !s.Boost || d.SelectedRow >= 0 {
		return core.CardBack, false
	}
	return d.BoostCard(d.BuildingsOwned(d.Player) == int(core.NumBuildings))
}

// rowOpen reports whether the player may still choose row.
func rowOpen(d *PlayData, row int) bool {
	if d.Dice[row] == 0 {
		return false
	}
	return d.SelectedRow < 0 || d.SelectedRow == row
}

// perform tries one step. It reports whether the step's moves were planned.
func (c *Core) perform(pl *planner, d *PlayData, s Step) bool {
	p := d.Player
	round := d.Round()
	card, boosted := c.boost(d, s)
	extra := 0
	if boosted {
		extra = 1
	}

	if s.CubeValue > 0 {
		if c.placeBest(pl, d, s.CubeValue, card, boosted) {
			return true
		}
	}
	if s.TakeCamels > 0 && rowOpen(d, core.RowCamels) {
		n := d.DiceCount(p, core.RowCamels) + extra
		ok := n >= s.TakeCamels && d.Camels[p] < limit(s.CamelsBelow, round)
		if s.CamelTarget > 0 {
			ok = n >= s.TakeCamels && d.Camels[p] < s.CamelTarget && d.Camels[p]+n >= s.CamelTarget
		}
		if ok && c.take(pl, core.RowCamels, card, boosted) {
			return true
		}
	}
	if s.TakeGold > 0 && rowOpen(d, core.RowGold) {
		n := d.DiceCount(p, core.RowGold) + extra
		ok := n >= s.TakeGold && d.Gold[p] < limit(s.GoldBelow, round)
		if s.GoldTarget > 0 {
			ok = n >= s.TakeGold && d.Gold[p] < s.GoldTarget && d.Gold[p]+n >= s.GoldTarget
		}
		if ok && c.take(pl, core.RowGold, card, boosted) {
			return true
		}
	}
	if s.Supervisor && c.supervisor(pl, d) {
		return true
	}
	if s.SmallGroups && c.smallGroups(pl, d) {
		return true
	}
	if s.TakeCard && c.takeCard(pl, d, d.DiceRowAgainstOpponent()) {
		return true
	}
	return false
}

// take plans taking camels or gold with row.
func (c *Core) take(pl *planner, row int, card core.CardKind, boosted bool) bool {
	return pl.try(func(s *planner) bool {
		if boosted && !s.try(func(b *planner) bool { return b.selectRow(row, card, true) }) {
			boosted = false
		}
		if !boosted && !s.selectRow(row, card, false) {
			return false
		}
		return s.takePool(row)
	})
}

// placeBest fills the most valuable region when it is worth at least min.
// Equal regions are split at random.
func (c *Core) placeBest(pl *planner, d *PlayData, min int, card core.CardKind, boosted bool) bool {
	p := d.Player
	values, ways := d.RegionValues(p, boosted)
	best := -1
	var ties []int
	for r, v := range values {
		if !rowOpen(d, r+1) || v < min || v < 0 {
			continue
		}
		switch {
		case v > best:
			best, ties = v, []int{r}
		case v == best:
			ties = append(ties, r)
		}
	}
	if len(ties) == 0 {
		return false
	}
	region := ties[c.rng.Intn(len(ties))]
	n := d.DiceCount(p, region+1)
	if boosted {
		n++
	}
	groups := c.groupsFor(d, region, d.PlacementOrder(p, region, n, ways[region]))
	c.logger.Debug().Int("region", region).Int("value", best).Bool("boost", boosted).Msg("Filling souks")
	return c.place(pl, region, groups, card, boosted)
}

func (c *Core) place(pl *planner, region int, groups []Group, card core.CardKind, boosted bool) bool {
	if boosted && pl.try(func(s *planner) bool {
		return s.selectRow(region+1, card, true) && s.placeCubes(region, groups)
	}) {
		return true
	}
	return pl.try(func(s *planner) bool {
		return s.selectRow(region+1, card, false) && s.placeCubes(region, groups)
	})
}

func (c *Core) groupsFor(d *PlayData, region int, order []int) []Group {
	out := make([]Group, 0, len(order))
	for _, i := range order {
		out = append(out, d.Regions[region][i])
	}
	return out
}

// placementGroups is the preferred fill order once the row is already
// chosen.
func (c *Core) placementGroups(d *PlayData, region, cubes int) []Group {
	_, way := d.RegionValue(d.Player, region, false)
	return c.groupsFor(d, region, d.PlacementOrder(d.Player, region, cubes, way))
}

// smallGroups starts or finishes the smallest souks with the row that
// completes the most of them, even when no souk is finished this turn.
func (c *Core) smallGroups(pl *planner, d *PlayData) bool {
	p := d.Player
	best, bestRow := -1, -1
	for region := NumRegions - 1; region >= 0; region-- {
		row := region + 1
		if !rowOpen(d, row) || !d.RegionUsable(p, region) {
			continue
		}
		n := d.DiceCount(p, row)
		if g := d.groupStartedFit(p, region, n); g >= 0 && d.Regions[region][g].Remaining() <= n {
			if v := d.GroupValue(p, d.Regions[region][g]); v > best {
				best, bestRow = v, row
			}
			continue
		}
		if g := d.SmallestEmptyGroup(region); g >= 0 && best < 0 {
			bestRow = row
		}
	}
	if bestRow < 0 {
		return false
	}
	region := bestRow - 1
	groups := c.groupsFor(d, region, d.PlacementOrder(p, region, d.DiceCount(p, bestRow), nil))
	return c.place(pl, region, groups, core.CardBack, false)
}

// supervisor moves the supervisor onto a good stop and resolves the cubes
// it watches.
func (c *Core) supervisor(pl *planner, d *PlayData) bool {
	opts := d.ComputeSupervisor()
	filtered := opts[:0]
	for _, o := range opts {
		if rowOpen(d, o.Row) {
			filtered = append(filtered, o)
		}
	}
	o, ok := d.SupervisorMove(filtered, 2)
	if !ok {
		return false
	}
	c.logger.Debug().Int("row", o.Row).Int("dest", o.Dest).Int("cost", o.Cost).Msg("Moving supervisor")
	return pl.try(func(s *planner) bool {
		if s.state() == states.Select || s.state().IsThreeway() {
			if !s.selectRow(o.Row, core.CardBack, false) {
				return false
			}
		}
		if !s.paySupervisor(o.Row, o.Cost, core.TrackCell(o.Dest)) {
			return false
		}
		return c.resolveSupervisor(s, d)
	})
}

// resolveSupervisor finishes a supervisor move: it designates the cube to
// send and confirms until the turn reaches the build phase, or hands over
// to a cube owner who may pay a camel.
func (c *Core) resolveSupervisor(pl *planner, d *PlayData) bool {
	for guard := 0; guard < 16; guard++ {
		if pl.b.WhoseTurn() != pl.p {
			return true
		}
		switch pl.state() {
		case states.Prebuild:
			return true
		case states.MoveSupervisor:
			chip, _, held := pl.b.Held()
			switch {
			case held && chip == core.Supervisor:
				dests := pl.b.SupervisorDests()
				if len(dests) == 0 || !pl.drop(dests[c.rng.Intn(len(dests))]) {
					return false
				}
			case held:
				row := pl.b.SelectedRow()
				if row < 0 || !pl.drop(core.TowerGoldCell(row)) {
					return false
				}
			default:
				if !pl.pick(pl.b.Supervisor(), move.Top) {
					return false
				}
			}
		case states.DesignateCube:
			watched := pl.b.WatchedCubes(pl.b.Supervisor())
			cube := d.Designate(watched, func(id core.CellID) int {
				chip, _ := pl.b.Top(id)
				return int(chip.Color())
			})
			if cube == core.NoCell || !pl.pick(cube, move.Top) {
				return false
			}
		case states.DesignatedCube:
			if !pl.done() {
				return false
			}
		case states.PayCamel, states.PaidCamel:
			// the player's own cube: keep the camels
			if !pl.done() {
				return false
			}
		default:
			return false
		}
	}
	return false
}

// payCamel decides for the owner of a designated cube whether to keep it.
func (c *Core) payCamel(pl *planner, d *PlayData) {
	if pl.state() == states.PayCamel {
		id := pl.b.SelectedCube()
		if g, ok := d.GroupOf(id); ok && c.worthCamel(d, g) {
			if pl.try(func(s *planner) bool {
				return s.pick(s.mine(core.MiscCamels), move.Top) && s.drop(core.CamelPoolCell)
			}) {
				pl.done()
				return
			}
		}
	}
	pl.done()
}

func (c *Core) worthCamel(d *PlayData, g Group) bool {
	if d.Camels[d.Player] == 0 || d.Cubes[d.Player] == 0 {
		return false
	}
	return g.Remaining() <= 1 && d.GroupValue(d.Player, g) >= c.v.PayCamelValue
}

// takeCard draws a card with row, or with any row holding dice when row is
// negative.
func (c *Core) takeCard(pl *planner, d *PlayData, row int) bool {
	if d.CardsLeft == 0 && pl.b.Height(core.DiscardCell) == 0 {
		return false
	}
	rows := []int{row}
	if row < 0 || !rowOpen(d, row) {
		rows = rows[:0]
		for r := core.NumRows - 1; r >= 0; r-- {
			if rowOpen(d, r) {
				rows = append(rows, r)
			}
		}
	}
	for _, r := range rows {
		if pl.try(func(s *planner) bool {
			if s.state() == states.Select || s.state().IsThreeway() {
				if !s.selectRow(r, core.CardBack, false) {
					return false
				}
			}
			return s.drawCard()
		}) {
			return true
		}
	}
	return false
}

// anyMove takes whatever a row offers, most valuable region first.
func (c *Core) anyMove(pl *planner, d *PlayData) bool {
	p := d.Player
	values, ways := d.RegionValues(p, false)
	for region := NumRegions - 1; region >= 0; region-- {
		if !rowOpen(d, region+1) || values[region] < 0 {
			continue
		}
		groups := c.groupsFor(d, region, d.PlacementOrder(p, region, d.DiceCount(p, region+1), ways[region]))
		if c.place(pl, region, groups, core.CardBack, false) {
			return true
		}
	}
	for _, row := range []int{core.RowCamels, core.RowGold} {
		if rowOpen(d, row) && c.take(pl, row, core.CardBack, false) {
			return true
		}
	}
	return false
}
