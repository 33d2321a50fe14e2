package strategy

import (
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

// finishTurn plays the build phase and ends the turn. Moves already in the
// plan stay even when the build phase cannot be finished.
func (c *Core) finishTurn(pl *planner) {
	if pl.b.WhoseTurn() != pl.p {
		return
	}
	switch pl.state() {
	case states.Prebuild, states.Pass:
		if !pl.done() {
			return
		}
	}
	if pl.state() != states.Build {
		return
	}
	d := NewPlayData(pl.b, pl.p)
	if d.LastRound() {
		c.lastRoundCards(pl, d)
	} else {
		c.useCards(pl, d)
	}
	c.buildBest(pl, NewPlayData(pl.b, pl.p))
	if pl.state() == states.Build || pl.state() == states.Confirm {
		pl.done()
	}
}

// useCards plays the cards that pay off right away: a caravan card while the
// caravan has room and a board card that finishes one of the player's souks.
func (c *Core) useCards(pl *planner, d *PlayData) {
	p := d.Player
	if d.HasCard(p, core.CardPlaceCaravan) && d.CaravanOpen() > 0 && d.Cubes[p] > 0 {
		pl.try(func(s *planner) bool { return s.confirmEffect(core.CardPlaceCaravan) })
	}
	if d.HasCard(p, core.CardPlaceBoard) && d.Cubes[p] > 0 {
		if house := c.finishingHouse(d); house != core.NoCell {
			pl.try(func(s *planner) bool {
				return s.playEffect(core.CardPlaceBoard) && s.transfer(s.mine(core.MiscCubes), house) &&
					s.state() == states.ConfirmCard && s.done()
			})
		}
	}
}

// finishingHouse finds an empty house of a souk the player is one cube short
// of finishing, the most valuable souk first.
func (c *Core) finishingHouse(d *PlayData) core.CellID {
	best, house := -1, core.NoCell
	for region := 0; region < NumRegions; region++ {
		for _, g := range d.Regions[region] {
			if g.Owner != d.Player || g.Remaining() != 1 {
				continue
			}
			for i, used := range g.Used {
				if !used && d.GroupValue(d.Player, g) > best {
					best, house = d.GroupValue(d.Player, g), g.Houses[i]
				}
			}
		}
	}
	return house
}

// lastRoundCards turns everything left into points on the final day. The
// resources a building still needs are held back from the scoring cards.
func (c *Core) lastRoundCards(pl *planner, d *PlayData) {
	p := d.Player
	for _, k := range []core.CardKind{core.Card3Gold, core.Card3Camels} {
		for i := d.CountCard(p, k); i > 0; i-- {
			if !pl.try(func(s *planner) bool { return s.confirmEffect(k) }) {
				break
			}
		}
	}
	c.useCards(pl, NewPlayData(pl.b, p))

	d = NewPlayData(pl.b, p)
	keepCamels, keepGold := 0, 0
	if bld, ok := c.nextBuilding(d); ok {
		keepCamels, keepGold = c.needs(d, bld)
	}
	if d.HasCard(p, core.CardScoreCamels) {
		n := min(d.Camels[p]-keepCamels, core.ScoreCamelLimit)
		pl.try(func(s *planner) bool { return s.score(core.CardScoreCamels, n) })
	}
	if d.HasCard(p, core.CardScoreGold) {
		n := min(d.Gold[p]-keepGold, core.ScoreGoldLimit)
		pl.try(func(s *planner) bool { return s.score(core.CardScoreGold, n) })
	}
}

// nextBuilding is the first building of the priority list the player could
// pay for now, counting credits.
func (c *Core) nextBuilding(d *PlayData) (core.Building, bool) {
	p := d.Player
	for _, bld := range c.v.Priority() {
		if d.Has(p, bld) {
			continue
		}
		camels, gold := c.needs(d, bld)
		if camels <= d.Camels[p] && gold <= d.Gold[p] {
			return bld, true
		}
		if c.v.ExactBuild {
			break
		}
	}
	return 0, false
}

// needs is what bld still costs p after the building credits.
func (c *Core) needs(d *PlayData, bld core.Building) (camels, gold int) {
	p := d.Player
	cost := core.BuildingCosts[bld]
	camels, gold = cost.Camels, cost.Gold
	if d.CamelCredits[p] > 0 {
		camels = 0
	}
	if d.GoldCredits[p] > 0 {
		gold = 0
	}
	return camels, gold
}

// buildBest builds the first building of the priority list that can be
// paid for, using the buy-without cards and the swap card when they make
// the difference.
func (c *Core) buildBest(pl *planner, d *PlayData) {
	p := d.Player
	if d.Cubes[p] == 0 {
		return
	}
	for _, bld := range c.v.Priority() {
		if d.Has(p, bld) {
			continue
		}
		trade := bld >= core.ExtraMovement || d.Gold[p] >= 4
		if pl.try(func(s *planner) bool { return c.buildOne(s, d, bld, trade) }) {
			c.logger.Debug().Int("player", p).Str("building", bld.String()).Msg("Building")
			return
		}
		if c.v.ExactBuild {
			return
		}
	}
}

func (c *Core) buildOne(pl *planner, d *PlayData, bld core.Building, trade bool) bool {
	p := d.Player
	camels, gold := d.Camels[p], d.Gold[p]
	needCamels, needGold := c.needs(d, bld)

	if needCamels > camels && d.HasCard(p, core.CardBuyNoCamels) {
		if !pl.confirmEffect(core.CardBuyNoCamels) {
			return false
		}
		needCamels = 0
	}
	if needGold > gold && bld != core.ExtraCamel && d.HasCard(p, core.CardBuyNoGold) {
		if !pl.confirmEffect(core.CardBuyNoGold) {
			return false
		}
		needGold = 0
	}
	if (needCamels > camels || needGold > gold) && trade && d.HasCard(p, core.CardSwapCamelsGold) &&
		needCamels+needGold <= camels+gold {
		switch {
		case needCamels > camels:
			if !pl.swap(needCamels-camels, true) {
				return false
			}
			camels, gold = needCamels, gold-(needCamels-camels)
		default:
			if !pl.swap(needGold-gold, false) {
				return false
			}
			camels, gold = camels-(needGold-gold), needGold
		}
	}
	if needCamels > camels || needGold > gold {
		return false
	}
	return pl.build(bld)
}
