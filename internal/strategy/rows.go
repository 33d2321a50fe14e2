package strategy

import "github.com/mitchelldurbincs/yspahan/internal/game/core"

// DiceRowAgainstOpponent picks the dice row whose loss hurts the opponents
// still to move this round the most. Taking a row removes it for them.
func (d *PlayData) DiceRowAgainstOpponent() int {
	opp := d.OpponentsToMove()
	high, highValue, highRegion := -1, -1, -1
	for q, active := range opp {
		if !active {
			continue
		}
		values, _ := d.RegionValues(q, len(d.Cards[q]) > 0)
		for r, v := range values {
			if v > highValue || high < 0 {
				high, highValue, highRegion = q, v, r
			}
		}
	}
	if high < 0 {
		return d.highDiceRow(opp)
	}
	if highValue >= 6 {
		return highRegion + 1
	}
	if d.DiceCount(high, core.RowCamels) >= 3 {
		return core.RowCamels
	}
	if d.DiceCount(high, core.RowGold) >= 5 {
		return core.RowGold
	}
	// an opponent one building short of the full set
	for q, active := range opp {
		if !active || d.BuildingsOwned(q) != int(core.NumBuildings)-1 {
			continue
		}
		bld, _ := d.MissingBuilding(q)
		cost := core.BuildingCosts[bld]
		if d.Camels[q] < cost.Camels && d.Camels[q]+d.DiceCount(q, core.RowCamels) >= cost.Camels {
			return core.RowCamels
		}
		if d.Gold[q] < cost.Gold && d.Gold[q]+d.DiceCount(q, core.RowGold) >= cost.Gold {
			return core.RowGold
		}
	}
	if d.DiceCount(high, core.RowCamels) >= 2 {
		return core.RowCamels
	}
	if d.DiceCount(high, core.RowGold) >= 4 && d.Week == 1 {
		return core.RowGold
	}
	if highValue >= 3 {
		return highRegion + 1
	}
	if d.DiceCount(high, core.RowGold) >= 4 {
		return core.RowGold
	}
	return d.highDiceRow(opp)
}

// highDiceRow prefers the most valuable neighborhood an opponent could
// still use, then camels, then gold, then any row with dice.
func (d *PlayData) highDiceRow(opp []bool) int {
	for row := core.RowVase; row >= core.RowBag; row-- {
		if d.Dice[row] == 0 {
			continue
		}
		for q, active := range opp {
			if active && d.RegionUsable(q, row-1) {
				return row
			}
		}
	}
	if d.Dice[core.RowCamels] > 0 {
		return core.RowCamels
	}
	if d.Dice[core.RowGold] > 0 {
		return core.RowGold
	}
	for row := core.RowVase; row >= core.RowBag; row-- {
		if d.Dice[row] > 0 {
			return row
		}
	}
	return -1
}

// cardPriority lists the cards worth giving up for an extra die, most
// expendable first. allBuilt is set when the buildings no longer need the
// building credits.
func cardPriority(allBuilt bool) []core.CardKind {
	if allBuilt {
		return []core.CardKind{
			core.CardBuyNoCamels, core.CardBuyNoGold, core.CardSwapCamelsGold, core.Card3Gold,
			core.Card3Camels, core.CardScoreGold, core.CardScoreCamels, core.CardPlaceCaravan, core.CardPlaceBoard,
		}
	}
	return []core.CardKind{
		core.CardScoreGold, core.CardScoreCamels, core.Card3Gold, core.CardSwapCamelsGold,
		core.Card3Camels, core.CardPlaceCaravan, core.CardPlaceBoard, core.CardBuyNoGold, core.CardBuyNoCamels,
	}
}

// BoostCard picks the card to spend on an extra die, if any.
func (d *PlayData) BoostCard(allBuilt bool) (core.CardKind, bool) {
	if len(d.Cards[d.Player]) == 0 {
		return core.CardBack, false
	}
	for _, k := range cardPriority(allBuilt) {
		if d.HasCard(d.Player, k) {
			return k, true
		}
	}
	return core.CardBack, false
}
