package strategy

// Slot is a group the filler may complete: Need more cubes earn Value.
type Slot struct {
	Group int
	Need  int
	Value int
}

// maxFillDepth bounds the search. A region never has more than four souks.
const maxFillDepth = 5

// FillGroups chooses which groups of one region to complete with cubes
// tokens. Started groups must be finished before an empty one is opened, so
// empty groups are only tried when no started group is left. It returns the
// best total value and the groups in the order they are filled.
func FillGroups(cubes int, started, empty []Slot) (int, []int) {
	return compValue(0, cubes, started, empty, 0)
}

func compValue(level, cubes int, started, empty []Slot, points int) (int, []int) {
	if cubes == 0 || level == maxFillDepth {
		return points, nil
	}
	best, way := points, []int(nil)

	open := false
	for i, s := range started {
		if s.Need <= 0 {
			continue
		}
		open = true
		if cubes < s.Need {
			continue
		}
		rest := without(started, i)
		if v, w := compValue(level+1, cubes-s.Need, rest, empty, points+s.Value); v > best {
			best, way = v, append([]int{s.Group}, w...)
		}
	}
	if open {
		return best, way
	}

	for i, s := range empty {
		if s.Need <= 0 || cubes < s.Need {
			continue
		}
		rest := without(empty, i)
		if v, w := compValue(level+1, cubes-s.Need, started, rest, points+s.Value); v > best {
			best, way = v, append([]int{s.Group}, w...)
		}
	}
	return best, way
}

// without copies slots with slot i marked used.
func without(slots []Slot, i int) []Slot {
	out := append([]Slot(nil), slots...)
	out[i].Need = 0
	return out
}

// regionSlots splits the open groups of region into those p started and the
// untouched ones.
func (d *PlayData) regionSlots(p, region int) (started, empty []Slot) {
	for i, g := range d.Regions[region] {
		if g.Full() {
			continue
		}
		s := Slot{Group: i, Need: g.Remaining(), Value: d.GroupValue(p, g)}
		switch g.Owner {
		case -1:
			empty = append(empty, s)
		case p:
			started = append(started, s)
		}
	}
	return started, empty
}

// RegionValue is the best value p can complete in region with the dice of
// its row, plus one when a card is added. The groups are returned in fill
// order.
func (d *PlayData) RegionValue(p, region int, withCard bool) (int, []int) {
	n := d.DiceCount(p, region+1)
	if n == 0 || !d.RegionUsable(p, region) {
		return -1, nil
	}
	if withCard {
		n++
	}
	started, empty := d.regionSlots(p, region)
	return FillGroups(n, started, empty)
}

// RegionValues evaluates all four regions for p.
func (d *PlayData) RegionValues(p int, withCard bool) (values [NumRegions]int, ways [NumRegions][]int) {
	for r := 0; r < NumRegions; r++ {
		values[r], ways[r] = d.RegionValue(p, r, withCard)
	}
	return values, ways
}

// groupStartedFit returns the largest started group p can finish with cubes
// tokens, falling back to the smallest started one.
func (d *PlayData) groupStartedFit(p, region, cubes int) int {
	gs := d.Regions[region]
	for i := len(gs) - 1; i >= 0; i-- {
		if gs[i].Owner == p && !gs[i].Full() && gs[i].Remaining() <= cubes {
			return i
		}
	}
	return d.GroupStarted(p, region)
}

// PlacementOrder lists the groups of region in the order p should put
// cubes cubes into them. With a way from FillGroups those groups come
// first; leftover cubes go to started groups and then to the smallest empty
// one, as many times as a group fits.
func (d *PlayData) PlacementOrder(p, region, cubes int, way []int) []int {
	if cubes > d.Cubes[p] && d.Cubes[p] > 0 {
		cubes = d.Cubes[p]
	}
	// work on a private copy of the region
	gs := append([]Group(nil), d.Regions[region]...)
	sim := *d
	sim.Regions[region] = gs

	var order []int
	fill := func(i int) {
		if gs[i].Full() || cubes == 0 {
			return
		}
		n := gs[i].Remaining()
		if n > cubes {
			n = cubes
		}
		gs[i].Filled += n
		gs[i].Owner = p
		cubes -= n
		order = append(order, i)
	}
	for _, i := range way {
		fill(i)
	}
	for guard := 0; cubes > 0 && guard < len(gs)+1; guard++ {
		if g := sim.groupStartedFit(p, region, cubes); g >= 0 {
			fill(g)
			continue
		}
		g := sim.SmallestEmptyGroup(region)
		if g < 0 {
			break
		}
		fill(g)
	}
	return order
}
