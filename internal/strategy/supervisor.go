package strategy

import (
	"sort"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

// movementDiscount is the free stretch the movement building grants.
const movementDiscount = 3

// trackArm places a track position on one of the four arms around the hub.
// The hub itself is arm -1 at distance 0.
func trackArm(p int) (arm, dist int) {
	switch {
	case p == core.Hub || p == core.HubAlias:
		return -1, 0
	case p < core.Hub:
		return core.DirWest, core.Hub - p
	case p < 18:
		return core.DirEast, p - core.Hub
	case p < core.HubAlias:
		return core.DirNorth, core.HubAlias - p
	}
	return core.DirSouth, p - core.HubAlias
}

// TrackDistance is the number of steps between two track positions.
func TrackDistance(from, to int) int {
	a1, d1 := trackArm(from)
	a2, d2 := trackArm(to)
	if a1 == a2 {
		return abs(d1 - d2)
	}
	return d1 + d2
}

// SupCost is the gold needed to move the supervisor from one position to
// another with a die of face.
func SupCost(from, to, face int, movement bool) int {
	diff := abs(face - TrackDistance(from, to))
	if movement {
		diff -= movementDiscount
		if diff < 0 {
			diff = 0
		}
	}
	return diff
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// SupOption rates one supervisor destination for one dice row.
type SupOption struct {
	Row  int
	Dest int
	Cost int
	// Own and Foreign are the occupied houses next to Dest.
	Own     []core.CellID
	Foreign []core.CellID
	// Value is the best group value among the own houses.
	Value    int
	Complete bool
	Good     bool
	VeryGood bool
}

// NearHub reports destinations adjacent to the hub. They are tried last.
func (o SupOption) NearHub() bool {
	_, dist := trackArm(o.Dest)
	return dist <= 1
}

// ComputeSupervisor rates every destination reachable with every dice row.
// A destination is good when the supervisor would send one of the player's
// own cubes from an unfinished souk to the caravan at a cost of at most two
// gold. It is very good when that cube is also worth sacrificing: its souk
// is unfinished, or finished but cheap while the week still has time or the
// player has camels to buy it back.
func (d *PlayData) ComputeSupervisor() []SupOption {
	p := d.Player
	var out []SupOption
	for row := 0; row < core.NumRows; row++ {
		if d.Dice[row] == 0 {
			continue
		}
		face := d.Faces[row]
		for pos := 0; pos < core.TrackCells; pos++ {
			if !core.IsTrackCell(pos) || pos == d.Supervisor {
				continue
			}
			o := SupOption{Row: row, Dest: pos, Cost: SupCost(d.Supervisor, pos, face, d.Has(p, core.ExtraMovement))}
			d.rateSupervisor(&o)
			out = append(out, o)
		}
	}
	return out
}

func (d *PlayData) rateSupervisor(o *SupOption) {
	p := d.Player
	affordable := o.Cost <= 2 && o.Cost <= d.Gold[p]
	for _, h := range core.AdjacentHouses(core.TrackCell(o.Dest)) {
		g, ok := d.GroupOf(h)
		if !ok || !g.Used[h-g.Houses[0]] {
			continue
		}
		if g.Owner != p {
			o.Foreign = append(o.Foreign, h)
			continue
		}
		o.Own = append(o.Own, h)
		full := g.Full()
		v := g.Value
		if !full {
			o.Good = o.Good || affordable
		}
		cheap := v <= 4 && full && (d.DayInWeek < 6 || d.Camels[p] > 0)
		rebuy := full && d.Camels[p] > 1
		if affordable && (cheap || !full || rebuy) {
			o.VeryGood = true
			if v > o.Value {
				o.Value = v
				o.Complete = full
			}
		}
	}
}

// critical reports whether losing the cube in house h would break a
// finished souk with days left in the week.
func (d *PlayData) critical(h core.CellID) bool {
	g, ok := d.GroupOf(h)
	if !ok || !g.Used[h-g.Houses[0]] {
		return false
	}
	if d.Week == 1 || d.DayInWeek >= 5 {
		return false
	}
	return g.Full()
}

// supervisorAlone reports whether stopping at o leaves the player's
// finished souks safe, or the player holds camels to buy a cube back.
func (d *PlayData) supervisorAlone(o SupOption) bool {
	for _, h := range o.Own {
		if d.critical(h) && d.Camels[d.Player] == 0 {
			return false
		}
	}
	if len(o.Own) > 1 && d.Week > 1 && d.DayInWeek <= 3 {
		return d.Camels[d.Player] > 0
	}
	return true
}

// SupervisorMove picks the move to make with the supervisor, if any is
// worth it. Cheaper moves win; for equal cost the rows are tried starting
// with the row an opponent wants most, destinations next to the hub last.
func (d *PlayData) SupervisorMove(opts []SupOption, maxCost int) (SupOption, bool) {
	order := []int{d.DiceRowAgainstOpponent(), core.RowVase, core.RowChest, core.RowBarrel, core.RowBag, core.RowCamels, core.RowGold}
	seen := make(map[int]bool)
	rank := make(map[int]int)
	for _, r := range order {
		if r >= 0 && !seen[r] {
			rank[r] = len(seen)
			seen[r] = true
		}
	}
	cands := make([]SupOption, 0, len(opts))
	for _, o := range opts {
		if o.VeryGood && o.Cost <= maxCost && d.supervisorAlone(o) {
			cands = append(cands, o)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if rank[a.Row] != rank[b.Row] {
			return rank[a.Row] < rank[b.Row]
		}
		if a.NearHub() != b.NearHub() {
			return !a.NearHub()
		}
		if len(a.Own) != len(b.Own) {
			return len(a.Own) > len(b.Own)
		}
		return a.Dest < b.Dest
	})
	if len(cands) == 0 {
		return SupOption{}, false
	}
	return cands[0], true
}

// Designate chooses which of the watched cubes goes to the caravan first.
// Between an own cube and an opponent's the opponent's goes first unless
// only one caravan cell is left; between opponents the one with more
// caravan cubes goes first.
func (d *PlayData) Designate(watched []core.CellID, owner func(core.CellID) int) core.CellID {
	if len(watched) == 0 {
		return core.NoCell
	}
	if len(watched) == 1 {
		return watched[0]
	}
	a, b := watched[0], watched[1]
	oa, ob := owner(a), owner(b)
	switch {
	case oa == d.Player && ob != d.Player:
		if d.CaravanOpen() == 1 {
			return a
		}
		return b
	case ob == d.Player && oa != d.Player:
		if d.CaravanOpen() == 1 {
			return b
		}
		return a
	}
	if d.CaravanCubes(oa) > d.CaravanCubes(ob) {
		return a
	}
	return b
}
