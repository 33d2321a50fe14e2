package strategy

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/random"
)

// Decision is the robot's answer for one position.
type Decision struct {
	Move move.Move
	// Pass is set when the robot has nothing to play.
	Pass   bool
	Stage  string
	Step   string
	Reason string
}

// Robot plays one seat. It plans a whole turn at once and hands the moves
// out one at a time, planning again whenever the board is not the one the
// plan expects.
type Robot struct {
	core   *Core
	rng    *rand.Rand
	logger zerolog.Logger

	plan   []move.Move
	expect int64
	stage  string
	step   string
}

// NewRobot creates a robot playing variant v. The seed only decides ties.
func NewRobot(v *Variant, seed int64, logger zerolog.Logger) *Robot {
	return &Robot{
		core:   NewCore(v, seed, logger),
		rng:    rand.New(random.New(seed + 1)),
		logger: logger.With().Str("component", "robot").Str("variant", v.Name).Logger(),
	}
}

// NewRobotNamed creates a robot from a built-in variant.
func NewRobotNamed(name string, seed int64, logger zerolog.Logger) (*Robot, error) {
	v, err := LoadVariant(name)
	if err != nil {
		return nil, err
	}
	return NewRobot(v, seed, logger), nil
}

func (r *Robot) Variant() string { return r.core.v.Name }

// Pending is the number of planned moves not handed out yet.
func (r *Robot) Pending() int { return len(r.plan) }

// Reset drops the current plan.
func (r *Robot) Reset() {
	r.plan = nil
	r.stage, r.step = "", ""
}

// Decide returns the next move for the player to move on b.
func (r *Robot) Decide(b *game.Board) (Decision, error) {
	if b.GameOver() {
		r.Reset()
		return Decision{Pass: true, Reason: "game over"}, core.ErrGameOver
	}
	if len(r.plan) > 0 && (b.Digest() != r.expect || !b.IsLegal(r.plan[0])) {
		r.logger.Debug().Int("dropped", len(r.plan)).Str("state", b.State().String()).Msg("Plan no longer matches the board")
		r.Reset()
	}
	if len(r.plan) == 0 {
		p := r.core.Plan(b)
		if len(p.Moves) > 0 {
			r.plan, r.stage, r.step = p.Moves, p.Stage, p.Step
			r.logger.Debug().
				Int("player", b.WhoseTurn()).
				Int("moves", len(p.Moves)).
				Str("stage", p.Stage).
				Str("step", p.Step).
				Msg("Planned turn")
		}
	}
	if len(r.plan) > 0 {
		return r.next(b), nil
	}

	m, ok := r.progress(b)
	if !ok {
		return Decision{Pass: true, Reason: "no legal move"},
			fmt.Errorf("%w: %s", core.ErrStrategyExhausted, b.State())
	}
	r.logger.Debug().Str("move", m.String()).Str("state", b.State().String()).Msg("No policy, playing any legal move")
	return Decision{Move: m, Reason: "fallback"}, nil
}

func (r *Robot) next(b *game.Board) Decision {
	m := r.plan[0]
	r.plan = r.plan[1:]
	after := b.Clone()
	if err := after.Execute(m); err == nil {
		r.expect = after.Digest()
	}
	return Decision{Move: m, Stage: r.stage, Step: r.step, Reason: "plan"}
}

// progress picks a legal move that moves the game along: Done when it is
// allowed, otherwise a move that does not put a held object back where it
// came from. A pending resignation is taken back.
func (r *Robot) progress(b *game.Board) (move.Move, bool) {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return move.Move{}, false
	}
	if b.State() == states.Resign {
		for _, m := range legal {
			if m.Op == move.OpResign {
				return m, true
			}
		}
	}
	var forward []move.Move
	back := b.PickedFrom()
	for _, m := range legal {
		if m.Op == move.OpDone {
			return m, true
		}
		if back != core.NoCell && m.Op == move.OpDrop && m.Dest == loc(back) {
			continue
		}
		forward = append(forward, m)
	}
	if len(forward) == 0 {
		forward = legal
	}
	return forward[r.rng.Intn(len(forward))], true
}
