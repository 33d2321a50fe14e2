package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/strategy"
)

// ErrMoveLimit is returned when a game runs past Match.MaxMoves.
var ErrMoveLimit = errors.New("move limit reached")

// Saver persists a session, usually a *store.Store.
type Saver interface {
	SaveSession(ctx context.Context, s *game.Session) error
}

// Result is the outcome of one game.
type Result struct {
	GameID  string
	Token   string
	Moves   int
	Scores  []int
	Winners []int
	Digest  int64
}

// Winner names the winners of r.
func (r Result) Winner(m *Match) []string {
	names := make([]string, len(r.Winners))
	for i, w := range r.Winners {
		names[i] = m.Seats[w].Name
	}
	return names
}

// Runner plays the games of a match.
type Runner struct {
	m      *Match
	bus    events.Publisher
	saver  Saver
	delay  time.Duration
	logger zerolog.Logger

	// OnStart and OnMove, when set, see each new session and each accepted
	// move.
	OnStart func(s *game.Session)
	OnMove  func(s *game.Session, e game.Entry)
}

// RunnerConfig configures a Runner. Bus and Saver may be nil.
type RunnerConfig struct {
	Bus    events.Publisher
	Saver  Saver
	Delay  time.Duration
	Logger zerolog.Logger
}

func NewRunner(m *Match, cfg RunnerConfig) *Runner {
	return &Runner{
		m:      m,
		bus:    cfg.Bus,
		saver:  cfg.Saver,
		delay:  cfg.Delay,
		logger: cfg.Logger.With().Str("component", "match").Logger(),
	}
}

// Run plays every game of the match in order.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var results []Result
	for n := 0; n < r.m.Games; n++ {
		res, err := r.Play(ctx, n)
		if err != nil {
			return results, fmt.Errorf("game %d: %w", n, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Play plays game n of the match to the end.
func (r *Runner) Play(ctx context.Context, n int) (Result, error) {
	token := r.m.Token(n)
	sess, err := game.NewSession(game.SessionConfig{
		Token:    token,
		GameID:   uuid.New().String(),
		Logger:   r.logger,
		EventBus: r.bus,
	})
	if err != nil {
		return Result{}, err
	}
	if r.OnStart != nil {
		r.OnStart(sess)
	}
	robots := make([]*strategy.Robot, r.m.Players())
	for p, seat := range r.m.Seats {
		seed := r.m.Seed + int64(n)*int64(core.MaxPlayers) + int64(p)
		robots[p], err = strategy.NewRobotNamed(seat.Variant, seed, r.logger.With().Str("seat", seat.Name).Logger())
		if err != nil {
			return Result{}, err
		}
	}
	log := r.logger.With().Str("game_id", sess.ID()).Logger()
	log.Info().Str("token", token).Msg("Match game started")

	err = r.playOut(ctx, sess, robots)
	if r.saver != nil {
		if serr := r.saver.SaveSession(ctx, sess); serr != nil {
			log.Error().Err(serr).Msg("Failed to save game")
			if err == nil {
				err = serr
			}
		}
	}
	if err != nil {
		return Result{}, err
	}

	b := sess.Snapshot()
	res := Result{
		GameID:  sess.ID(),
		Token:   token,
		Moves:   sess.Len(),
		Scores:  b.Scores(),
		Winners: b.Winners(),
		Digest:  sess.Digest(),
	}
	log.Info().Int("moves", res.Moves).Ints("scores", res.Scores).Strs("winners", res.Winner(r.m)).Msg("Match game finished")
	return res, nil
}

func (r *Runner) playOut(ctx context.Context, sess *game.Session, robots []*strategy.Robot) error {
	for i := 0; i < r.m.MaxMoves; i++ {
		b := sess.Snapshot()
		d, err := robots[b.WhoseTurn()].Decide(b)
		if errors.Is(err, core.ErrGameOver) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sess.SubmitMove(ctx, d.Move); err != nil {
			return err
		}
		if r.OnMove != nil {
			hist := sess.History()
			if len(hist) > 0 {
				r.OnMove(sess, hist[len(hist)-1])
			}
		}
		if r.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay):
			}
		}
	}
	return fmt.Errorf("%w after %d moves", ErrMoveLimit, r.m.MaxMoves)
}
