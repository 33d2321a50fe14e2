package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
)

// SessionConfig configures a new Session.
type SessionConfig struct {
	Token    string
	GameID   string
	Logger   zerolog.Logger
	EventBus events.Publisher
}

// Entry is one accepted move and the board it left behind.
type Entry struct {
	Move   move.Move
	Player int
	State  states.State
	Digest int64
}

// Session owns a live board and its move history. Undo replays the
// history from the initialization token rather than reversing moves.
type Session struct {
	mu sync.Mutex

	id      string
	board   *Board
	history []Entry
	// initial is the digest before any move.
	initial int64
	ended   bool

	machine *states.Machine
	bus     events.Publisher
	logger  zerolog.Logger
}

// NewSession starts a game from cfg.Token.
func NewSession(cfg SessionConfig) (*Session, error) {
	board, err := NewBoard(cfg.Token)
	if err != nil {
		return nil, err
	}
	id := cfg.GameID
	if id == "" {
		id = uuid.New().String()
	}
	logger := cfg.Logger.With().Str("component", "Session").Str("game_id", id).Logger()
	s := &Session{
		id:      id,
		board:   board,
		initial: board.Digest(),
		bus:     cfg.EventBus,
		logger:  logger,
	}
	ctx := states.NewGameContext(id, board.Players(), cfg.Logger)
	s.machine = states.NewMachine(ctx, board.State(), cfg.EventBus)
	s.publish(events.NewGameStartedEvent(id, board.Token(), board.Players(), board.Seed()))
	logger.Info().Str("token", board.Token()).Msg("Game session created")
	return s, nil
}

func (s *Session) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Token()
}

// Snapshot returns an independent copy of the live board.
func (s *Session) Snapshot() *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// History returns a copy of the accepted moves.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...)
}

// Record returns a copy of the accepted moves and of the board they led
// to, taken under one lock so the two agree.
func (s *Session) Record() ([]Entry, *Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...), s.board.Clone()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Session) Digest() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Digest()
}

func (s *Session) State() states.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.State()
}

// Transitions returns the recorded state changes, oldest first.
func (s *Session) Transitions() []states.Transition { return s.machine.GetHistory() }

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Submit parses text as a move by the player to move and executes it.
func (s *Session) Submit(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.board.WhoseTurn()
	m, err := move.Parse(text, player)
	if err != nil {
		s.logger.Warn().Err(err).Str("move", text).Msg("Rejected unparsable move")
		s.publish(events.NewMoveRejectedEvent(s.id, player, text, err.Error()))
		return err
	}
	return s.submit(ctx, m)
}

// SubmitMove executes m.
func (s *Session) SubmitMove(ctx context.Context, m move.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit(ctx, m)
}

func (s *Session) submit(ctx context.Context, m move.Move) error {
	if err := checkContext(ctx); err != nil {
		s.logger.Warn().Err(err).Str("move", m.String()).Msg("Move submission cancelled")
		return err
	}
	before := s.board.State()
	if err := s.board.Execute(m); err != nil {
		ev := s.logger.Warn()
		var illegal *core.IllegalMoveError
		if errors.As(err, &illegal) && !errors.Is(err, core.ErrGameOver) {
			ev = s.logger.Error()
		}
		ev.Err(err).
			Str("move", m.String()).
			Int("player", m.Player).
			Str("state", before.String()).
			Msg("Rejected move")
		s.publish(events.NewMoveRejectedEvent(s.id, m.Player, m.String(), err.Error()))
		return err
	}

	digest := s.board.Digest()
	after := s.board.State()
	s.record(m, digest)
	s.observe(s.board.Report())
	gc := s.machine.GetContext()
	if m.Op == move.OpStart && gc.StartTime.IsZero() {
		gc.StartTime = time.Now()
	}

	s.logger.Debug().
		Str("move", m.String()).
		Int("player", m.Player).
		Str("state_before", before.String()).
		Str("state_after", after.String()).
		Int64("digest", digest).
		Msg("Move executed")
	s.publish(events.NewMoveExecutedEvent(s.id, m.Player, len(s.history), m.String(), before.String(), after.String(), digest))
	s.publishReport(s.board.Report())

	if s.board.GameOver() && !s.ended {
		s.ended = true
		gc.Winners = s.board.Winners()
		s.logger.Info().
			Ints("winners", gc.Winners).
			Ints("scores", s.board.Scores()).
			Dur("elapsed", gc.GetElapsedTime()).
			Msg("Game over")
		s.publish(events.NewGameEndedEvent(s.id, s.board.Winners(), s.board.Scores(), len(s.history), digest))
	}
	return nil
}

// record appends m to the history, unless m undid the previous pick or
// drop. In that case both moves are dropped from the record.
func (s *Session) record(m move.Move, digest int64) {
	if n := len(s.history); n > 0 && cancels(s.history[n-1].Move, m) {
		prior := s.initial
		if n > 1 {
			prior = s.history[n-2].Digest
		}
		if prior == digest {
			s.history = s.history[:n-1]
			return
		}
	}
	s.history = append(s.history, Entry{Move: m, Player: m.Player, State: s.board.State(), Digest: digest})
}

func cancels(prev, m move.Move) bool {
	switch {
	case prev.Op == move.OpPick && m.Op == move.OpDrop:
		return m.HasDest() && move.Drop(prev.Player, prev.Source).IsEquivalentTo(m)
	case prev.Op == move.OpDrop && m.Op == move.OpPick && prev.HasDest():
		return move.Pick(prev.Player, prev.Dest, m.Depth).IsEquivalentTo(m)
	}
	return false
}

func (s *Session) observe(rep Report) {
	for _, t := range rep.Transitions {
		if err := s.machine.Observe(t.To, t.Trigger.String()); err != nil {
			s.logger.Error().Err(err).Msg("Failed to record state transition")
		}
	}
}

func (s *Session) publishReport(rep Report) {
	if r := rep.Roll; r != nil {
		s.publish(events.NewDiceRolledEvent(s.id, r.Day, r.Rows, r.Faces, r.Summary))
	}
	for _, w := range rep.Weeks {
		s.publish(events.NewWeekScoredEvent(s.id, w.Week, w.Points))
	}
	for _, c := range rep.Caravans {
		s.publish(events.NewCaravanScoredEvent(s.id, c.Points, c.Emptied))
	}
}

// replay builds a fresh board and executes the first n history entries.
// check, if non-nil, sees the board after each move.
func (s *Session) replay(ctx context.Context, n int, check func(i int, b *Board) error) (*Board, error) {
	b, err := NewBoard(s.board.Token())
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if err := b.Execute(s.history[i].Move); err != nil {
			return nil, fmt.Errorf("replaying move %d: %w", i, err)
		}
		if check != nil {
			if err := check(i, b); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// UndoTo truncates the history to n moves and rebuilds the board.
func (s *Session) UndoTo(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoTo(ctx, n)
}

func (s *Session) undoTo(ctx context.Context, n int) error {
	if n < 0 || n > len(s.history) {
		return fmt.Errorf("undo to %d: history has %d moves", n, len(s.history))
	}
	b, err := s.replay(ctx, n, nil)
	if err != nil {
		s.logger.Error().Err(err).Int("target", n).Msg("Undo replay failed")
		return err
	}
	removed := len(s.history) - n
	s.board = b
	s.history = s.history[:n]
	s.ended = b.GameOver()
	s.machine.Reset(b.State())
	gc := s.machine.GetContext()
	if !s.ended {
		gc.Winners = nil
	}
	if !started(s.history) {
		gc.StartTime = time.Time{}
	}
	s.logger.Debug().Int("removed", removed).Int("remaining", n).Msg("Moves undone")
	s.publish(events.NewMovesUndoneEvent(s.id, removed, n))
	return nil
}

func started(hist []Entry) bool {
	for _, e := range hist {
		if e.Move.Op == move.OpStart {
			return true
		}
	}
	return false
}

// UndoToLast rewinds to the most recent earlier point where the game was
// in state st.
func (s *Session) UndoToLast(ctx context.Context, st states.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 2; i >= 0; i-- {
		if s.history[i].State == st {
			return s.undoTo(ctx, i+1)
		}
	}
	return fmt.Errorf("no earlier %s in history", st)
}

// Verify replays the whole history on a fresh board and compares each
// digest with the recorded one, then the final digest with the live board.
func (s *Session) Verify(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.replay(ctx, len(s.history), func(i int, b *Board) error {
		if got, want := b.Digest(), s.history[i].Digest; got != want {
			return &core.ReplayDivergenceError{Index: i, Want: want, Got: got}
		}
		return nil
	})
	if err == nil {
		if got, want := b.Digest(), s.board.Digest(); got != want {
			err = &core.ReplayDivergenceError{Index: len(s.history), Want: want, Got: got}
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Int("moves", len(s.history)).Msg("Replay verification failed")
		return err
	}
	return nil
}

// Reinit restarts the session from token and clears the history.
func (s *Session) Reinit(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.Reinit(token); err != nil {
		return err
	}
	s.history = nil
	s.ended = false
	s.initial = s.board.Digest()
	s.machine.Reset(s.board.State())
	gc := s.machine.GetContext()
	gc.StartTime, gc.Winners = time.Time{}, nil
	s.publish(events.NewGameStartedEvent(s.id, s.board.Token(), s.board.Players(), s.board.Seed()))
	return nil
}

// Load replays a recorded move list onto a fresh session.
func Load(ctx context.Context, cfg SessionConfig, moves []string) (*Session, error) {
	s, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	for i, text := range moves {
		if err := s.Submit(ctx, text); err != nil {
			return nil, fmt.Errorf("move %d %q: %w", i, text, err)
		}
	}
	return s, nil
}
