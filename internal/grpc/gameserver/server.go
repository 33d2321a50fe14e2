package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/game/states"
	"github.com/mitchelldurbincs/yspahan/internal/store"
	"github.com/mitchelldurbincs/yspahan/internal/strategy"
)

// Server configuration constants
const (
	cleanupInterval = time.Minute
	watchBuffer     = 128
	defaultPlayers  = 2
)

// Config configures a Server.
type Config struct {
	MaxGames    int
	IdleTimeout time.Duration
	// Variant is the robot variant used when a request names none.
	Variant string
	Logger  zerolog.Logger
}

// Server implements yspahan.v1.GameService.
type Server struct {
	games  *GameManager
	logger zerolog.Logger
}

// NewServer creates a game server. Call Run to start idle game cleanup.
func NewServer(cfg Config) *Server {
	if cfg.Variant == "" {
		cfg.Variant = "standard"
	}
	return &Server{
		games:  NewGameManager(cfg.MaxGames, cfg.IdleTimeout, cfg.Variant, cfg.Logger),
		logger: cfg.Logger.With().Str("component", "game_server").Logger(),
	}
}

// Games exposes the game manager to wire archives and subscribers.
func (s *Server) Games() *GameManager { return s.games }

// Run evicts idle games until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.games.RunCleanup(ctx, cleanupInterval)
}

// toStatus maps engine errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, core.ErrParse), errors.Is(err, core.ErrUnknownInit), errors.Is(err, core.ErrInvalidPlayer),
		errors.Is(err, strategy.ErrUnknownVariant):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrIllegalMove), errors.Is(err, core.ErrGameOver):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, core.ErrReplayDivergence):
		return status.Error(codes.DataLoss, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *Server) lookup(req *structpb.Struct) (*gameInstance, error) {
	id, err := requireGameID(req)
	if err != nil {
		return nil, err
	}
	g, ok := s.games.GetGame(id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "game %s not found", id)
	}
	g.touch(s.games.now())
	return g, nil
}

// CreateGame starts a game.
//
// Request: token, or players (default 2), seed and revision.
// Response: the game state.
func (s *Server) CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := stringField(req, "token")
	if token == "" {
		players, err := intField(req, "players", defaultPlayers)
		if err != nil {
			return nil, err
		}
		seed, err := intField(req, "seed", int(time.Now().UnixNano()&0x7fffffff))
		if err != nil {
			return nil, err
		}
		revision, err := intField(req, "revision", 0)
		if err != nil {
			return nil, err
		}
		token = fmt.Sprintf("Yspahan %d %d", seed, players)
		if revision > 0 {
			token = fmt.Sprintf("%s %d", token, revision)
		}
	}
	g, err := s.games.CreateGame(token)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info().Str("game_id", g.id).Str("token", token).Msg("Creating new game")
	return newStruct(stateFields(g.session))
}

// LoadGame brings an archived game back.
//
// Request: game_id. Response: the game state.
func (s *Server) LoadGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireGameID(req)
	if err != nil {
		return nil, err
	}
	g, err := s.games.LoadGame(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(stateFields(g.session))
}

// SubmitMove plays a move for the player to move.
//
// Request: game_id, move, player and idempotency_key (both optional). A
// given player must be the one to move, except on a retry answered from
// the idempotency cache.
// Response: accepted, move, and the game state.
func (s *Server) SubmitMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	text := stringField(req, "move")
	if text == "" {
		return nil, status.Error(codes.InvalidArgument, "move is required")
	}
	key := stringField(req, "idempotency_key")
	player, err := intField(req, "player", -1)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if cached := g.idempotency.Check(player, key); cached != nil {
		s.logger.Debug().Str("game_id", g.id).Str("idempotency_key", key).Msg("Returning cached response for idempotent request")
		return cached, nil
	}
	if turn := g.session.Snapshot().WhoseTurn(); player >= 0 && player != turn {
		return nil, status.Errorf(codes.FailedPrecondition, "player %d is not to move, player %d is", player, turn)
	}
	if err := g.session.Submit(ctx, text); err != nil {
		return nil, toStatus(err)
	}
	if gameOver(g) {
		s.games.save(ctx, g)
	}
	fields := stateFields(g.session)
	fields["accepted"] = true
	fields["move"] = text
	resp, err := newStruct(fields)
	if err != nil {
		return nil, err
	}
	g.idempotency.Store(player, key, resp)
	return resp, nil
}

// GetState describes a game.
//
// Request: game_id, history (bool). Response: the game state, plus the
// move list when history is set.
func (s *Server) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	fields := stateFields(g.session)
	if boolField(req, "history", false) {
		hist := g.session.History()
		moves := make([]interface{}, len(hist))
		for i, e := range hist {
			moves[i] = e.Move.String()
		}
		fields["history"] = moves
	}
	return newStruct(fields)
}

// LegalMoves lists the moves the player to move may make.
//
// Request: game_id. Response: moves, done_allowed, whose_turn.
func (s *Server) LegalMoves(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	b := g.session.Snapshot()
	return newStruct(map[string]interface{}{
		"game_id":      g.id,
		"state":        b.State().String(),
		"whose_turn":   b.WhoseTurn(),
		"moves":        moveStrings(b.LegalMoves()),
		"done_allowed": b.DoneAllowed(),
	})
}

// RobotMove asks the robot of the player to move for a move.
//
// Request: game_id, variant (optional), play (default true).
// Response: move, stage, step, reason, played, and the game state.
func (s *Server) RobotMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	play := boolField(req, "play", true)

	g.mu.Lock()
	defer g.mu.Unlock()
	d, err := s.games.decide(g, stringField(req, "variant"))
	if err != nil {
		return nil, toStatus(err)
	}
	if play {
		if err := g.session.SubmitMove(ctx, d.Move); err != nil {
			return nil, toStatus(err)
		}
		if gameOver(g) {
			s.games.save(ctx, g)
		}
	}
	fields := stateFields(g.session)
	fields["move"] = d.Move.String()
	fields["stage"] = d.Stage
	fields["step"] = d.Step
	fields["reason"] = d.Reason
	fields["played"] = play
	return newStruct(fields)
}

// Undo rewinds a game.
//
// Request: game_id and either to (a move count) or to_state (a state
// name, rewinding to its last earlier occurrence). Response: the game state.
func (s *Server) Undo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if name := stringField(req, "to_state"); name != "" {
		st, ok := states.ParseState(name)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown state %q", name)
		}
		if err := g.session.UndoToLast(ctx, st); err != nil {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
	} else {
		n, err := intField(req, "to", -1)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = g.session.Len() - 1
		}
		if err := g.session.UndoTo(ctx, n); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, toStatus(err)
			}
			return nil, status.Error(codes.OutOfRange, err.Error())
		}
	}
	g.idempotency.Clear()
	for _, r := range g.robots {
		r.Reset()
	}
	return newStruct(stateFields(g.session))
}

// Verify replays a game and checks every digest.
//
// Request: game_id. Response: ok, moves, digest.
func (s *Server) Verify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	if err := g.session.Verify(ctx); err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]interface{}{
		"game_id": g.id,
		"ok":      true,
		"moves":   g.session.Len(),
		"digest":  digestString(g.session.Digest()),
	})
}

// watcher forwards the events of one game to a WatchGame stream.
type watcher struct {
	id string
	ch chan events.Event
}

func (w *watcher) ID() string { return w.id }

func (w *watcher) InterestedIn(eventType string) bool {
	return eventType != events.TypeMoveRejected
}

// HandleEvent never blocks the session. A watcher that falls behind loses
// events.
func (w *watcher) HandleEvent(e events.Event) {
	select {
	case w.ch <- e:
	default:
	}
}

// WatchGame streams the events of a game: first a frame with the current
// state, then one frame per event until the game ends or the client leaves.
//
// Request: game_id.
func (s *Server) WatchGame(req *structpb.Struct, stream GameService_WatchGameServer) error {
	g, err := s.lookup(req)
	if err != nil {
		return err
	}
	w := &watcher{id: "watch-" + uuid.New().String(), ch: make(chan events.Event, watchBuffer)}
	g.bus.Subscribe(w)
	defer g.bus.Unsubscribe(w.id)

	fields := stateFields(g.session)
	fields["type"] = "state"
	first, err := newStruct(fields)
	if err != nil {
		return err
	}
	if err := stream.Send(first); err != nil {
		return err
	}
	if gameOver(g) {
		return nil
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return toStatus(ctx.Err())
		case e := <-w.ch:
			frame, err := eventStruct(e)
			if err != nil {
				return status.Errorf(codes.Internal, "encoding event: %v", err)
			}
			if err := stream.Send(frame); err != nil {
				return err
			}
			if e.Type() == events.TypeGameEnded {
				return nil
			}
		}
	}
}
