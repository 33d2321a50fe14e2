package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/strategy"
)

var (
	// ErrGameNotFound is returned for an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrCapacity is returned when the server holds MaxGames games.
	ErrCapacity = errors.New("server at capacity")
)

// Archive keeps games beyond the life of the server, usually a
// *store.Store.
type Archive interface {
	SaveSession(ctx context.Context, s *game.Session) error
	Load(ctx context.Context, id string, cfg game.SessionConfig) (*game.Session, error)
}

type gameInstance struct {
	id      string
	session *game.Session
	bus     *events.EventBus
	seed    int64

	// mu serializes robot turns and guards the fields below.
	mu           sync.Mutex
	robots       map[int]*strategy.Robot
	createdAt    time.Time
	lastActivity time.Time

	idempotency *IdempotencyManager
}

func (g *gameInstance) touch(now time.Time) {
	g.mu.Lock()
	g.lastActivity = now
	g.mu.Unlock()
}

// robot returns the robot for seat p, creating it on first use. An empty
// variant keeps the seat's robot or falls back to def. Must be called with
// g.mu held.
func (g *gameInstance) robot(p int, variant, def string, logger zerolog.Logger) (*strategy.Robot, error) {
	if r, ok := g.robots[p]; ok && (variant == "" || r.Variant() == variant) {
		return r, nil
	}
	if variant == "" {
		variant = def
	}
	r, err := strategy.NewRobotNamed(variant, g.seed+int64(p), logger)
	if err != nil {
		return nil, err
	}
	g.robots[p] = r
	return r, nil
}

// GameManager holds the live games.
type GameManager struct {
	mu          sync.RWMutex
	games       map[string]*gameInstance
	maxGames    int
	idleTimeout time.Duration
	variant     string
	archive     Archive
	subscribers []events.Subscriber
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGameManager creates a manager. maxGames 0 means no limit, idleTimeout
// 0 keeps games forever. variant is the default robot variant.
func NewGameManager(maxGames int, idleTimeout time.Duration, variant string, logger zerolog.Logger) *GameManager {
	return &GameManager{
		games:       make(map[string]*gameInstance),
		maxGames:    maxGames,
		idleTimeout: idleTimeout,
		variant:     variant,
		logger:      logger.With().Str("component", "game_manager").Logger(),
		now:         time.Now,
	}
}

// SetArchive makes finished and evicted games persist to a.
func (gm *GameManager) SetArchive(a Archive) { gm.archive = a }

// Subscribe attaches s to the event bus of every game created afterwards.
func (gm *GameManager) Subscribe(s events.Subscriber) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.subscribers = append(gm.subscribers, s)
}

func (gm *GameManager) newBus() *events.EventBus {
	bus := events.NewEventBus()
	gm.mu.RLock()
	for _, s := range gm.subscribers {
		bus.Subscribe(s)
	}
	gm.mu.RUnlock()
	return bus
}

func (gm *GameManager) checkCapacity() error {
	gm.mu.RLock()
	current := len(gm.games)
	gm.mu.RUnlock()
	if gm.maxGames > 0 && current >= gm.maxGames {
		gm.logger.Warn().
			Int("current_games", current).
			Int("max_games", gm.maxGames).
			Msg("Rejecting game creation - server at capacity")
		return fmt.Errorf("%w: %d/%d games active", ErrCapacity, current, gm.maxGames)
	}
	return nil
}

// CreateGame starts a new game from token.
func (gm *GameManager) CreateGame(token string) (*gameInstance, error) {
	if err := gm.checkCapacity(); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	bus := gm.newBus()
	sess, err := game.NewSession(game.SessionConfig{Token: token, GameID: id, Logger: gm.logger, EventBus: bus})
	if err != nil {
		return nil, err
	}
	return gm.add(sess, bus)
}

// LoadGame restores an archived game. A game that is already live is
// returned as is.
func (gm *GameManager) LoadGame(ctx context.Context, id string) (*gameInstance, error) {
	if g, ok := gm.GetGame(id); ok {
		return g, nil
	}
	if gm.archive == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err := gm.checkCapacity(); err != nil {
		return nil, err
	}
	bus := gm.newBus()
	sess, err := gm.archive.Load(ctx, id, game.SessionConfig{Logger: gm.logger, EventBus: bus})
	if err != nil {
		return nil, err
	}
	return gm.add(sess, bus)
}

func (gm *GameManager) add(sess *game.Session, bus *events.EventBus) (*gameInstance, error) {
	now := gm.now()
	g := &gameInstance{
		id:           sess.ID(),
		session:      sess,
		bus:          bus,
		seed:         sess.Snapshot().Seed(),
		robots:       make(map[int]*strategy.Robot),
		createdAt:    now,
		lastActivity: now,
		idempotency:  NewIdempotencyManager(),
	}
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.maxGames > 0 && len(gm.games) >= gm.maxGames {
		return nil, fmt.Errorf("%w: %d/%d games active", ErrCapacity, len(gm.games), gm.maxGames)
	}
	gm.games[g.id] = g
	gm.logger.Info().Str("game_id", g.id).Str("token", sess.Token()).Int("active_games", len(gm.games)).Msg("Game added")
	return g, nil
}

// GetGame looks up a live game.
func (gm *GameManager) GetGame(id string) (*gameInstance, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, ok := gm.games[id]
	return g, ok
}

// Board returns a snapshot of a live game, for the spectator feed.
func (gm *GameManager) Board(id string) (*game.Board, bool) {
	g, ok := gm.GetGame(id)
	if !ok {
		return nil, false
	}
	return g.session.Snapshot(), true
}

// GetActiveGames is the number of live games.
func (gm *GameManager) GetActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// save archives a game. Errors are logged, not returned: a failed save
// must not fail the move that triggered it.
func (gm *GameManager) save(ctx context.Context, g *gameInstance) {
	if gm.archive == nil {
		return
	}
	if err := gm.archive.SaveSession(ctx, g.session); err != nil {
		gm.logger.Error().Err(err).Str("game_id", g.id).Msg("Failed to archive game")
	}
}

// RunCleanup evicts idle games every interval until ctx is done.
func (gm *GameManager) RunCleanup(ctx context.Context, interval time.Duration) {
	if gm.idleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.cleanupGames(ctx)
		}
	}
}

// cleanupGames removes games untouched for longer than the idle timeout.
// They are archived first.
func (gm *GameManager) cleanupGames(ctx context.Context) {
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	now := gm.now()
	var evict []*gameInstance
	for _, g := range refs {
		g.mu.Lock()
		idle := now.Sub(g.lastActivity)
		age := now.Sub(g.createdAt)
		g.mu.Unlock()
		if idle > gm.idleTimeout {
			evict = append(evict, g)
			gm.logger.Info().
				Str("game_id", g.id).
				Bool("finished", gameOver(g)).
				Dur("age", age).
				Dur("inactive", idle).
				Msg("Cleaning up game")
		}
	}
	if len(evict) == 0 {
		return
	}
	for _, g := range evict {
		gm.save(ctx, g)
	}

	gm.mu.Lock()
	for _, g := range evict {
		delete(gm.games, g.id)
	}
	remaining := len(gm.games)
	gm.mu.Unlock()

	gm.logger.Info().Int("cleaned", len(evict)).Int("remaining", remaining).Msg("Game cleanup completed")
}

// gameOver reports whether the session has ended.
func gameOver(g *gameInstance) bool {
	return g.session.State().IsTerminal()
}

// decide asks the robot of the player to move for a move. Must be called
// with g.mu held.
func (gm *GameManager) decide(g *gameInstance, variant string) (strategy.Decision, error) {
	b := g.session.Snapshot()
	if b.GameOver() {
		return strategy.Decision{Pass: true}, core.ErrGameOver
	}
	r, err := g.robot(b.WhoseTurn(), variant, gm.variant, gm.logger.With().Str("game_id", g.id).Logger())
	if err != nil {
		return strategy.Decision{}, err
	}
	return r.Decide(b)
}
