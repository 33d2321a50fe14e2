package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext carries the identity of the game a Machine observes.
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// PlayerCount is the number of seats in the game
	PlayerCount int

	// StartTime is when the Start move was accepted. Undoing past the
	// Start move clears it.
	StartTime time.Time

	// Winners holds the leading players once the game is over
	Winners []int
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, players int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:      gameID,
		PlayerCount: players,
		Logger:      logger.With().Str("game_id", gameID).Logger(),
	}
}

// GetElapsedTime returns the time elapsed since game start
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	return time.Since(gc.StartTime)
}
