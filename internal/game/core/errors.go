package core

import (
	"errors"
	"fmt"
)

var (
	ErrParse             = errors.New("malformed move text")
	ErrIllegalMove       = errors.New("illegal move")
	ErrReplayDivergence  = errors.New("replay digest mismatch")
	ErrStrategyExhausted = errors.New("no strategy produced a legal move")
	ErrGameOver          = errors.New("game is over")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrUnknownInit       = errors.New("unknown game initialization")
	ErrNothingPicked     = errors.New("nothing is picked up")
	ErrAlreadyPicked     = errors.New("an object is already picked up")
	ErrEmptyCell         = errors.New("cell is empty")
)

// ParseError reports where move text stopped making sense.
type ParseError struct {
	Text   string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at token %d: %s", e.Text, e.Pos, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// IllegalMoveError is returned when a well formed move is not permitted in
// the current state.
type IllegalMoveError struct {
	Move   string
	State  string
	Reason string
	Err    error
}

func (e *IllegalMoveError) Error() string {
	msg := fmt.Sprintf("move %q in state %s", e.Move, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && e.Err != ErrIllegalMove {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the specific cause and ErrIllegalMove.
func (e *IllegalMoveError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrIllegalMove {
		return []error{ErrIllegalMove}
	}
	return []error{ErrIllegalMove, e.Err}
}

// ReplayDivergenceError reports the first history entry whose digest did
// not reproduce.
type ReplayDivergenceError struct {
	Index int
	Want  int64
	Got   int64
}

func (e *ReplayDivergenceError) Error() string {
	return fmt.Sprintf("replay diverged at move %d: want digest %d, got %d", e.Index, e.Want, e.Got)
}

func (e *ReplayDivergenceError) Unwrap() error { return ErrReplayDivergence }
