package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "parse error",
			err:      &ParseError{Text: "Bogus", Pos: 0, Reason: "unknown operation"},
			sentinel: ErrParse,
			contains: `parse "Bogus" at token 0: unknown operation`,
		},
		{
			name:     "illegal move",
			err:      &IllegalMoveError{Move: "Done", State: "Roll", Reason: "done not allowed"},
			sentinel: ErrIllegalMove,
			contains: `move "Done" in state Roll: done not allowed`,
		},
		{
			name:     "illegal move with cause",
			err:      &IllegalMoveError{Move: "Drop green Misc_Track", State: "Select", Reason: "drop", Err: ErrNothingPicked},
			sentinel: ErrNothingPicked,
			contains: "nothing is picked up",
		},
		{
			name:     "replay divergence",
			err:      &ReplayDivergenceError{Index: 3, Want: 1, Got: 2},
			sentinel: ErrReplayDivergence,
			contains: "replay diverged at move 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}

	var ime *IllegalMoveError
	wrapped := errors.Join(errors.New("outer"), &IllegalMoveError{Move: "Done", State: "Roll", Reason: "x"})
	require.True(t, errors.As(wrapped, &ime))
	assert.Equal(t, "Done", ime.Move)
	assert.True(t, errors.Is(&IllegalMoveError{Err: ErrEmptyCell}, ErrIllegalMove))
}
