package events

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeMoveExecuted    = "move.executed"
	TypeMoveRejected    = "move.rejected"
	TypeMovesUndone     = "move.undone"
	TypeStateTransition = "state.transition"
	TypeDiceRolled      = "dice.rolled"
	TypeWeekScored      = "week.scored"
	TypeCaravanScored   = "caravan.scored"
)

// GameStartedEvent is published when a session is initialized
type GameStartedEvent struct {
	BaseEvent
	Token   string `json:"token"`
	Players int    `json:"players"`
	Seed    int64  `json:"seed"`
}

func NewGameStartedEvent(gameID, token string, players int, seed int64) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Token:     token,
		Players:   players,
		Seed:      seed,
	}
}

// GameEndedEvent carries the final scores. Tied leaders all appear in Winners.
type GameEndedEvent struct {
	BaseEvent
	Winners []int `json:"winners"`
	Scores  []int `json:"scores"`
	Moves   int   `json:"moves"`
	Digest  int64 `json:"digest"`
}

func NewGameEndedEvent(gameID string, winners, scores []int, moves int, digest int64) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winners:   winners,
		Scores:    scores,
		Moves:     moves,
		Digest:    digest,
	}
}

// MoveExecutedEvent is published for every move the session accepts
type MoveExecutedEvent struct {
	BaseEvent
	Metadata    EventMetadata `json:"metadata"`
	Move        string        `json:"move"`
	StateBefore string        `json:"state_before"`
	StateAfter  string        `json:"state_after"`
	Digest      int64         `json:"digest"`
}

func NewMoveExecutedEvent(gameID string, player, moveNumber int, move, before, after string, digest int64) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent:   newBase(TypeMoveExecuted, gameID),
		Metadata:    EventMetadata{Player: player, MoveNumber: moveNumber},
		Move:        move,
		StateBefore: before,
		StateAfter:  after,
		Digest:      digest,
	}
}

// MoveRejectedEvent is published when a submitted move fails to parse or
// is not legal.
type MoveRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	Move     string        `json:"move"`
	Reason   string        `json:"reason"`
}

func NewMoveRejectedEvent(gameID string, player int, move, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, gameID),
		Metadata:  EventMetadata{Player: player},
		Move:      move,
		Reason:    reason,
	}
}

// MovesUndoneEvent is published when history is truncated and replayed.
type MovesUndoneEvent struct {
	BaseEvent
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

func NewMovesUndoneEvent(gameID string, removed, remaining int) *MovesUndoneEvent {
	return &MovesUndoneEvent{
		BaseEvent: newBase(TypeMovesUndone, gameID),
		Removed:   removed,
		Remaining: remaining,
	}
}

// StateTransitionEvent is published when the turn state changes
type StateTransitionEvent struct {
	BaseEvent
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
	Reason    string `json:"reason"`
}

func NewStateTransitionEvent(gameID, fromState, toState, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromState: fromState,
		ToState:   toState,
		Reason:    reason,
	}
}

// DiceRolledEvent reports the dice tower after a roll. Rows holds the die
// count of each row and Faces the face shown in that row, 0 for empty rows.
type DiceRolledEvent struct {
	BaseEvent
	Day     int    `json:"day"`
	Rows    [6]int `json:"rows"`
	Faces   [6]int `json:"faces"`
	Summary string `json:"summary"`
}

func NewDiceRolledEvent(gameID string, day int, rows, faces [6]int, summary string) *DiceRolledEvent {
	return &DiceRolledEvent{
		BaseEvent: newBase(TypeDiceRolled, gameID),
		Day:       day,
		Rows:      rows,
		Faces:     faces,
		Summary:   summary,
	}
}

// WeekScoredEvent reports the souk points awarded at the end of a week.
type WeekScoredEvent struct {
	BaseEvent
	Week   int   `json:"week"`
	Points []int `json:"points"`
}

func NewWeekScoredEvent(gameID string, week int, points []int) *WeekScoredEvent {
	return &WeekScoredEvent{BaseEvent: newBase(TypeWeekScored, gameID), Week: week, Points: points}
}

// CaravanScoredEvent reports caravan points. Emptied is set when the
// caravan was full and its cubes went home.
type CaravanScoredEvent struct {
	BaseEvent
	Points  []int `json:"points"`
	Emptied bool  `json:"emptied"`
}

func NewCaravanScoredEvent(gameID string, points []int, emptied bool) *CaravanScoredEvent {
	return &CaravanScoredEvent{BaseEvent: newBase(TypeCaravanScored, gameID), Points: points, Emptied: emptied}
}
