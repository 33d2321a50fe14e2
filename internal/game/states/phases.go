package states

import "fmt"

// State is a position in the turn sequence of a game.
type State int

const (
	Puzzle State = iota
	Resign
	GameOver
	Confirm
	Roll
	Select
	ThreewayTakeCamel
	ThreewayPlaceBag
	ThreewayPlaceBarrel
	ThreewayPlaceChest
	ThreewayPlaceVase
	ThreewayTakeGold
	TakeCamel
	PlaceBag
	PlaceBarrel
	PlaceChest
	PlaceVase
	TakeGold
	TakeCard
	MoveSupervisor
	DesignateCube
	DesignatedCube
	PayCamel
	PaidCamel
	Prebuild
	Build
	Pass
	PlayCardEffect
	PlayCardDice
	ConfirmCard
	CardPlaceCubeSouk
	CardScoreCamels
	CardScoreGold
	CardTradeCamelsGold
	NumStates
)

type stateInfo struct {
	name    string
	message string
	done    bool
}

var info = [NumStates]stateInfo{
	Puzzle:              {"Puzzle", "Rearrange the board", false},
	Resign:              {"Resign", "Click on Done to confirm resigning", true},
	GameOver:            {"GameOver", "Game over", false},
	Confirm:             {"Confirm", "Click on Done to confirm this move", true},
	Roll:                {"Roll", "Buy extra dice or click on Done to roll", true},
	Select:              {"Select", "Select a group of dice", false},
	ThreewayTakeCamel:   {"ThreewayTakeCamel", "Take camels, take a card, or move the supervisor", false},
	ThreewayPlaceBag:    {"ThreewayPlaceBag", "Place cubes in the bag souks, take a card, or move the supervisor", false},
	ThreewayPlaceBarrel: {"ThreewayPlaceBarrel", "Place cubes in the barrel souks, take a card, or move the supervisor", false},
	ThreewayPlaceChest:  {"ThreewayPlaceChest", "Place cubes in the chest souks, take a card, or move the supervisor", false},
	ThreewayPlaceVase:   {"ThreewayPlaceVase", "Place cubes in the vase souks, take a card, or move the supervisor", false},
	ThreewayTakeGold:    {"ThreewayTakeGold", "Take gold, take a card, or move the supervisor", false},
	TakeCamel:           {"TakeCamel", "Take the camels", false},
	PlaceBag:            {"PlaceBag", "Place cubes in a bag souk", false},
	PlaceBarrel:         {"PlaceBarrel", "Place cubes in a barrel souk", false},
	PlaceChest:          {"PlaceChest", "Place cubes in a chest souk", false},
	PlaceVase:           {"PlaceVase", "Place cubes in a vase souk", false},
	TakeGold:            {"TakeGold", "Take the gold", false},
	TakeCard:            {"TakeCard", "Take a card", false},
	MoveSupervisor:      {"MoveSupervisor", "Move the supervisor", false},
	DesignateCube:       {"DesignateCube", "Designate the cube to send to the caravan", false},
	DesignatedCube:      {"DesignatedCube", "Click on Done to send the cube to the caravan", true},
	PayCamel:            {"PayCamel", "Pay a camel to keep your cube, or click on Done", false},
	PaidCamel:           {"PaidCamel", "Click on Done to confirm paying a camel", true},
	Prebuild:            {"Prebuild", "Click on Done to finish the action", true},
	Build:               {"Build", "Build a building, play a card, or click on Done", true},
	Pass:                {"Pass", "No dice remain, click on Done to pass", true},
	PlayCardEffect:      {"PlayCardEffect", "Play the card", false},
	PlayCardDice:        {"PlayCardDice", "Play the card for its effect or to add to a dice group", false},
	ConfirmCard:         {"ConfirmCard", "Click on Done to confirm playing the card", true},
	CardPlaceCubeSouk:   {"CardPlaceCubeSouk", "Place a cube in any souk", false},
	CardScoreCamels:     {"CardScoreCamels", "Return up to 4 camels for 2 points each", false},
	CardScoreGold:       {"CardScoreGold", "Return up to 10 gold for 1 point each", false},
	CardTradeCamelsGold: {"CardTradeCamelsGold", "Trade camels and gold one for one", false},
}

func (s State) String() string {
	if s >= 0 && s < NumStates {
		return info[s].name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// Message is the human readable prompt for the state.
func (s State) Message() string {
	if s >= 0 && s < NumStates {
		return info[s].message
	}
	return ""
}

// ParseState converts a state name back to a State.
func ParseState(name string) (State, bool) {
	for i, in := range info {
		if in.name == name {
			return State(i), true
		}
	}
	return Puzzle, false
}

// IsTerminal reports whether no further play is possible.
func (s State) IsTerminal() bool { return s == GameOver }

// DoneAlways reports whether Done is accepted in s without further
// conditions. The card scoring states accept Done only after a trade.
func (s State) DoneAlways() bool { return s >= 0 && s < NumStates && info[s].done }

// IsCardScoring reports the states that count traded chips.
func (s State) IsCardScoring() bool {
	return s == CardScoreCamels || s == CardScoreGold || s == CardTradeCamelsGold
}

// Row states. Index with a dice tower row.
var (
	ThreewayFor = [6]State{ThreewayTakeCamel, ThreewayPlaceBag, ThreewayPlaceBarrel, ThreewayPlaceChest, ThreewayPlaceVase, ThreewayTakeGold}
	OnewayFor   = [6]State{TakeCamel, PlaceBag, PlaceBarrel, PlaceChest, PlaceVase, TakeGold}
)

// IsThreeway reports the states where a dice row is selected but no action
// has been committed.
func (s State) IsThreeway() bool { return s >= ThreewayTakeCamel && s <= ThreewayTakeGold }

// IsPlacement reports the cube placement states.
func (s State) IsPlacement() bool { return s >= PlaceBag && s <= PlaceVase }

// CanPlaceInSouk reports whether empty souk houses are valid targets.
func (s State) CanPlaceInSouk() bool {
	return s == CardPlaceCubeSouk || s.IsPlacement() || (s >= ThreewayPlaceBag && s <= ThreewayPlaceVase)
}
