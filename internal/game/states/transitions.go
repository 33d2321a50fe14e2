package states

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

// ErrNoTransition is returned when the table has no entry for a trigger.
var ErrNoTransition = errors.New("no transition for trigger")

// TriggerKind names the event that drives a state change.
type TriggerKind int

const (
	Hold           TriggerKind = iota // an object moved without changing the state
	SelectRow                         // Arg: dice row
	CommitRow                         // pool resource or cube taken for the selected row
	PayGold                           // own gold picked to stretch the supervisor
	TakeSupervisor                    // supervisor picked
	DrawCard                          // card stack picked
	PlayHandCard                      // a card from the hand picked
	ToggleCube                        // Arg: 1 when a cube is designated
	PlaceCard                         // Arg: core.CardKind dropped on the discards
	BoostRow                          // Arg: dice row the card was paid into
	Built                             // cube dropped on a building
	SupervisorStop                    // Arg: number of adjacent cubes, capped at 2
	Took                              // taken resource landed on the player board
	PlaceCube                         // Arg: 1 when the placement is complete
	CardPlaced                        // cube placed by the place-anywhere card
	ScoreStep                         // Arg: 1 when the trade limit is reached
	CamelPaid                         // the owner of a cube paid a camel
	Done                              // plain confirmation
	EndTurn                           // Arg: TurnOutcome
	OwnerMayPay                       // the designated cube's owner has camels
	Resume                            // Arg: the State to return to
	Start
	Edit
	ResignToggle
	TimeOut
)

var triggerNames = [...]string{
	"Hold", "SelectRow", "CommitRow", "PayGold", "TakeSupervisor", "DrawCard",
	"PlayHandCard", "ToggleCube", "PlaceCard", "BoostRow", "Built", "SupervisorStop",
	"Took", "PlaceCube", "CardPlaced", "ScoreStep", "CamelPaid", "Done", "EndTurn",
	"OwnerMayPay", "Resume", "Start", "Edit", "ResignToggle", "TimeOut",
}

func (k TriggerKind) String() string {
	if int(k) < len(triggerNames) {
		return triggerNames[k]
	}
	return fmt.Sprintf("Trigger(%d)", int(k))
}

// TurnOutcome classifies the end of a player's turn.
type TurnOutcome int

const (
	NextSelect TurnOutcome = iota
	NextTakeCard
	NextPass
	NewRound
	Finished
)

// Trigger is a table key component. Arg parameterizes row, card and count
// driven transitions.
type Trigger struct {
	Kind TriggerKind
	Arg  int
}

func (t Trigger) String() string { return fmt.Sprintf("%s(%d)", t.Kind, t.Arg) }

// On builds a trigger.
func On(k TriggerKind, arg ...int) Trigger {
	t := Trigger{Kind: k}
	if len(arg) > 0 {
		t.Arg = arg[0]
	}
	return t
}

type key struct {
	from State
	on   Trigger
}

var table = map[key]State{}

// CardEffectState is where playing each card for its effect leads.
var CardEffectState = [core.NumCardKinds]State{
	core.Card3Camels:        ConfirmCard,
	core.Card3Gold:          ConfirmCard,
	core.CardBuyNoCamels:    ConfirmCard,
	core.CardBuyNoGold:      ConfirmCard,
	core.CardPlaceCaravan:   ConfirmCard,
	core.CardPlaceBoard:     CardPlaceCubeSouk,
	core.CardScoreCamels:    CardScoreCamels,
	core.CardScoreGold:      CardScoreGold,
	core.CardSwapCamelsGold: CardTradeCamelsGold,
}

// resumable are the states a card can be played from and returned to.
var resumable = []State{Roll, Select, Build, ThreewayTakeCamel, ThreewayPlaceBag, ThreewayPlaceBarrel, ThreewayPlaceChest, ThreewayPlaceVase, ThreewayTakeGold}

func add(from State, t Trigger, to State) { table[key{from, t}] = to }

func init() {
	for s := State(0); s < NumStates; s++ {
		add(s, On(Hold), s)
		add(s, On(Start), Roll)
		add(s, On(Edit), Puzzle)
		add(s, On(TimeOut), GameOver)
		if s != Resign {
			add(s, On(ResignToggle), Resign)
			add(Resign, On(Resume, int(s)), s)
		}
	}

	// choosing the action
	choosing := append([]State{Select, Roll}, ThreewayFor[:]...)
	for _, s := range choosing {
		add(s, On(PayGold), MoveSupervisor)
		add(s, On(TakeSupervisor), MoveSupervisor)
		add(s, On(DrawCard), TakeCard)
		add(s, On(PlayHandCard), PlayCardDice)
	}
	for _, s := range append([]State{Select}, ThreewayFor[:]...) {
		for r := 0; r < core.NumRows; r++ {
			add(s, On(SelectRow, r), ThreewayFor[r])
		}
	}
	for r, s := range ThreewayFor {
		add(s, On(CommitRow), OnewayFor[r])
	}
	add(Roll, On(Done), Select)

	// cards
	add(Build, On(PlayHandCard), PlayCardEffect)
	for k := core.Card3Camels; k < core.NumCardKinds; k++ {
		add(PlayCardEffect, On(PlaceCard, int(k)), CardEffectState[k])
		add(PlayCardDice, On(PlaceCard, int(k)), CardEffectState[k])
	}
	for r := 0; r < core.NumRows; r++ {
		add(PlayCardDice, On(BoostRow, r), OnewayFor[r])
	}
	add(CardPlaceCubeSouk, On(CardPlaced), ConfirmCard)
	add(CardScoreGold, On(ScoreStep, 0), CardScoreGold)
	add(CardScoreGold, On(ScoreStep, 1), ConfirmCard)
	add(CardScoreCamels, On(ScoreStep, 0), CardScoreCamels)
	add(CardScoreCamels, On(ScoreStep, 1), ConfirmCard)
	for _, from := range []State{ConfirmCard, CardTradeCamelsGold, CardScoreCamels, CardScoreGold} {
		for _, to := range resumable {
			add(from, On(Resume, int(to)), to)
		}
	}

	// taking and placing
	for _, s := range []State{TakeCamel, TakeGold, TakeCard} {
		add(s, On(Took), Prebuild)
	}
	for _, s := range OnewayFor[core.RowBag:core.RowGold] {
		add(s, On(PlaceCube, 0), s)
		add(s, On(PlaceCube, 1), Prebuild)
	}

	// supervisor and caravan
	for _, s := range []State{MoveSupervisor, PayCamel, PaidCamel, DesignatedCube} {
		add(s, On(SupervisorStop, 0), Prebuild)
		add(s, On(SupervisorStop, 1), DesignatedCube)
		add(s, On(SupervisorStop, 2), DesignateCube)
	}
	for _, s := range []State{DesignateCube, DesignatedCube} {
		add(s, On(ToggleCube, 0), DesignateCube)
		add(s, On(ToggleCube, 1), DesignatedCube)
	}
	add(DesignatedCube, On(OwnerMayPay), PayCamel)
	add(PayCamel, On(CamelPaid), PaidCamel)

	// building and the end of the turn
	add(Resign, On(Done), GameOver)
	add(Prebuild, On(Done), Build)
	add(Pass, On(Done), Build)
	add(Build, On(Built), Confirm)
	for _, s := range []State{Confirm, Build} {
		add(s, On(EndTurn, int(NextSelect)), Select)
		add(s, On(EndTurn, int(NextTakeCard)), TakeCard)
		add(s, On(EndTurn, int(NextPass)), Pass)
		add(s, On(EndTurn, int(NewRound)), Roll)
		add(s, On(EndTurn, int(Finished)), GameOver)
	}
}

// Next looks up the state reached from s on t.
func Next(s State, t Trigger) (State, error) {
	to, ok := table[key{s, t}]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrNoTransition, s, t)
	}
	return to, nil
}

// Triggers lists the triggers accepted in s, in a stable order.
func Triggers(s State) []Trigger {
	var out []Trigger
	for k := range table {
		if k.from == s {
			out = append(out, k.on)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Arg < out[j].Arg
	})
	return out
}

// AllowedTransitions returns the distinct states reachable from s in one
// step, excluding s itself.
func (s State) AllowedTransitions() []State {
	seen := map[State]bool{}
	var out []State
	for _, t := range Triggers(s) {
		to := table[key{s, t}]
		if to != s && !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanTransitionTo checks whether any trigger leads from s to target.
func (s State) CanTransitionTo(target State) bool {
	if target == s {
		return true
	}
	for _, to := range s.AllowedTransitions() {
		if to == target {
			return true
		}
	}
	return false
}
