package gameserver

import (
	"encoding/json"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/game/move"
)

// stringField reads a string field. Missing fields read as "".
func stringField(req *structpb.Struct, name string) string {
	if v, ok := req.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

// intField reads a number field, or def when it is missing.
func intField(req *structpb.Struct, name string, def int) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return def, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != float64(int64(n)) {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		return int(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "%s: %v", name, err)
		}
		return int(n), nil
	}
	return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
}

func boolField(req *structpb.Struct, name string, def bool) bool {
	if v, ok := req.GetFields()[name]; ok {
		return v.GetBoolValue()
	}
	return def
}

func requireGameID(req *structpb.Struct) (string, error) {
	id := stringField(req, "game_id")
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "game_id is required")
	}
	return id, nil
}

func ints(xs []int) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// digest values do not fit a JSON number, they travel as decimal strings.
func digestString(d int64) string { return strconv.FormatInt(d, 10) }

// stateFields describes the public board of a session.
func stateFields(s *game.Session) map[string]interface{} {
	b := s.Snapshot()
	players := make([]interface{}, b.Players())
	for p := range players {
		cards := make([]interface{}, 0, len(b.Cards(p)))
		for _, k := range b.Cards(p) {
			cards = append(cards, k.String())
		}
		players[p] = map[string]interface{}{
			"gold":      b.Gold(p),
			"camels":    b.Camels(p),
			"cubes":     b.Cubes(p),
			"vp":        b.VP(p),
			"cards":     cards,
			"buildings": b.BuildingsOwned(p),
		}
	}
	fields := map[string]interface{}{
		"game_id":    s.ID(),
		"token":      b.Token(),
		"state":      b.State().String(),
		"whose_turn": b.WhoseTurn(),
		"day":        b.GameDay(),
		"moves":      s.Len(),
		"digest":     digestString(b.Digest()),
		"game_over":  b.GameOver(),
		"players":    players,
	}
	if b.GameOver() {
		fields["winners"] = ints(b.Winners())
		fields["scores"] = ints(b.Scores())
	}
	return fields
}

func moveStrings(moves []move.Move) []interface{} {
	out := make([]interface{}, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return st, nil
}

// eventStruct converts a game event to a stream frame through its JSON form.
func eventStruct(e events.Event) (*structpb.Struct, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	frame := &structpb.Struct{}
	if err := protojson.Unmarshal(data, frame); err != nil {
		return nil, err
	}
	switch ev := e.(type) {
	case *events.MoveExecutedEvent:
		frame.Fields["digest"] = structpb.NewStringValue(digestString(ev.Digest))
	case *events.GameEndedEvent:
		frame.Fields["digest"] = structpb.NewStringValue(digestString(ev.Digest))
	}
	return frame, nil
}
