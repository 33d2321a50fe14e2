package gameserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

const bufSize = 1024 * 1024

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, cfg Config) (*GameServiceClient, *Server, func()) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(ServerOptions(testutil.NopLogger())...)
	srv := NewServer(cfg)
	RegisterGameServiceServer(s, srv)

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		s.Stop()
		lis.Close()
	}
	return NewGameServiceClient(conn), srv, cleanup
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	st, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return st
}

func createGame(t *testing.T, client *GameServiceClient, seed, players int) string {
	t.Helper()
	resp, err := client.CreateGame(context.Background(), request(t, map[string]interface{}{
		"seed": seed, "players": players,
	}))
	require.NoError(t, err)
	id := resp.Fields["game_id"].GetStringValue()
	require.NotEmpty(t, id)
	return id
}

func TestCreateGame(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()

	resp, err := client.CreateGame(ctx, request(t, map[string]interface{}{"seed": 5, "players": 3}))
	require.NoError(t, err)
	assert.Equal(t, "Yspahan 5 3", resp.Fields["token"].GetStringValue())
	assert.Len(t, resp.Fields["players"].GetListValue().GetValues(), 3)
	assert.False(t, resp.Fields["game_over"].GetBoolValue())
	assert.Equal(t, float64(0), resp.Fields["moves"].GetNumberValue())

	resp2, err := client.CreateGame(ctx, request(t, map[string]interface{}{"token": "Yspahan 9 2"}))
	require.NoError(t, err)
	assert.NotEqual(t, resp.Fields["game_id"].GetStringValue(), resp2.Fields["game_id"].GetStringValue())
	assert.Equal(t, "Yspahan 9 2", resp2.Fields["token"].GetStringValue())

	_, err = client.CreateGame(ctx, request(t, map[string]interface{}{"token": "Chess 1 2"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateGame(ctx, request(t, map[string]interface{}{"players": 2.5}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSubmitMoveAndLegalMoves(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 3, 2)

	legal, err := client.LegalMoves(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	moves := legal.Fields["moves"].GetListValue().GetValues()
	require.NotEmpty(t, moves)

	first := moves[0].GetStringValue()
	resp, err := client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": id, "move": first}))
	require.NoError(t, err)
	assert.True(t, resp.Fields["accepted"].GetBoolValue())
	assert.Equal(t, float64(1), resp.Fields["moves"].GetNumberValue())

	_, err = client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": id, "move": "Fly away"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": id}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": "nope", "move": "Done"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	state, err := client.GetState(ctx, request(t, map[string]interface{}{"game_id": id, "history": true}))
	require.NoError(t, err)
	hist := state.Fields["history"].GetListValue().GetValues()
	require.Len(t, hist, 1)
	assert.Equal(t, first, hist[0].GetStringValue())
}

func TestIllegalMoveIsFailedPrecondition(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 3, 2)

	legal, err := client.LegalMoves(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	if legal.Fields["done_allowed"].GetBoolValue() {
		t.Skip("Done is legal in the opening position")
	}
	_, err = client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": id, "move": "Done"}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRobotMoveUndoVerify(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 8, 2)
	game := map[string]interface{}{"game_id": id}

	var digests []string
	for i := 0; i < 30; i++ {
		resp, err := client.RobotMove(ctx, request(t, game))
		require.NoError(t, err)
		assert.True(t, resp.Fields["played"].GetBoolValue())
		assert.NotEmpty(t, resp.Fields["move"].GetStringValue())
		digests = append(digests, resp.Fields["digest"].GetStringValue())
	}

	peek, err := client.RobotMove(ctx, request(t, map[string]interface{}{"game_id": id, "play": false, "variant": "easy"}))
	require.NoError(t, err)
	assert.False(t, peek.Fields["played"].GetBoolValue())
	assert.Equal(t, digests[len(digests)-1], peek.Fields["digest"].GetStringValue())

	verify, err := client.Verify(ctx, request(t, game))
	require.NoError(t, err)
	assert.True(t, verify.Fields["ok"].GetBoolValue())

	state, err := client.GetState(ctx, request(t, game))
	require.NoError(t, err)
	n := int(state.Fields["moves"].GetNumberValue())
	require.Greater(t, n, 10)

	undone, err := client.Undo(ctx, request(t, map[string]interface{}{"game_id": id, "to": 10}))
	require.NoError(t, err)
	assert.Equal(t, float64(10), undone.Fields["moves"].GetNumberValue())

	undone, err = client.Undo(ctx, request(t, game))
	require.NoError(t, err)
	assert.Equal(t, float64(9), undone.Fields["moves"].GetNumberValue())

	_, err = client.Undo(ctx, request(t, map[string]interface{}{"game_id": id, "to": 50}))
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	_, err = client.Undo(ctx, request(t, map[string]interface{}{"game_id": id, "to_state": "NoSuchState"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.RobotMove(ctx, request(t, map[string]interface{}{"game_id": id, "variant": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRobotPlaysGameToTheEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full game")
	}
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 12, 2)
	game := map[string]interface{}{"game_id": id}

	for i := 0; i < 30000; i++ {
		resp, err := client.RobotMove(ctx, request(t, game))
		if status.Code(err) == codes.FailedPrecondition {
			break
		}
		require.NoError(t, err)
		if resp.Fields["game_over"].GetBoolValue() {
			break
		}
	}
	state, err := client.GetState(ctx, request(t, game))
	require.NoError(t, err)
	require.True(t, state.Fields["game_over"].GetBoolValue())
	assert.NotEmpty(t, state.Fields["winners"].GetListValue().GetValues())

	_, err = client.RobotMove(ctx, request(t, game))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.NotFound, status.Code(toStatus(ErrGameNotFound)))
	assert.Equal(t, codes.ResourceExhausted, status.Code(toStatus(ErrCapacity)))
	already := status.Error(codes.Aborted, "x")
	assert.Equal(t, already, toStatus(already))
}
