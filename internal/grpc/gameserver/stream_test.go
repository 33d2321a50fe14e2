package gameserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/yspahan/internal/game/events"
)

func TestWatchGame(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id := createGame(t, client, 8, 2)

	stream, err := client.WatchGame(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "state", first.Fields["type"].GetStringValue())
	assert.Equal(t, id, first.Fields["game_id"].GetStringValue())

	played, err := client.RobotMove(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)

	for {
		frame, err := stream.Recv()
		require.NoError(t, err)
		if frame.Fields["type"].GetStringValue() != events.TypeMoveExecuted {
			continue
		}
		assert.Equal(t, id, frame.Fields["game_id"].GetStringValue())
		assert.Equal(t, played.Fields["move"].GetStringValue(), frame.Fields["move"].GetStringValue())
		assert.Equal(t, played.Fields["digest"].GetStringValue(), frame.Fields["digest"].GetStringValue())
		break
	}
}

func TestWatchGameEndsWithTheGame(t *testing.T) {
	if testing.Short() {
		t.Skip("plays a whole game")
	}
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	id := createGame(t, client, 12, 2)

	stream, err := client.WatchGame(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	ended := make(chan string, 1)
	go func() {
		for {
			frame, err := stream.Recv()
			if err != nil {
				close(ended)
				return
			}
			if frame.Fields["type"].GetStringValue() == events.TypeGameEnded {
				ended <- frame.Fields["digest"].GetStringValue()
				return
			}
		}
	}()

	req := request(t, map[string]interface{}{"game_id": id})
	var last string
	for i := 0; i < 20000; i++ {
		resp, err := client.RobotMove(ctx, req)
		if status.Code(err) == codes.FailedPrecondition {
			break
		}
		require.NoError(t, err)
		last = resp.Fields["digest"].GetStringValue()
		if resp.Fields["game_over"].GetBoolValue() {
			break
		}
	}

	select {
	case digest, ok := <-ended:
		require.True(t, ok, "stream closed before the game ended")
		assert.Equal(t, last, digest)
	case <-ctx.Done():
		t.Fatal("no game.ended frame")
	}
}

func TestWatchUnknownGame(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()

	stream, err := client.WatchGame(context.Background(), request(t, map[string]interface{}{"game_id": "nope"}))
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.NotFound, status.Code(err))
}
