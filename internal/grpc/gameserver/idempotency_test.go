package gameserver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestIdempotencyManager(t *testing.T) {
	im := NewIdempotencyManager()
	clock := time.Now()
	im.now = func() time.Time { return clock }

	resp, err := structpb.NewStruct(map[string]interface{}{"accepted": true})
	require.NoError(t, err)

	assert.Nil(t, im.Check(0, "k1"))
	im.Store(0, "k1", resp)
	assert.Equal(t, resp, im.Check(0, "k1"))
	assert.Nil(t, im.Check(1, "k1"), "keys are per player")

	im.Store(0, "", resp)
	assert.Nil(t, im.Check(0, ""), "empty keys are never cached")

	clock = clock.Add(idempotencyTTL + time.Second)
	assert.Nil(t, im.Check(0, "k1"), "entries expire")

	im.Store(1, "k2", resp)
	im.Clear()
	assert.Nil(t, im.Check(1, "k2"))
}

func TestIdempotencyEviction(t *testing.T) {
	im := NewIdempotencyManager()
	clock := time.Now()
	im.now = func() time.Time { return clock }
	resp := &structpb.Struct{}

	im.Store(0, "old", resp)
	clock = clock.Add(idempotencyTTL + time.Minute)
	for i := 0; i <= idempotencyLimit; i++ {
		im.Store(1, fmt.Sprintf("k%d", i), resp)
	}
	im.mu.RLock()
	_, ok := im.cache[idempotencyKey{Player: 0, Key: "old"}]
	im.mu.RUnlock()
	assert.False(t, ok)
}

func TestSubmitMoveRetryIsNotReplayed(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 3, 2)

	legal, err := client.LegalMoves(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	moves := legal.Fields["moves"].GetListValue().GetValues()
	require.NotEmpty(t, moves)
	text := moves[0].GetStringValue()

	req := request(t, map[string]interface{}{"game_id": id, "move": text, "idempotency_key": "retry-1"})
	first, err := client.SubmitMove(ctx, req)
	require.NoError(t, err)
	second, err := client.SubmitMove(ctx, req)
	require.NoError(t, err, "a retry must not be rejected as illegal")

	assert.Equal(t, first.Fields["digest"].GetStringValue(), second.Fields["digest"].GetStringValue())
	g, ok := srv.Games().GetGame(id)
	require.True(t, ok)
	assert.Equal(t, 1, g.session.Len())
}

func TestUndoClearsIdempotency(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 4, 2)

	legal, err := client.LegalMoves(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	text := legal.Fields["moves"].GetListValue().GetValues()[0].GetStringValue()
	req := request(t, map[string]interface{}{"game_id": id, "move": text, "idempotency_key": "k"})

	_, err = client.SubmitMove(ctx, req)
	require.NoError(t, err)
	_, err = client.Undo(ctx, request(t, map[string]interface{}{"game_id": id, "to": 0}))
	require.NoError(t, err)
	_, err = client.SubmitMove(ctx, req)
	require.NoError(t, err)

	g, ok := srv.Games().GetGame(id)
	require.True(t, ok)
	assert.Equal(t, 1, g.session.Len(), "the move is played again after the undo")
}

func TestSubmitMoveOutOfTurn(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	ctx := context.Background()
	id := createGame(t, client, 6, 2)

	g, ok := srv.Games().GetGame(id)
	require.True(t, ok)
	other := 1 - g.session.Snapshot().WhoseTurn()

	legal, err := client.LegalMoves(ctx, request(t, map[string]interface{}{"game_id": id}))
	require.NoError(t, err)
	text := legal.Fields["moves"].GetListValue().GetValues()[0].GetStringValue()

	_, err = client.SubmitMove(ctx, request(t, map[string]interface{}{"game_id": id, "move": text, "player": other}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, 0, g.session.Len())
}
