package gameserver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/yspahan/internal/store"
	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

func TestEvictedGameReloadsFromArchive(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, Config{MaxGames: 10, IdleTimeout: time.Minute})
	defer cleanup()
	ctx := context.Background()

	archive, err := store.Open(filepath.Join(t.TempDir(), "games.db"), testutil.NopLogger())
	require.NoError(t, err)
	defer archive.Close()
	gm := srv.Games()
	gm.SetArchive(archive)

	id := createGame(t, client, 21, 2)
	req := request(t, map[string]interface{}{"game_id": id})
	var digest string
	var moves float64
	for i := 0; i < 15; i++ {
		resp, err := client.RobotMove(ctx, req)
		require.NoError(t, err)
		digest = resp.Fields["digest"].GetStringValue()
		moves = resp.Fields["moves"].GetNumberValue()
	}

	clock := time.Now().Add(time.Hour)
	gm.now = func() time.Time { return clock }
	gm.cleanupGames(ctx)
	_, err = client.GetState(ctx, req)
	require.Equal(t, codes.NotFound, status.Code(err))

	loaded, err := client.LoadGame(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, digest, loaded.Fields["digest"].GetStringValue())
	assert.Equal(t, moves, loaded.Fields["moves"].GetNumberValue())

	_, err = client.RobotMove(ctx, req)
	assert.NoError(t, err, "a reloaded game keeps playing")

	_, err = client.LoadGame(ctx, request(t, map[string]interface{}{"game_id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLoadGameWithoutArchive(t *testing.T) {
	client, _, cleanup := setupTestServer(t, Config{MaxGames: 10})
	defer cleanup()
	_, err := client.LoadGame(context.Background(), request(t, map[string]interface{}{"game_id": "x"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
