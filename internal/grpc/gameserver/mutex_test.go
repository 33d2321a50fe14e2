package gameserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

// TestNoDeadlock runs cleanup while robots play on the same games.
func TestNoDeadlock(t *testing.T) {
	s := NewServer(Config{MaxGames: 0, IdleTimeout: time.Hour, Logger: testutil.NopLogger()})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		g, err := s.games.CreateGame(testutil.Token(int64(i), 2))
		require.NoError(t, err)
		ids = append(ids, g.id)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for _, id := range ids {
			req, _ := structpb.NewStruct(map[string]interface{}{"game_id": id})
			for w := 0; w < 2; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 20; i++ {
						_, err := s.RobotMove(ctx, req)
						assert.NoError(t, err)
						_, err = s.GetState(ctx, req)
						assert.NoError(t, err)
					}
				}()
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s.games.cleanupGames(ctx)
				time.Sleep(time.Millisecond)
			}
		}()
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("Deadlock detected")
	}
	for _, id := range ids {
		g, ok := s.games.GetGame(id)
		require.True(t, ok)
		assert.Positive(t, g.session.Len())
		assert.NoError(t, g.session.Verify(ctx))
	}
}
