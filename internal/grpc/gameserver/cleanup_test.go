package gameserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

type fakeArchive struct {
	mu    sync.Mutex
	saved map[string]int
}

func (a *fakeArchive) SaveSession(_ context.Context, s *game.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved[s.ID()] = s.Len()
	return nil
}

func (a *fakeArchive) Load(context.Context, string, game.SessionConfig) (*game.Session, error) {
	return nil, ErrGameNotFound
}

func TestGameCleanup(t *testing.T) {
	gm := NewGameManager(10, 30*time.Minute, "standard", testutil.NopLogger())
	archive := &fakeArchive{saved: make(map[string]int)}
	gm.SetArchive(archive)
	clock := time.Now()
	gm.now = func() time.Time { return clock }

	active, err := gm.CreateGame(testutil.Token(1, 2))
	require.NoError(t, err)
	idle, err := gm.CreateGame(testutil.Token(2, 2))
	require.NoError(t, err)

	// Active game should not be cleaned up
	gm.cleanupGames(context.Background())
	assert.Equal(t, 2, gm.GetActiveGames())

	clock = clock.Add(20 * time.Minute)
	active.touch(clock)
	clock = clock.Add(15 * time.Minute)
	gm.cleanupGames(context.Background())

	_, ok := gm.GetGame(active.id)
	assert.True(t, ok, "recently used game should stay")
	_, ok = gm.GetGame(idle.id)
	assert.False(t, ok, "idle game should be removed")
	assert.Contains(t, archive.saved, idle.id)
	assert.NotContains(t, archive.saved, active.id)
}

func TestRunCleanupStops(t *testing.T) {
	gm := NewGameManager(10, time.Millisecond, "standard", testutil.NopLogger())
	_, err := gm.CreateGame(testutil.Token(1, 2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gm.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return gm.GetActiveGames() == 0 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup did not stop")
	}
}

func TestRunCleanupDisabled(t *testing.T) {
	gm := NewGameManager(10, 0, "standard", testutil.NopLogger())
	done := make(chan struct{})
	go func() {
		gm.RunCleanup(context.Background(), time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup without idle timeout should return at once")
	}
}
