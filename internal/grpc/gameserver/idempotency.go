package gameserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	idempotencyTTL   = 24 * time.Hour
	idempotencyLimit = 1000
)

// idempotencyKey is the calling player, -1 when unnamed, and the client
// supplied key.
type idempotencyKey struct {
	Player int
	Key    string
}

type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyManager remembers SubmitMove responses so a retried request
// is answered without executing the move twice.
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns the cached response for player and key, or nil.
func (im *IdempotencyManager) Check(player int, key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{Player: player, Key: key}]
	if !exists || im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches resp for player and key.
func (im *IdempotencyManager) Store(player int, key string, resp *structpb.Struct) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{Player: player, Key: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}
	if len(im.cache) > idempotencyLimit {
		im.cleanupOldEntriesLocked()
	}
}

// Clear forgets every key. Undo calls it, since cached answers describe
// moves that are gone.
func (im *IdempotencyManager) Clear() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.cache = make(map[idempotencyKey]*idempotencyEntry)
}

// cleanupOldEntriesLocked must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
