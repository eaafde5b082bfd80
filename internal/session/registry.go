package session

import (
	"sync"

	"wager_service/internal/domain"
	"wager_service/internal/game"
)

const shardCount = 64

// Registry is the authoritative map of player -> active session. It
// enforces "at most one active session per player" with a fixed sharded
// lock table: the player's shard is held across the whole
// check-and-insert, so two concurrent starts cannot both succeed.
type Registry struct {
	shards [shardCount]sync.Mutex

	mu       sync.RWMutex
	byPlayer map[int64]game.Game
	byToken  map[string]game.Game
}

func NewRegistry() *Registry {
	return &Registry{
		byPlayer: make(map[int64]game.Game),
		byToken:  make(map[string]game.Game),
	}
}

func (r *Registry) shard(playerID int64) *sync.Mutex {
	return &r.shards[uint64(playerID)%shardCount]
}

// Create runs build and registers its result while holding the player's
// shard lock. build typically debits the stake and constructs the
// session; if it fails nothing is registered.
func (r *Registry) Create(playerID int64, build func() (game.Game, error)) (game.Game, error) {
	l := r.shard(playerID)
	l.Lock()
	defer l.Unlock()

	r.mu.RLock()
	_, exists := r.byPlayer[playerID]
	r.mu.RUnlock()
	if exists {
		return nil, domain.ErrActiveSessionConflict
	}

	g, err := build()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byPlayer[playerID] = g
	r.byToken[g.Token()] = g
	r.mu.Unlock()
	return g, nil
}

// ByPlayer returns the player's active session, if any.
func (r *Registry) ByPlayer(playerID int64) (game.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byPlayer[playerID]
	return g, ok
}

// ByToken returns the session with the given token, if registered.
func (r *Registry) ByToken(token string) (game.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byToken[token]
	return g, ok
}

// Remove drops the player's session only if the token still matches the
// registered one. A mismatch is a no-op, not an error: it means a stale
// caller (typically the sweep) raced a fresh session for the same player.
func (r *Registry) Remove(playerID int64, token string) {
	l := r.shard(playerID)
	l.Lock()
	defer l.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byPlayer[playerID]
	if !ok || g.Token() != token {
		return
	}
	delete(r.byPlayer, playerID)
	delete(r.byToken, token)
}

// Snapshot returns the currently registered sessions for the sweep scan.
func (r *Registry) Snapshot() []game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]game.Game, 0, len(r.byPlayer))
	for _, g := range r.byPlayer {
		out = append(out, g)
	}
	return out
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPlayer)
}
