package limiter

import (
	"strconv"
	"sync"
	"time"
)

// Decision is the outcome of admitting an action.
type Decision int

const (
	// Allowed lets the action through.
	Allowed Decision = iota
	// Dropped marks a repeat of the same action inside the debounce
	// window; the caller treats it as already handled, not as an error.
	Dropped
	// Throttled marks an unrelated action arriving faster than the
	// per-player minimum interval.
	Throttled
)

// maxEntries bounds both maps; eviction kicks in once either fills up.
const maxEntries = 4096

// Limiter debounces duplicate actions per (player, action key) and
// throttles rapid unrelated actions per player. Constructed once and
// injected; state is in-memory and evicted opportunistically.
type Limiter struct {
	mu          sync.Mutex
	window      time.Duration
	minInterval time.Duration
	seen        map[string]time.Time
	lastAction  map[int64]time.Time
	now         func() time.Time
}

func New(window, minInterval time.Duration) *Limiter {
	return &Limiter{
		window:      window,
		minInterval: minInterval,
		seen:        make(map[string]time.Time),
		lastAction:  make(map[int64]time.Time),
		now:         time.Now,
	}
}

// Admit decides whether the action may proceed. A duplicate check runs
// before the throttle check so a re-click is reported as Dropped rather
// than Throttled.
func (l *Limiter) Admit(playerID int64, actionKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := strconv.FormatInt(playerID, 10) + ":" + actionKey

	if t, ok := l.seen[key]; ok && now.Sub(t) < l.window {
		return Dropped
	}
	if t, ok := l.lastAction[playerID]; ok && now.Sub(t) < l.minInterval {
		return Throttled
	}

	l.seen[key] = now
	l.lastAction[playerID] = now
	l.evictLocked(now)
	return Allowed
}

func (l *Limiter) evictLocked(now time.Time) {
	if len(l.seen) >= maxEntries {
		for k, t := range l.seen {
			if now.Sub(t) >= l.window {
				delete(l.seen, k)
			}
		}
	}
	if len(l.lastAction) >= maxEntries {
		for id, t := range l.lastAction {
			if now.Sub(t) >= l.minInterval {
				delete(l.lastAction, id)
			}
		}
	}
}
