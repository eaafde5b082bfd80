package limiter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests step time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(window, minInterval time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(window, minInterval)
	l.now = clock.now
	return l, clock
}

func TestAdmitDropsDuplicatesInsideWindow(t *testing.T) {
	l, clock := newTestLimiter(350*time.Millisecond, 0)

	assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
	assert.Equal(t, Dropped, l.Admit(1, "act:tok:5"))

	clock.advance(349 * time.Millisecond)
	assert.Equal(t, Dropped, l.Admit(1, "act:tok:5"))

	clock.advance(1 * time.Millisecond)
	assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
}

func TestAdmitThrottlesRapidUnrelatedActions(t *testing.T) {
	l, clock := newTestLimiter(350*time.Millisecond, 350*time.Millisecond)

	assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
	assert.Equal(t, Throttled, l.Admit(1, "act:tok:6"))

	clock.advance(350 * time.Millisecond)
	assert.Equal(t, Allowed, l.Admit(1, "act:tok:6"))
}

func TestDuplicateCheckedBeforeThrottle(t *testing.T) {
	l, clock := newTestLimiter(time.Second, 350*time.Millisecond)

	assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
	clock.advance(10 * time.Millisecond)

	// Same key inside both windows must read as Dropped, not Throttled
	assert.Equal(t, Dropped, l.Admit(1, "act:tok:5"))
}

func TestPlayersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(350*time.Millisecond, 350*time.Millisecond)

	assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
	assert.Equal(t, Allowed, l.Admit(2, "act:tok:5"))
}

func TestZeroWindowsAdmitEverything(t *testing.T) {
	l, _ := newTestLimiter(0, 0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, Allowed, l.Admit(1, "act:tok:5"))
	}
}

func TestEvictionKeepsMapsBounded(t *testing.T) {
	l, clock := newTestLimiter(100*time.Millisecond, 0)

	for i := 0; i < maxEntries; i++ {
		l.Admit(1, fmt.Sprintf("act:tok:%d", i))
	}
	clock.advance(200 * time.Millisecond)

	// The next admit runs eviction and clears the expired entries
	l.Admit(1, "act:tok:final")
	assert.Less(t, len(l.seen), maxEntries)
}
