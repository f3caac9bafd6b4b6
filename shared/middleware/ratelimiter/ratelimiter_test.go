package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, rate, capacity float64) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(rate, capacity, time.Hour)
	l.now = clock.now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestAllow(t *testing.T) {
	t.Run("burst up to capacity then deny", func(t *testing.T) {
		l, _ := newTestLimiter(t, 1, 3)

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newTestLimiter(t, 1, 1)

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
	})

	t.Run("refills over time without exceeding capacity", func(t *testing.T) {
		l, clock := newTestLimiter(t, 1, 2)
		require.True(t, l.Allow("a"))
		require.True(t, l.Allow("a"))
		require.False(t, l.Allow("a"))

		clock.advance(10 * time.Second)

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter(t, 1, 1)
	l.Allow("old")
	clock.advance(2 * time.Hour)
	l.Allow("fresh")

	assert.Equal(t, 1, l.sweep())
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Contains(t, l.buckets, "fresh")
	assert.NotContains(t, l.buckets, "old")
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(1, 1, time.Minute)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}
