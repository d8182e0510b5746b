package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cv-builder/internal/config"
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

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute, DefaultBurst: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("1.2.3.4", "/render", "POST")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 60, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	ok, info := l.Allow("1.2.3.4", "/render", "POST")
	assert.False(t, ok)
	assert.Equal(t, time.Second, info.RetryAfter)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute, DefaultBurst: 1})
	defer l.Stop()

	ok, _ := l.Allow("c", "/stats", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("c", "/stats", "POST")
	require.False(t, ok)

	clock.advance(time.Second)
	ok, _ = l.Allow("c", "/stats", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIsolated(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, DefaultBurst: 1})
	defer l.Stop()

	ok, _ := l.Allow("a", "/render", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("b", "/render", "POST")
	assert.True(t, ok)
	ok, _ = l.Allow("a", "/render", "POST")
	assert.False(t, ok)
}

func TestLimiter_ExportRoutesShareStricterBucket(t *testing.T) {
	l, _ := newTestLimiter(FromSettings(config.RateLimitConfig{
		Enabled: true, RequestsPerM: 100, Burst: 100, ExportPerM: 2, ExportBurst: 2,
	}))
	defer l.Stop()

	ok, info := l.Allow("c", "/export/pdf", "POST")
	require.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	ok, _ = l.Allow("c", "/export/image", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("c", "/export/print", "POST")
	assert.False(t, ok)

	// other routes still use the default bucket
	ok, info = l.Allow("c", "/render", "POST")
	assert.True(t, ok)
	assert.Equal(t, 100, info.Limit)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, DefaultBurst: 1})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		require.True(t, ok)
	}
}

func TestLimiter_DisabledAndLists(t *testing.T) {
	l := NewLimiter(FromSettings(config.RateLimitConfig{Enabled: false}))
	defer l.Stop()
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("c", "/export/pdf", "POST")
		assert.True(t, ok)
	}

	l2, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute,
		Whitelist: ParseIPList("10.0.0.1, 10.0.0.2"),
		Blacklist: ParseIPList("10.0.0.9"),
	})
	defer l2.Stop()
	for i := 0; i < 5; i++ {
		ok, _ := l2.Allow("10.0.0.2", "/render", "POST")
		assert.True(t, ok)
	}
	ok, _ := l2.Allow("10.0.0.9", "/render", "POST")
	assert.False(t, ok)
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Minute})
	defer l.Stop()

	l.Allow("a", "/render", "POST")
	clock.advance(30 * time.Second)
	l.Allow("b", "/render", "POST")
	clock.advance(45 * time.Second)

	assert.Equal(t, 1, l.cleanup())
	assert.Len(t, l.buckets, 1)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour, DefaultBurst: 50})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/render", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMatchEndpoint(t *testing.T) {
	configs := EndpointConfigs(5, 2)

	assert.Equal(t, "/export/", MatchEndpoint("/export/pdf", "POST", configs).Path)
	assert.Equal(t, "/auth/login", MatchEndpoint("/auth/login", "POST", configs).Path)
	assert.Nil(t, MatchEndpoint("/export/pdf", "GET", configs))
	assert.Nil(t, MatchEndpoint("/cvs", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}
