package gate

import (
	"context"
	"sync"
	"time"
)

// CheckFunc answers a yes/no question about a subject, typically against the
// database (does the user still exist, is the user staff).
type CheckFunc[U comparable] func(ctx context.Context, subject U) bool

// CachedCheck wraps a CheckFunc with TTL-based caching so hot paths
// (middleware, per-request policy checks) do not hit the database every time.
type CachedCheck[U comparable] struct {
	inner CheckFunc[U]
	cache map[U]checkEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

type checkEntry struct {
	ok        bool
	expiresAt time.Time
}

// NewCachedCheck wraps fn with caching. ttl is how long answers are kept.
func NewCachedCheck[U comparable](fn CheckFunc[U], ttl time.Duration) *CachedCheck[U] {
	return &CachedCheck[U]{inner: fn, cache: make(map[U]checkEntry), ttl: ttl}
}

// Check returns the cached answer when fresh, otherwise asks the inner func.
func (c *CachedCheck[U]) Check(ctx context.Context, subject U) bool {
	c.mu.RLock()
	entry, ok := c.cache[subject]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.ok
	}

	answer := c.inner(ctx, subject)

	c.mu.Lock()
	c.cache[subject] = checkEntry{ok: answer, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return answer
}

// Invalidate removes a subject from the cache.
// Call this when the underlying fact changes (user deleted, staff flag toggled).
func (c *CachedCheck[U]) Invalidate(subject U) {
	c.mu.Lock()
	delete(c.cache, subject)
	c.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (c *CachedCheck[U]) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[U]checkEntry)
	c.mu.Unlock()
}
