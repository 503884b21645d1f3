package transliterate

import (
	"context"
	"strings"
	"sync"
)

type cacheEntry struct {
	kana string
	ok   bool
}

// Cache remembers the lookups of a run, including tokens without a rendering.
// Errors are not cached.
type Cache struct {
	next Transliterator

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps next with an in-memory cache.
func NewCache(next Transliterator) *Cache {
	return &Cache{
		next:    next,
		entries: make(map[string]cacheEntry),
	}
}

// Transliterate implements Transliterator.
func (c *Cache) Transliterate(ctx context.Context, token string) (string, bool, error) {
	key := strings.ToLower(token)

	c.mu.Lock()
	e, found := c.entries[key]
	c.mu.Unlock()
	if found {
		return e.kana, e.ok, nil
	}

	kana, ok, err := c.next.Transliterate(ctx, token)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{kana: kana, ok: ok}
	c.mu.Unlock()

	return kana, ok, nil
}

// Len returns the number of cached tokens.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
