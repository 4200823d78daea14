package vgrid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// pageKey is the composite memo key for fetch results.
type pageKey struct {
	Page int
	Size int
}

// pageEntry tracks one fetch flight and its eventual result.
// ready is closed exactly once, when the flight resolves or fails.
type pageEntry[T any] struct {
	ready   chan struct{}
	items   []T
	err     error
	done    bool
	lastUse uint64
}

// PageCache is a type-safe memo table for page-provider results, keyed by
// (page, pageSize).
//
// Results are cached for the lifetime of the cache; repeated Gets for the
// same key return the cached slice without re-invoking the provider, and
// concurrent Gets for the same key share a single in-flight fetch. Failed
// fetches are never cached, so a later query retries the page.
//
// With a non-zero entry limit, resolved entries beyond the limit are trimmed
// least-recently-used first. The default (0) never evicts.
type PageCache[T any] struct {
	provider Provider[T]
	retries  int
	backoff  time.Duration
	limit    int

	mu      sync.Mutex
	entries map[pageKey]*pageEntry[T]
	useSeq  uint64

	fetches atomic.Int64 // provider invocations, including retries
}

// NewPageCache creates a standalone memo table around the given provider,
// for callers that want memoized, deduplicated page fetching without a full
// engine. Only the fetch-related options (WithRetry, WithCacheLimit) apply.
func NewPageCache[T any](p Provider[T], opts ...Option[T]) *PageCache[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newPageCache(p, cfg.retries, cfg.backoff, cfg.cacheLimit)
}

// newPageCache creates a memo table around the given provider.
func newPageCache[T any](p Provider[T], retries int, backoff time.Duration, limit int) *PageCache[T] {
	return &PageCache[T]{
		provider: p,
		retries:  retries,
		backoff:  backoff,
		limit:    limit,
		entries:  make(map[pageKey]*pageEntry[T]),
	}
}

// Get returns the items for (page, size), fetching through the provider on a
// miss. The first caller for a key becomes the flight that invokes the
// provider; later callers wait on that flight. ctx cancels only this
// caller's wait (and the flight itself when this caller started it) — a
// cancelled flight leaves no cache entry behind.
func (c *PageCache[T]) Get(ctx context.Context, page, size int) ([]T, error) {
	key := pageKey{Page: page, Size: size}
	for {
		c.mu.Lock()
		entry, ok := c.entries[key]
		if ok {
			c.useSeq++
			entry.lastUse = c.useSeq
			c.mu.Unlock()

			select {
			case <-entry.ready:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			// A flight aborted by a superseded query's cancellation is not
			// this caller's failure: its entry has been removed, so loop and
			// start a fresh flight.
			if entry.err != nil && errors.Is(entry.err, context.Canceled) && ctx.Err() == nil {
				continue
			}
			return entry.items, entry.err
		}

		// Miss: this caller becomes the flight.
		entry = &pageEntry[T]{ready: make(chan struct{})}
		c.useSeq++
		entry.lastUse = c.useSeq
		c.entries[key] = entry
		c.mu.Unlock()

		items, err := c.fetchPage(ctx, page, size)

		c.mu.Lock()
		entry.items = items
		entry.err = err
		entry.done = true
		if err != nil {
			delete(c.entries, key)
		} else if c.limit > 0 {
			c.trimLocked()
		}
		c.mu.Unlock()
		close(entry.ready)

		return items, err
	}
}

// Cached reports whether a resolved result exists for (page, size) without
// touching its recency.
func (c *PageCache[T]) Cached(page, size int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[pageKey{Page: page, Size: size}]
	return ok && entry.done && entry.err == nil
}

// Len returns the number of cache entries, including in-flight ones.
func (c *PageCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetches returns the total number of provider invocations so far.
func (c *PageCache[T]) Fetches() int64 {
	return c.fetches.Load()
}

// fetchPage invokes the provider with bounded exponential backoff. After the
// retry budget is exhausted the error is returned and the page stays pending
// for the current query only.
func (c *PageCache[T]) fetchPage(ctx context.Context, page, size int) ([]T, error) {
	delay := c.backoff
	for attempt := 0; ; attempt++ {
		c.fetches.Add(1)
		items, err := c.provider(ctx, page, size)
		if err == nil {
			return items, nil
		}
		if attempt >= c.retries || ctx.Err() != nil {
			return nil, err
		}
		gridLogger.Debug("page fetch failed, retrying",
			"page", page, "size", size, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// trimLocked drops least-recently-used resolved entries until the cache fits
// the limit. In-flight entries are never trimmed. Caller holds c.mu.
func (c *PageCache[T]) trimLocked() {
	for len(c.entries) > c.limit {
		var (
			oldestKey pageKey
			oldestUse uint64
			found     bool
		)
		for key, entry := range c.entries {
			if !entry.done {
				continue
			}
			if !found || entry.lastUse < oldestUse {
				oldestKey, oldestUse, found = key, entry.lastUse, true
			}
		}
		if !found {
			return
		}
		delete(c.entries, oldestKey)
	}
}
