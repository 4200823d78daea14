package vgrid

import (
	"context"
	"sync"
)

// Provider fetches one page of the logical collection. It is assumed
// deterministic per (page, pageSize): the engine caches its result and never
// re-invokes it for a cached key. A short page (fewer than pageSize items)
// marks the end of the collection; a nil slice is treated as empty.
type Provider[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// pageEvent is one step of a range query's result stream: either a
// placeholder page of pending sentinels or a resolved page. Local is the
// page number relative to the query's start page, so the accumulator can
// place the page regardless of arrival order.
type pageEvent[T any] struct {
	local       int
	items       []T
	placeholder bool
}

// fetchRange streams the pages covering [startPage, startPage+pageCount).
//
// For every page it first emits a placeholder event of pageSize pending
// sentinels, so downstream consumers can render placeholders without
// waiting, then fetches all pages concurrently through the cache and emits
// each resolved page tagged with its query-local number. A failed page is
// logged and simply never resolves within this query; sibling pages are
// unaffected.
//
// Cancelling ctx (the query was superseded) stops emission and unblocks any
// in-flight sends; memoized results already obtained stay in the cache. The
// returned channel is closed once every page has either resolved or given
// up.
func fetchRange[T any](ctx context.Context, cache *PageCache[T], startPage, pageCount, pageSize int) <-chan pageEvent[T] {
	events := make(chan pageEvent[T], pageCount*2)

	go func() {
		defer close(events)

		for local := 0; local < pageCount; local++ {
			select {
			case events <- pageEvent[T]{local: local, items: make([]T, pageSize), placeholder: true}:
			case <-ctx.Done():
				return
			}
		}

		var wg sync.WaitGroup
		for local := 0; local < pageCount; local++ {
			wg.Add(1)
			go func(local int) {
				defer wg.Done()
				items, err := cache.Get(ctx, startPage+local, pageSize)
				if err != nil {
					if ctx.Err() == nil {
						gridLogger.Warn("page fetch failed, leaving slots pending",
							"page", startPage+local, "size", pageSize, "err", err)
					}
					return
				}
				select {
				case events <- pageEvent[T]{local: local, items: items}:
				case <-ctx.Done():
				}
			}(local)
		}
		wg.Wait()
	}()

	return events
}
