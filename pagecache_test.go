package vgrid_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-theft-auto/vgrid"
)

// countingProvider returns deterministic pages and counts invocations.
type countingProvider struct {
	calls atomic.Int64
	fail  atomic.Int64 // number of leading calls that fail
	delay time.Duration
}

func (p *countingProvider) fetch(ctx context.Context, page, pageSize int) ([]string, error) {
	n := p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= p.fail.Load() {
		return nil, fmt.Errorf("page %d unavailable", page)
	}
	items := make([]string, pageSize)
	for i := range items {
		items[i] = fmt.Sprintf("item %d", page*pageSize+i)
	}
	return items, nil
}

func TestPageCacheMemoizes(t *testing.T) {
	p := &countingProvider{}
	cache := vgrid.NewPageCache(p.fetch)
	ctx := context.Background()

	first, err := cache.Get(ctx, 2, 5)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := cache.Get(ctx, 2, 5)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated get returned different items (-first +second):\n%s", diff)
	}
	if first[0] != "item 10" {
		t.Errorf("first item = %q, want %q", first[0], "item 10")
	}
}

func TestPageCacheKeyIncludesPageSize(t *testing.T) {
	p := &countingProvider{}
	cache := vgrid.NewPageCache(p.fetch)
	ctx := context.Background()

	if _, err := cache.Get(ctx, 0, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(ctx, 0, 10); err != nil {
		t.Fatal(err)
	}
	if got := p.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2 (distinct page sizes)", got)
	}
}

// TestPageCacheDeduplicatesConcurrentGets checks memoization idempotence
// under concurrency: many simultaneous callers for one key share one fetch.
func TestPageCacheDeduplicatesConcurrentGets(t *testing.T) {
	p := &countingProvider{delay: 20 * time.Millisecond}
	cache := vgrid.NewPageCache(p.fetch)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := cache.Get(ctx, 3, 4)
			if err != nil {
				t.Errorf("get %d: %v", i, err)
				return
			}
			results[i] = items
		}(i)
	}
	wg.Wait()

	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	for i, items := range results {
		if diff := cmp.Diff(results[0], items); diff != "" {
			t.Errorf("caller %d saw different items:\n%s", i, diff)
		}
	}
}

func TestPageCacheDoesNotCacheFailures(t *testing.T) {
	p := &countingProvider{}
	p.fail.Store(1)
	cache := vgrid.NewPageCache(p.fetch, vgrid.WithRetry[string](0, 0))
	ctx := context.Background()

	if _, err := cache.Get(ctx, 0, 5); err == nil {
		t.Fatal("expected first get to fail")
	}
	if cache.Cached(0, 5) {
		t.Error("failed fetch must not be cached")
	}

	items, err := cache.Get(ctx, 0, 5)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("items = %d, want 5", len(items))
	}
	if got := p.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestPageCacheRetriesWithBackoff(t *testing.T) {
	p := &countingProvider{}
	p.fail.Store(2)
	cache := vgrid.NewPageCache(p.fetch, vgrid.WithRetry[string](2, time.Millisecond))
	ctx := context.Background()

	items, err := cache.Get(ctx, 1, 3)
	if err != nil {
		t.Fatalf("get should succeed on the third attempt: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}
	if got := p.calls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 3 (two failures + one success)", got)
	}
}

func TestPageCacheRetryBudgetExhausted(t *testing.T) {
	p := &countingProvider{}
	p.fail.Store(100)
	cache := vgrid.NewPageCache(p.fetch, vgrid.WithRetry[string](2, time.Millisecond))

	_, err := cache.Get(context.Background(), 0, 3)
	if err == nil {
		t.Fatal("expected error after retry budget")
	}
	if got := p.calls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 3", got)
	}
}

func TestPageCacheGetHonorsContext(t *testing.T) {
	p := &countingProvider{delay: time.Minute}
	cache := vgrid.NewPageCache(p.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := cache.Get(ctx, 0, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if cache.Cached(0, 5) {
		t.Error("cancelled fetch must not be cached")
	}
}

func TestPageCacheLimitTrimsOldEntries(t *testing.T) {
	p := &countingProvider{}
	cache := vgrid.NewPageCache(p.fetch, vgrid.WithCacheLimit[string](3))
	ctx := context.Background()

	for page := 0; page < 6; page++ {
		if _, err := cache.Get(ctx, page, 4); err != nil {
			t.Fatal(err)
		}
	}

	if got := cache.Len(); got != 3 {
		t.Errorf("cache len = %d, want 3", got)
	}
	if cache.Cached(0, 4) {
		t.Error("oldest page should have been trimmed")
	}
	if !cache.Cached(5, 4) {
		t.Error("newest page should be retained")
	}
}
