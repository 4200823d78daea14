package vgrid

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Engine is the virtualization pipeline for one grid.
//
// All work is event-driven: geometry, scroll, and count inputs post the
// latest values to a mailbox consumed by a single run goroutine, which owns
// every piece of mutable state. Each effective window change starts a new
// range query: the previous query's fetches are cancelled (switch-to-latest
// — each query gets its own context and event channel, so a superseded
// query's late results are simply never read), a fresh accumulator is built,
// and the covering pages are fetched through the memo cache. Page events are
// coalesced (the first event of a burst opens a fixed window, see
// WithDebounce) before the buffer is re-reconciled and pushed to the sink.
//
// Inputs are safe to call from any goroutine. Outputs are available both as
// pull snapshots (Buffer, ContentHeight) and as pushes to the configured
// Sink.
type Engine[T any] struct {
	pageSize int
	cache    *PageCache[T]
	sink     Sink[T]
	debounce time.Duration
	key      KeyFunc[T]

	mu sync.Mutex
	in engineInputs

	sigCh      chan struct{}
	rootCtx    context.Context
	rootCancel context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once

	outSlots  []*Slot[T]
	outHeight float32

	reconciles atomic.Int64
}

// engineInputs is the latest-value mailbox. A newer snapshot simply
// overwrites an older unconsumed one; the run goroutine only ever acts on
// the most recent values.
type engineInputs struct {
	geom      Geometry
	scrollTop float32
	viewportH float32
	total     int
	dirty     bool
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Fetches     int64 // provider invocations, including retries
	CachedPages int   // entries in the page memo table
	Reconciles  int64 // buffer reconciliations published
}

// New creates an engine for a collection of totalCount items fetched in
// pages of pageSize through the provider, and starts its run goroutine.
// Nothing is fetched until a valid geometry and viewport arrive. Call Close
// to stop the engine.
func New[T any](totalCount, pageSize int, provider Provider[T], opts ...Option[T]) *Engine[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine[T]{
		pageSize:   pageSize,
		cache:      newPageCache(provider, cfg.retries, cfg.backoff, cfg.cacheLimit),
		sink:       cfg.sink,
		debounce:   cfg.debounce,
		key:        cfg.key,
		sigCh:      make(chan struct{}, 1),
		rootCtx:    ctx,
		rootCancel: cancel,
		done:       make(chan struct{}),
	}
	e.in.total = totalCount

	go e.run()
	return e
}

// SetGeometry supplies a new geometry measurement (resize or mount).
func (e *Engine[T]) SetGeometry(g Geometry) {
	e.post(func(in *engineInputs) { in.geom = g })
}

// SetViewport supplies the current scroll offset (distance of the viewport
// top above the grid origin, clamped to >= 0) and the viewport pixel height.
func (e *Engine[T]) SetViewport(scrollTop, viewportHeight float32) {
	e.post(func(in *engineInputs) {
		in.scrollTop = maxf(scrollTop, 0)
		in.viewportH = viewportHeight
	})
}

// SetTotalCount changes the logical collection size mid-session. The active
// query is discarded and rebuilt; memoized pages are kept, since page keys
// are count-independent.
func (e *Engine[T]) SetTotalCount(total int) {
	e.post(func(in *engineInputs) { in.total = total })
}

// post applies a mutation to the mailbox and signals the run goroutine.
func (e *Engine[T]) post(mutate func(*engineInputs)) {
	e.mu.Lock()
	mutate(&e.in)
	e.in.dirty = true
	e.mu.Unlock()

	select {
	case e.sigCh <- struct{}{}:
	default:
	}
}

// Buffer returns a snapshot of the current render-slot buffer.
func (e *Engine[T]) Buffer() []*Slot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Slot[T], len(e.outSlots))
	copy(out, e.outSlots)
	return out
}

// ContentHeight returns the current total content height.
func (e *Engine[T]) ContentHeight() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outHeight
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine[T]) Stats() Stats {
	return Stats{
		Fetches:     e.cache.Fetches(),
		CachedPages: e.cache.Len(),
		Reconciles:  e.reconciles.Load(),
	}
}

// Close stops the run goroutine and cancels any in-flight fetches. It is
// idempotent and safe to call concurrently with the input methods.
func (e *Engine[T]) Close() {
	e.closeOnce.Do(func() {
		e.rootCancel()
		<-e.done
	})
}

// run is the single goroutine that owns the pipeline state.
func (e *Engine[T]) run() {
	defer close(e.done)

	var (
		cur         Window
		curTotal    = -1
		acc         *accumulator[T]
		events      <-chan pageEvent[T]
		queryCancel context.CancelFunc
		flushC      <-chan time.Time
		slots       []*Slot[T]
	)

	publish := func() {
		var items []Item[T]
		if acc != nil {
			items = sliceBuffer(acc, cur)
		}
		var allocated int
		slots, allocated = reconcile(slots, items, e.key)
		position(slots, cur.Geometry)
		height := cur.Geometry.ContentHeight(curTotal)
		e.reconciles.Add(1)
		gridLogger.Debug("buffer published",
			"slots", len(slots), "allocated", allocated, "height", height)

		// Publish value copies: slots is the run goroutine's private working
		// set and later reconciliations refresh it in place, so consumers
		// must never see those structs directly.
		snapshot := make([]*Slot[T], len(slots))
		for i, s := range slots {
			c := *s
			snapshot[i] = &c
		}
		e.mu.Lock()
		e.outSlots = snapshot
		e.outHeight = height
		e.mu.Unlock()
		if e.sink != nil {
			e.sink.Update(snapshot, height)
		}
	}

	for {
		select {
		case <-e.rootCtx.Done():
			if queryCancel != nil {
				queryCancel()
			}
			return

		case <-e.sigCh:
			e.mu.Lock()
			in := e.in
			e.in.dirty = false
			e.mu.Unlock()
			if !in.dirty {
				continue
			}

			w := ComputeWindow(in.scrollTop, in.viewportH, in.geom, in.total, e.pageSize)
			if w.Equal(cur) && in.total == curTotal {
				continue
			}
			gridLogger.Debug("window changed",
				"offset", w.Offset, "length", w.Length,
				"startPage", w.StartPage, "endPage", w.EndPage)

			if queryCancel != nil {
				queryCancel()
				queryCancel = nil
			}
			cur = w
			curTotal = in.total
			flushC = nil
			if w.IsEmpty() {
				acc = nil
				events = nil
				publish()
				continue
			}

			acc = newAccumulator[T](w.StartPage, w.PageSize)
			ctx, cancel := context.WithCancel(e.rootCtx)
			queryCancel = cancel
			events = fetchRange(ctx, e.cache, w.StartPage, w.PageCount(), w.PageSize)
			// Publish immediately so placeholders render without waiting out
			// the debounce interval.
			publish()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			acc.apply(ev)
			if e.debounce <= 0 {
				publish()
			} else if flushC == nil {
				flushC = time.After(e.debounce)
			}

		case <-flushC:
			flushC = nil
			publish()
		}
	}
}
