package vgrid

import "time"

// Option configures an Engine instance.
type Option[T any] func(*config[T])

// config holds engine configuration assembled from options.
type config[T any] struct {
	sink       Sink[T]
	debounce   time.Duration
	retries    int
	backoff    time.Duration
	cacheLimit int
	key        KeyFunc[T]
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		debounce: 100 * time.Millisecond,
		retries:  2,
		backoff:  50 * time.Millisecond,
	}
}

// WithSink sets the render sink that receives buffer updates.
func WithSink[T any](s Sink[T]) Option[T] {
	return func(c *config[T]) { c.sink = s }
}

// WithDebounce sets the coalescing window for page resolutions: the first
// event of a burst arms a timer, further events within the window accumulate
// silently, and one buffer update is published when it fires. The window is
// anchored at the first event rather than reset by later ones, so a
// continuous stream of resolutions still publishes every d instead of
// starving the sink. Zero or negative disables coalescing (every page event
// publishes immediately).
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *config[T]) { c.debounce = d }
}

// WithRetry sets the fetch retry budget: up to retries re-attempts per page
// with exponential backoff starting at base. retries 0 disables retrying.
func WithRetry[T any](retries int, base time.Duration) Option[T] {
	return func(c *config[T]) {
		if retries < 0 {
			retries = 0
		}
		c.retries = retries
		c.backoff = base
	}
}

// WithCacheLimit caps the page memo table at n resolved pages, trimming
// least-recently-used entries past the cap. n <= 0 (the default) never
// evicts.
func WithCacheLimit[T any](n int) Option[T] {
	return func(c *config[T]) { c.cacheLimit = n }
}

// WithItemKey overrides the reconciliation key function. The default keys
// items by (absolute index, pending flag); supply a custom function when two
// loads of the same index should be treated as different items (for example
// after out-of-band data edits).
func WithItemKey[T any](key KeyFunc[T]) Option[T] {
	return func(c *config[T]) { c.key = key }
}
