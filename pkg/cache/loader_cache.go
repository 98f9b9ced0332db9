// Package cache provides an LRU cache that loads missing entries through a callback
// and coalesces concurrent loads of the same key.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Result reports where a value returned by Get came from.
type Result int

const (
	// Miss means the caller's load function ran.
	Miss Result = iota
	// Hit means the value was already cached.
	Hit
	// Shared means the caller waited on a load started by another caller.
	Shared
)

// String returns the lower-case name of r.
func (r Result) String() string {
	switch r {
	case Hit:
		return "hit"
	case Shared:
		return "shared"
	default:
		return "miss"
	}
}

// LoaderCache maps string keys to values, loading each missing key at most once at a time.
// Failed loads are not cached.
type LoaderCache[V any] struct {
	lru         *lru.Cache[string, V]
	group       singleflight.Group
	loadTimeout time.Duration
}

// Option configures a LoaderCache.
type Option func(*options)

type options struct {
	loadTimeout time.Duration
}

// WithLoadTimeout bounds each detached load. 0 means no bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.loadTimeout = d
	}
}

// NewLoaderCache creates a cache holding at most maxEntries values.
func NewLoaderCache[V any](maxEntries int, opts ...Option) (*LoaderCache[V], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, err := lru.New[string, V](maxEntries)
	if err != nil {
		return nil, err
	}

	return &LoaderCache[V]{lru: store, loadTimeout: o.loadTimeout}, nil
}

// Get returns the cached value for key or runs load to produce it.
// The load is detached from the cancellation of the caller that started it, so one
// caller giving up does not fail the others waiting on the same key. Each caller still
// returns ctx.Err() as soon as its own ctx is done. With WithLoadTimeout the detached
// load is cancelled after that duration even when every caller has left.
func (c *LoaderCache[V]) Get(ctx context.Context, key string, load func(context.Context) (V, error)) (V, Result, error) {
	var zero V

	if v, ok := c.lru.Get(key); ok {
		return v, Hit, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc

			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}

		v, err := load(loadCtx)
		if err != nil {
			return zero, err
		}

		c.lru.Add(key, v)

		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, Miss, ctx.Err()
	case res := <-ch:
		result := Miss
		if res.Shared {
			result = Shared
		}

		if res.Err != nil {
			return zero, result, res.Err
		}

		return res.Val.(V), result, nil
	}
}

// Invalidate removes key.
func (c *LoaderCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Purge removes every entry.
func (c *LoaderCache[V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached entries.
func (c *LoaderCache[V]) Len() int {
	return c.lru.Len()
}
