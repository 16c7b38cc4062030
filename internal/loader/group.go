package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher produces the value for a key, usually over the network.
type Fetcher[K comparable, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

func (f FetcherFunc[K, V]) Fetch(ctx context.Context, key K) (V, error) { return f(ctx, key) }

// Cache is the subset of the resource cache the loaders need.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V) bool
}

// Stats counts what a Group has done since it was created.
type Stats struct {
	Fetches   uint64 // flights started
	Joins     uint64 // loads that attached to a running flight
	Hits      uint64 // loads answered from the cache
	Writes    uint64 // cache writes after a successful flight
	Discarded uint64 // results nobody was waiting for anymore
	Failures  uint64
	InFlight  int
}

// Options configure a Group.
type Options[K comparable] struct {
	// KeyString renders a key for deduplication and logs. Defaults to fmt.Sprint.
	KeyString func(K) string
	Logger    zerolog.Logger
}

// Group coordinates every Loader of one resource type. It owns the shared
// flights, the per-key interest counts and the context network work runs in.
type Group[K comparable, V any] struct {
	fetcher   Fetcher[K, V]
	cache     Cache[K, V]
	keyString func(K) string
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sf     singleflight.Group

	mu       sync.Mutex
	interest map[K]int

	fetches   atomic.Uint64
	joins     atomic.Uint64
	hits      atomic.Uint64
	writes    atomic.Uint64
	discarded atomic.Uint64
	failures  atomic.Uint64
}

// NewGroup creates a Group. Flights run under ctx until Close is called.
func NewGroup[K comparable, V any](ctx context.Context, fetcher Fetcher[K, V], cache Cache[K, V], opts Options[K]) *Group[K, V] {
	if ctx == nil {
		ctx = context.Background()
	}
	keyString := opts.KeyString
	if keyString == nil {
		keyString = func(k K) string { return fmt.Sprint(k) }
	}
	gctx, cancel := context.WithCancel(ctx)
	return &Group[K, V]{
		fetcher:   fetcher,
		cache:     cache,
		keyString: keyString,
		logger:    opts.Logger.With().Str("component", "loader").Logger(),
		ctx:       gctx,
		cancel:    cancel,
		interest:  make(map[K]int),
	}
}

// Close cancels the context of every running flight.
func (g *Group[K, V]) Close() {
	g.cancel()
}

// Stats returns the current counters.
func (g *Group[K, V]) Stats() Stats {
	g.mu.Lock()
	inFlight := len(g.interest)
	g.mu.Unlock()
	return Stats{
		Fetches:   g.fetches.Load(),
		Joins:     g.joins.Load(),
		Hits:      g.hits.Load(),
		Writes:    g.writes.Load(),
		Discarded: g.discarded.Load(),
		Failures:  g.failures.Load(),
		InFlight:  inFlight,
	}
}

func (g *Group[K, V]) cached(key K) (V, bool) {
	v, ok := g.cache.Get(key)
	if ok {
		g.hits.Add(1)
	}
	return v, ok
}

// join registers interest in key and returns the channel of the flight
// serving it, starting one when none is running.
func (g *Group[K, V]) join(h *Handle[K]) <-chan singleflight.Result {
	g.mu.Lock()
	if g.interest[h.key] > 0 {
		g.joins.Add(1)
	}
	g.interest[h.key]++
	g.mu.Unlock()

	return g.sf.DoChan(h.keyString, func() (any, error) {
		return g.run(h.key, h.keyString)
	})
}

// release drops the interest h holds. Safe to call more than once.
func (g *Group[K, V]) release(h *Handle[K]) {
	h.release.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if n := g.interest[h.key] - 1; n > 0 {
			g.interest[h.key] = n
		} else {
			delete(g.interest, h.key)
		}
	})
}

func (g *Group[K, V]) run(key K, ks string) (value any, err error) {
	// A loader may miss the cache just before an earlier flight for the same
	// key stores its value and leaves singleflight.
	if v, ok := g.cached(key); ok {
		g.logger.Debug().Str("key", ks).Msg("flight answered from cache")
		return v, nil
	}

	g.fetches.Add(1)
	g.logger.Debug().Str("key", ks).Msg("fetch started")

	v, err := g.safeFetch(key)
	if err != nil {
		g.failures.Add(1)
		g.logger.Warn().Err(err).Str("key", ks).Msg("fetch failed")
		return v, err
	}

	// Write while interest is still held so a flight whose loaders all
	// cancelled leaves the cache untouched.
	g.mu.Lock()
	interested := g.interest[key] > 0
	if interested {
		g.cache.Put(key, v)
	}
	g.mu.Unlock()

	if interested {
		g.writes.Add(1)
		g.logger.Debug().Str("key", ks).Msg("fetch stored")
	} else {
		g.discarded.Add(1)
		g.logger.Debug().Str("key", ks).Msg("fetch discarded, no interested loader")
	}
	return v, nil
}

func (g *Group[K, V]) safeFetch(key K) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch %s panicked: %v", g.keyString(key), r)
		}
	}()
	return g.fetcher.Fetch(g.ctx, key)
}
