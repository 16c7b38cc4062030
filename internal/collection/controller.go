package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/state"
)

// Lister retrieves one page of image records.
type Lister interface {
	SearchImages(ctx context.Context, query catapi.SearchQuery) ([]catapi.Image, error)
}

// Options configure a Controller.
type Options struct {
	// Query is the starting search. Its Limit is replaced by Limit when set.
	Query catapi.SearchQuery
	Limit int
}

// Snapshot is the latest view of the collection.
type Snapshot struct {
	Phase               state.Phase
	Items               []catapi.Image
	Err                 error
	Query               catapi.SearchQuery // query that produced Items
	LastUpdated         time.Time
	ConsecutiveFailures int
	Version             uint64
}

// IsOffline reports whether the last two or more bulk calls failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Limit returns the page size Items were requested with.
func (s Snapshot) Limit() int {
	return s.Query.Limit
}

// Controller owns the bulk list of images. It issues one call per LoadAll,
// replaces the items wholesale on success and keeps the last good items on
// failure.
type Controller struct {
	lister Lister
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	machine state.Machine[[]catapi.Image]

	mu          sync.Mutex
	query       catapi.SearchQuery // last attempted
	loadedQuery catapi.SearchQuery // last successful
	loaded      bool
	generation  uint64
	inflight    context.CancelFunc
	lastUpdated time.Time
	failures    int
	closed      bool
	wg          sync.WaitGroup
}

// NewController creates an Idle controller. Calls run under ctx until Close.
func NewController(ctx context.Context, lister Lister, opts Options, logger zerolog.Logger) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	query := opts.Query
	if opts.Limit > 0 {
		query.Limit = opts.Limit
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	cctx, cancel := context.WithCancel(ctx)
	return &Controller{
		lister: lister,
		logger: logger.With().Str("component", "collection").Logger(),
		ctx:    cctx,
		cancel: cancel,
		query:  query,
	}
}

// LoadAll requests limit items with the current query. A call issued while
// another is in flight cancels the older one and its result is dropped.
func (c *Controller) LoadAll(limit int) error {
	if limit < 1 || limit > catapi.MaxSearchLimit {
		return fmt.Errorf("limit %d out of range 1..%d", limit, catapi.MaxSearchLimit)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.query
	q.Limit = limit
	return c.startLocked(q)
}

// Refresh re-issues the last query, keeping current items visible.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(c.query)
}

// Filter switches to breedID (empty clears the filter) and reloads.
func (c *Controller) Filter(breedID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.query
	q.BreedID = breedID
	return c.startLocked(q)
}

// Query returns the query the next Refresh will issue.
func (c *Controller) Query() catapi.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Snapshot returns a copy of the current collection state. Its Query is the
// one the items came from; before the first success it is the pending query.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.machine.Current()
	query := c.query
	if c.loaded {
		query = c.loadedQuery
	}
	return Snapshot{
		Phase:               cur.Phase,
		Items:               cloneItems(cur.Value),
		Err:                 cur.Err,
		Query:               query,
		LastUpdated:         c.lastUpdated,
		ConsecutiveFailures: c.failures,
		Version:             cur.Version,
	}
}

// Subscribe registers o for every lifecycle change of the list.
func (c *Controller) Subscribe(o state.Observer[[]catapi.Image]) (unsubscribe func()) {
	return c.machine.Subscribe(o)
}

// Close cancels any in-flight call and waits for it to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.generation++
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) startLocked(q catapi.SearchQuery) error {
	if c.closed {
		return fmt.Errorf("collection controller closed")
	}
	if c.inflight != nil {
		c.inflight()
		c.logger.Debug().Uint64("generation", c.generation).Msg("superseding in-flight list request")
	}
	c.query = q
	c.generation++
	gen := c.generation

	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.machine.Begin()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		items, err := c.lister.SearchImages(ctx, q)
		c.finish(gen, q, items, err)
	}()
	return nil
}

func (c *Controller) finish(gen uint64, q catapi.SearchQuery, items []catapi.Image, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug().Uint64("generation", gen).Msg("dropping stale list result")
		return
	}
	c.inflight = nil
	c.lastUpdated = time.Now()

	if err != nil {
		c.failures++
		c.logger.Warn().
			Err(err).
			Str("kind", catapi.KindOf(err).String()).
			Int("limit", q.Limit).
			Int("consecutive_failures", c.failures).
			Msg("list request failed")
		_, _ = c.machine.Reject(err)
		return
	}

	c.failures = 0
	c.loadedQuery = q
	c.loaded = true
	c.logger.Info().Int("count", len(items)).Int("limit", q.Limit).Str("breed", q.BreedID).Msg("list loaded")
	_, _ = c.machine.Resolve(cloneItems(items))
}

func cloneItems(items []catapi.Image) []catapi.Image {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catapi.Image, len(items))
	copy(dup, items)
	return dup
}
