package loader

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/five82/whisker/internal/state"
)

// Handle identifies one load a Loader started. Cancelling it is advisory:
// the network work may still finish but its result is never published
// through this handle.
type Handle[K comparable] struct {
	ID        string
	key       K
	keyString string
	cancelled atomic.Bool
	release   sync.Once
}

// Key returns the key the handle loads.
func (h *Handle[K]) Key() K { return h.key }

// Cancelled reports whether the handle was cancelled.
func (h *Handle[K]) Cancelled() bool { return h.cancelled.Load() }

// Loader drives the lifecycle of one consumer slot. It holds at most one
// handle at a time.
type Loader[K comparable, V any] struct {
	group   *Group[K, V]
	machine state.Machine[V]
	logger  zerolog.Logger

	mu       sync.Mutex
	key      K
	hasKey   bool
	loadedOf bool // machine value belongs to key
	handle   *Handle[K]
	closed   bool
}

// NewLoader creates an Idle loader bound to g.
func (g *Group[K, V]) NewLoader() *Loader[K, V] {
	return &Loader[K, V]{group: g, logger: g.logger}
}

// Load starts loading key. A cache hit publishes Loaded synchronously
// without touching the network. Loading the key already in flight is a
// no-op; loading a different key cancels the current handle first.
func (l *Loader[K, V]) Load(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if l.hasKey && l.key == key && l.handle != nil {
		return
	}
	if !l.hasKey || l.key != key {
		l.loadedOf = false
	}
	l.cancelLocked()
	l.key = key
	l.hasKey = true
	l.startLocked()
}

// Retry reloads the current key, keeping the current value visible.
func (l *Loader[K, V]) Retry() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || !l.hasKey || l.handle != nil {
		return
	}
	l.startLocked()
}

// Cancel abandons the in-flight load, if any. Nothing is published for it.
func (l *Loader[K, V]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelLocked()
}

// Close cancels any in-flight load and stops all further publications.
func (l *Loader[K, V]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelLocked()
	l.closed = true
}

// State returns the latest published state.
func (l *Loader[K, V]) State() state.State[V] {
	return l.machine.Current()
}

// Key returns the key most recently passed to Load.
func (l *Loader[K, V]) Key() (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key, l.hasKey
}

// Pending reports whether a handle is in flight.
func (l *Loader[K, V]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle != nil
}

// Subscribe registers an observer for every state this loader publishes.
func (l *Loader[K, V]) Subscribe(o state.Observer[V]) (unsubscribe func()) {
	return l.machine.Subscribe(o)
}

func (l *Loader[K, V]) startLocked() {
	if v, ok := l.group.cached(l.key); ok {
		l.loadedOf = true
		l.machine.Hit(v)
		return
	}

	if l.loadedOf {
		l.machine.Begin()
	} else {
		l.machine.BeginFresh()
	}

	h := &Handle[K]{
		ID:        uuid.NewString(),
		key:       l.key,
		keyString: l.group.keyString(l.key),
	}
	l.handle = h
	l.logger.Debug().Str("handle", h.ID).Str("key", h.keyString).Msg("load started")
	ch := l.group.join(h)
	go l.await(h, ch)
}

func (l *Loader[K, V]) await(h *Handle[K], ch <-chan singleflight.Result) {
	res := <-ch
	l.group.release(h)

	l.mu.Lock()
	defer l.mu.Unlock()
	if h.Cancelled() || l.handle != h || l.closed {
		l.logger.Debug().Str("handle", h.ID).Str("key", h.keyString).Msg("result dropped for cancelled handle")
		return
	}
	l.handle = nil

	if res.Err != nil {
		_, _ = l.machine.Reject(res.Err)
		return
	}
	v, _ := res.Val.(V)
	l.loadedOf = true
	_, _ = l.machine.Resolve(v)
}

func (l *Loader[K, V]) cancelLocked() {
	h := l.handle
	if h == nil {
		return
	}
	l.handle = nil
	h.cancelled.Store(true)
	l.group.release(h)
	l.logger.Debug().Str("handle", h.ID).Str("key", h.keyString).Msg("load cancelled")
}
