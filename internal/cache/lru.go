package cache

import (
	"container/list"
	"errors"
	"sync"
)

// Options bound an LRU. At least one of MaxEntries or MaxBytes must be set.
type Options[K comparable, V any] struct {
	// MaxEntries caps the number of stored values. Zero means no entry bound.
	MaxEntries int
	// MaxBytes caps the summed SizeOf of stored values. Zero means no byte bound.
	MaxBytes int64
	// SizeOf weighs a value. Required when MaxBytes is set.
	SizeOf func(V) int64
	// OnEvict runs after a value leaves the cache through eviction, never
	// for Remove or Clear. It is called without the cache lock held.
	OnEvict func(key K, value V)
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	Bytes     int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// LRU is a generic, thread-safe, bounded cache with least recently used eviction.
type LRU[K comparable, V any] struct {
	maxEntries int
	maxBytes   int64
	sizeOf     func(V) int64
	onEvict    func(key K, value V)

	mu        sync.Mutex
	ll        *list.List // front is most recently used
	items     map[K]*list.Element
	bytes     int64
	hits      uint64
	misses    uint64
	evictions uint64
}

var (
	errNoBound      = errors.New("cache needs MaxEntries or MaxBytes")
	errNegative     = errors.New("cache bounds must not be negative")
	errMissingSizer = errors.New("MaxBytes requires SizeOf")
)

// New creates an LRU with the given bounds.
func New[K comparable, V any](opts Options[K, V]) (*LRU[K, V], error) {
	if opts.MaxEntries < 0 || opts.MaxBytes < 0 {
		return nil, errNegative
	}
	if opts.MaxEntries == 0 && opts.MaxBytes == 0 {
		return nil, errNoBound
	}
	if opts.MaxBytes > 0 && opts.SizeOf == nil {
		return nil, errMissingSizer
	}
	return &LRU[K, V]{
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxBytes,
		sizeOf:     opts.SizeOf,
		onEvict:    opts.OnEvict,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
	}, nil
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.ll.MoveToFront(elem)
		c.hits++
		return elem.Value.(*entry[K, V]).value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Peek returns the value for key without touching recency or counters.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is stored.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Put stores value under key as most recently used, evicting from the
// least recently used end until the bounds hold again. It reports whether
// the value was stored; a value heavier than MaxBytes on its own is not.
func (c *LRU[K, V]) Put(key K, value V) bool {
	var size int64
	if c.sizeOf != nil {
		size = c.sizeOf(value)
		if size < 0 {
			size = 0
		}
	}

	c.mu.Lock()
	if c.maxBytes > 0 && size > c.maxBytes {
		c.mu.Unlock()
		return false
	}
	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		c.bytes += size - ent.size
		ent.value = value
		ent.size = size
		c.ll.MoveToFront(elem)
	} else {
		c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, size: size})
		c.bytes += size
	}
	evicted := c.shrink()
	c.mu.Unlock()

	c.notify(evicted)
	return true
}

// Remove deletes key. It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Clear drops every entry. Counters survive.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[K]*list.Element)
	c.bytes = 0
}

// Len returns the number of stored values.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Size returns the summed weight of stored values.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Keys returns the stored keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, c.ll.Len())
	for elem := c.ll.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.ll.Len(),
		Bytes:     c.bytes,
	}
}

// shrink must be called with c.mu held.
func (c *LRU[K, V]) shrink() []*entry[K, V] {
	var evicted []*entry[K, V]
	for c.overBudget() {
		back := c.ll.Back()
		if back == nil {
			break
		}
		ent := back.Value.(*entry[K, V])
		c.removeElement(back)
		c.evictions++
		evicted = append(evicted, ent)
	}
	return evicted
}

func (c *LRU[K, V]) overBudget() bool {
	if c.maxEntries > 0 && c.ll.Len() > c.maxEntries {
		return true
	}
	return c.maxBytes > 0 && c.bytes > c.maxBytes
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	ent := c.ll.Remove(elem).(*entry[K, V])
	delete(c.items, ent.key)
	c.bytes -= ent.size
}

func (c *LRU[K, V]) notify(evicted []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, ent := range evicted {
		c.onEvict(ent.key, ent.value)
	}
}
