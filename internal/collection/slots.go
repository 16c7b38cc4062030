package collection

import (
	"sync"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/loader"
	"github.com/five82/whisker/internal/state"
)

// PictureGroup is the loader group serving image bodies keyed by URL.
type PictureGroup = loader.Group[string, catapi.Picture]

// SlotObserver is told about every state change of an observed item.
type SlotObserver func(id string, s state.State[catapi.Picture])

type slot struct {
	url         string
	loader      *loader.Loader[string, catapi.Picture]
	unsubscribe func()
}

// Slots keeps one picture loader per observed item. Loaders are created
// when an item becomes observed and closed when it stops being observed, so
// nothing is fetched for items the user cannot see.
type Slots struct {
	group    *PictureGroup
	observer SlotObserver

	mu     sync.Mutex
	slots  map[string]*slot
	closed bool
}

// NewSlots creates an empty set bound to group. observer may be nil.
func NewSlots(group *PictureGroup, observer SlotObserver) *Slots {
	return &Slots{
		group:    group,
		observer: observer,
		slots:    make(map[string]*slot),
	}
}

// Observe makes items the observed set. New items start loading, items that
// left the set have their loaders cancelled and dropped.
func (s *Slots) Observe(items []catapi.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	visible := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" || item.URL == "" {
			continue
		}
		visible[item.ID] = struct{}{}
		if existing, ok := s.slots[item.ID]; ok {
			if existing.url != item.URL {
				existing.url = item.URL
				existing.loader.Load(item.URL)
			}
			continue
		}
		s.slots[item.ID] = s.open(item)
	}

	for id, sl := range s.slots {
		if _, ok := visible[id]; ok {
			continue
		}
		sl.unsubscribe()
		sl.loader.Close()
		delete(s.slots, id)
	}
}

// Get returns the state of the item's picture, if the item is observed.
func (s *Slots) Get(id string) (state.State[catapi.Picture], bool) {
	s.mu.Lock()
	sl, ok := s.slots[id]
	s.mu.Unlock()
	if !ok {
		return state.State[catapi.Picture]{}, false
	}
	return sl.loader.State(), true
}

// Retry reloads the item's picture. It reports whether the item is observed.
func (s *Slots) Retry(id string) bool {
	s.mu.Lock()
	sl, ok := s.slots[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	sl.loader.Retry()
	return true
}

// Len returns the number of observed items.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Close cancels and drops every loader.
func (s *Slots) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sl := range s.slots {
		sl.unsubscribe()
		sl.loader.Close()
		delete(s.slots, id)
	}
	s.closed = true
}

func (s *Slots) open(item catapi.Image) *slot {
	l := s.group.NewLoader()
	unsubscribe := func() {}
	if s.observer != nil {
		id := item.ID
		unsubscribe = l.Subscribe(state.ObserverFunc[catapi.Picture](func(st state.State[catapi.Picture]) {
			s.observer(id, st)
		}))
	}
	l.Load(item.URL)
	return &slot{url: item.URL, loader: l, unsubscribe: unsubscribe}
}
