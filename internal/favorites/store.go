package favorites

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/five82/whisker/internal/catapi"
)

// Record is one saved cat.
type Record struct {
	ID      string    `toml:"id" json:"id"`
	URL     string    `toml:"url" json:"url"`
	Breed   string    `toml:"breed,omitempty" json:"breed,omitempty"`
	SavedAt time.Time `toml:"saved_at" json:"saved_at"`
}

// Store persists the favorites list as one small blob.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Book is the in-memory favorites list backed by a Store.
type Book struct {
	store Store
	now   func() time.Time

	saveMu  sync.Mutex // held for a whole Toggle, save included
	mu      sync.RWMutex
	records []Record
	index   map[string]int
}

// NewBook creates an empty Book. Call Load to read the stored list.
func NewBook(store Store) *Book {
	return &Book{store: store, now: time.Now, index: map[string]int{}}
}

// Load replaces the in-memory list with the stored one.
func (b *Book) Load(ctx context.Context) error {
	records, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].SavedAt.Before(records[j].SavedAt) })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = b.records[:0]
	b.index = make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, dup := b.index[r.ID]; dup {
			continue
		}
		b.index[r.ID] = len(b.records)
		b.records = append(b.records, r)
	}
	return nil
}

// Toggle adds img when absent and removes it when present, then saves.
// It reports whether img is a favorite afterwards. On a save error the
// in-memory list is rolled back. Toggles run one at a time.
func (b *Book) Toggle(ctx context.Context, img catapi.Image) (bool, error) {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	b.mu.Lock()
	prev := append([]Record(nil), b.records...)
	_, present := b.index[img.ID]
	if present {
		b.removeLocked(img.ID)
	} else {
		b.records = append(b.records, Record{ID: img.ID, URL: img.URL, Breed: breedName(img), SavedAt: b.now().UTC()})
		b.reindexLocked()
	}
	snapshot := append([]Record(nil), b.records...)
	b.mu.Unlock()

	if err := b.store.Save(ctx, snapshot); err != nil {
		b.mu.Lock()
		b.records = prev
		b.reindexLocked()
		b.mu.Unlock()
		return present, fmt.Errorf("save favorites: %w", err)
	}
	return !present, nil
}

// Contains reports whether id is a favorite.
func (b *Book) Contains(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.index[id]
	return ok
}

// Len returns the number of favorites.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Records returns a copy of the list, oldest first.
func (b *Book) Records() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Record(nil), b.records...)
}

func (b *Book) removeLocked(id string) {
	out := b.records[:0]
	for _, r := range b.records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	b.records = out
	b.reindexLocked()
}

func (b *Book) reindexLocked() {
	b.index = make(map[string]int, len(b.records))
	for i, r := range b.records {
		b.index[r.ID] = i
	}
}

func breedName(img catapi.Image) string {
	if breed, ok := img.PrimaryBreed(); ok {
		return breed.Name
	}
	return ""
}
