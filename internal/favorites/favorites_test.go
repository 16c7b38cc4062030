package favorites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/whisker/internal/catapi"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr(), DialTimeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func cat(id, breed string) catapi.Image {
	img := catapi.Image{ID: id, URL: "https://cdn.example/" + id + ".jpg"}
	if breed != "" {
		img.Breeds = []catapi.Breed{{ID: breed, Name: breed}}
	}
	return img
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) ([]Record, error) { return nil, nil }
func (f failingStore) Save(context.Context, []Record) error  { return f.err }

func TestRedisConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RedisConfig
		wantErr bool
	}{
		{"valid", RedisConfig{Addr: "localhost:6379"}, false},
		{"empty addr", RedisConfig{}, true},
		{"negative db", RedisConfig{Addr: "localhost:6379", DB: -1}, true},
		{"negative timeout", RedisConfig{Addr: "localhost:6379", DialTimeout: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing key is empty", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Save then load", func(t *testing.T) {
		// Arrange
		store, mr := setupTestRedis(t)
		saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		in := []Record{{ID: "a", URL: "https://cdn.example/a.jpg", Breed: "Bengal", SavedAt: saved}}

		// Act
		require.NoError(t, store.Save(ctx, in))
		out, err := store.Load(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.True(t, mr.Exists(defaultRedisKey))
		assert.Equal(t, time.Duration(0), mr.TTL(defaultRedisKey))
	})

	t.Run("Corrupt blob", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		require.NoError(t, mr.Set(defaultRedisKey, "{not json"))
		_, err := store.Load(ctx)
		assert.Error(t, err)
	})
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), RedisConfig{Addr: addr, DialTimeout: 200 * time.Millisecond}, zerolog.Nop())
	assert.Error(t, err)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "favorites.toml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []Record{
		{ID: "a", URL: "https://cdn.example/a.jpg", Breed: "Bengal", SavedAt: saved},
		{ID: "b", URL: "https://cdn.example/b.jpg", SavedAt: saved.Add(time.Minute)},
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Bengal", out[0].Breed)
	assert.True(t, out[1].SavedAt.Equal(in[1].SavedAt))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[favorite]\nid = "), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestBook_ToggleAndReload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store, _ := setupTestRedis(t)
	book := NewBook(store)
	require.NoError(t, book.Load(ctx))

	// Act
	on, err := book.Toggle(ctx, cat("a", "Bengal"))
	require.NoError(t, err)
	_, err = book.Toggle(ctx, cat("b", ""))
	require.NoError(t, err)
	off, err := book.Toggle(ctx, cat("a", "Bengal"))
	require.NoError(t, err)

	reloaded := NewBook(store)
	require.NoError(t, reloaded.Load(ctx))

	// Assert
	assert.True(t, on)
	assert.False(t, off)
	assert.False(t, book.Contains("a"))
	assert.True(t, book.Contains("b"))
	assert.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "b", reloaded.Records()[0].ID)
}

func TestBook_SaveFailureRollsBack(t *testing.T) {
	book := NewBook(failingStore{err: errors.New("disk full")})

	on, err := book.Toggle(context.Background(), cat("a", ""))

	require.Error(t, err)
	assert.False(t, on)
	assert.False(t, book.Contains("a"))
	assert.Equal(t, 0, book.Len())
}

func TestBook_LoadDropsDuplicatesAndSorts(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memoryStore{records: []Record{
		{ID: "late", SavedAt: t0.Add(time.Hour)},
		{ID: "early", SavedAt: t0},
		{ID: "late", SavedAt: t0.Add(2 * time.Hour)},
		{ID: ""},
	}}
	book := NewBook(store)

	require.NoError(t, book.Load(context.Background()))

	records := book.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "early", records[0].ID)
	assert.Equal(t, "late", records[1].ID)
}

type memoryStore struct{ records []Record }

func (m *memoryStore) Load(context.Context) ([]Record, error) {
	return append([]Record(nil), m.records...), nil
}

func (m *memoryStore) Save(_ context.Context, records []Record) error {
	m.records = append([]Record(nil), records...)
	return nil
}

// gatedStore blocks the first Save until release is closed and then fails it.
// Later saves succeed immediately.
type gatedStore struct {
	memoryStore
	mu      sync.Mutex
	saves   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, records []Record) error {
	g.mu.Lock()
	g.saves++
	first := g.saves == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
		<-g.release
		return errors.New("disk full")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memoryStore.Save(ctx, records)
}

func TestBook_FailedSaveKeepsConcurrentToggle(t *testing.T) {
	// Arrange
	store := &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
	book := NewBook(store)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := book.Toggle(ctx, cat("a", ""))
		firstErr <- err
	}()
	<-store.entered

	secondDone := make(chan error, 1)
	go func() {
		_, err := book.Toggle(ctx, cat("b", ""))
		secondDone <- err
	}()

	// Act
	close(store.release)
	require.Error(t, <-firstErr)
	require.NoError(t, <-secondDone)

	// Assert
	assert.False(t, book.Contains("a"))
	assert.True(t, book.Contains("b"))
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.records, 1)
	assert.Equal(t, "b", store.records[0].ID)
}
