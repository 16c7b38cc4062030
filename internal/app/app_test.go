package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/config"
)

func TestPageSize(t *testing.T) {
	assert.Equal(t, 25, pageSize(25, 10, 5))
	assert.Equal(t, 10, pageSize(0, 10, 5))
	assert.Equal(t, 5, pageSize(0, 0, 5))
	assert.Equal(t, 0, pageSize(0, 0, 0))
}

func TestOpenFavorites_File(t *testing.T) {
	cfg := config.Default()
	cfg.FavoritesPath = filepath.Join(t.TempDir(), "favorites.toml")

	book, closer, err := openFavorites(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, 0, book.Len())

	added, err := book.Toggle(context.Background(), catapi.Image{ID: "abc", URL: "https://cdn.test/abc.jpg"})
	require.NoError(t, err)
	assert.True(t, added)

	reopened, _, err := openFavorites(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, reopened.Contains("abc"))
}

func TestOpenFavorites_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.FavoritesBackend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Key = "test:favorites"

	book, closer, err := openFavorites(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	_, err = book.Toggle(context.Background(), catapi.Image{ID: "xyz", URL: "https://cdn.test/xyz.png"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:favorites"))
}

func TestOpenFavorites_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.FavoritesBackend = config.BackendRedis
	cfg.Redis.Addr = addr

	_, _, err := openFavorites(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open favorites")
}
