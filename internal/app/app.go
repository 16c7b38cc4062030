package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/whisker/internal/cache"
	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/collection"
	"github.com/five82/whisker/internal/config"
	"github.com/five82/whisker/internal/favorites"
	"github.com/five82/whisker/internal/loader"
	"github.com/five82/whisker/internal/logging"
	"github.com/five82/whisker/internal/prefs"
	"github.com/five82/whisker/internal/ui"
)

const (
	favoritesLoadTimeout = 5 * time.Second
	schedulerStopTimeout = 2 * time.Second
)

// Options configure the whisker application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/whisker/prefs.toml
	Limit      int    // page size; zero uses preferences, then config
}

// Run boots the whisker TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logCloser.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("preferences unreadable, using defaults")
	}

	limit := pageSize(opts.Limit, userPrefs.PageSize, cfg.PageSize)
	if limit < 1 || limit > catapi.MaxSearchLimit {
		return fmt.Errorf("page size %d out of range 1..%d", limit, catapi.MaxSearchLimit)
	}

	client, err := catapi.NewClient(catapi.Options{
		BaseURL: cfg.APIBase,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	pictures, err := cache.New(cache.Options[string, catapi.Picture]{
		MaxEntries: cfg.ImageCacheEntries,
		MaxBytes:   cfg.ImageCacheBytes(),
		SizeOf:     func(p catapi.Picture) int64 { return int64(p.Bytes) },
	})
	if err != nil {
		return fmt.Errorf("init image cache: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group := loader.NewGroup[string, catapi.Picture](ctx,
		loader.FetcherFunc[string, catapi.Picture](client.FetchPicture),
		pictures,
		loader.Options[string]{Logger: logger},
	)
	defer group.Close()

	bridge := ui.NewBridge(ctx)

	ctrl := collection.NewController(ctx, client, collection.Options{
		Query: catapi.SearchQuery{BreedID: userPrefs.Breed},
		Limit: limit,
	}, logger)
	defer ctrl.Close()
	unsubscribe := ctrl.Subscribe(bridge.ListObserver())
	defer unsubscribe()

	slots := collection.NewSlots(group, bridge.SlotObserver())
	defer slots.Close()

	book, storeCloser, err := openFavorites(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if storeCloser != nil {
		defer storeCloser.Close()
	}

	scheduler, err := NewScheduler(cfg.RefreshSchedule, ctrl, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), schedulerStopTimeout)
		defer stopCancel()
		scheduler.Stop(stopCtx)
	}()

	if err := ctrl.LoadAll(limit); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	logger.Info().
		Str("api_base", client.BaseURL()).
		Int("page_size", limit).
		Str("breed", userPrefs.Breed).
		Str("favorites", cfg.FavoritesBackend).
		Msg("whisker started")

	return ui.Run(ui.Options{
		Context:    ctx,
		Collection: ctrl,
		Slots:      slots,
		Bridge:     bridge,
		Breeds:     client,
		Favorites:  book,
		Cache:      pictures,
		Loads:      group,
		LogPath:    cfg.LogFile,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger,
	})
}

// openFavorites builds the configured favorites store and loads it. A store
// that cannot be read leaves an empty book; saving will report the problem.
func openFavorites(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*favorites.Book, io.Closer, error) {
	var (
		store  favorites.Store
		closer io.Closer
	)
	switch cfg.FavoritesBackend {
	case config.BackendRedis:
		rs, err := favorites.NewRedisStore(ctx, favorites.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open favorites: %w", err)
		}
		store, closer = rs, rs
	default:
		fs, err := favorites.NewFileStore(cfg.FavoritesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open favorites: %w", err)
		}
		store = fs
	}

	book := favorites.NewBook(store)
	loadCtx, cancel := context.WithTimeout(ctx, favoritesLoadTimeout)
	defer cancel()
	if err := book.Load(loadCtx); err != nil {
		logger.Warn().Err(err).Str("backend", cfg.FavoritesBackend).Msg("favorites unavailable")
	}
	return book, closer, nil
}

// pageSize picks the first positive value.
func pageSize(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
