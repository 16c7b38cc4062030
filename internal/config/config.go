package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved whisker configuration.
type Config struct {
	APIBase           string
	APIKey            string
	PageSize          int
	RequestTimeout    time.Duration
	ImageCacheEntries int
	ImageCacheMB      int
	RefreshSchedule   string
	LogFile           string
	LogLevel          string
	FavoritesBackend  string
	FavoritesPath     string
	Redis             Redis
}

// Redis holds the favorites Redis backend settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

const (
	defaultConfigPath        = "~/.config/whisker/config.toml"
	defaultAPIBase           = "https://api.thecatapi.com/v1"
	defaultPageSize          = 10
	defaultRequestTimeout    = 15 * time.Second
	defaultImageCacheEntries = 64
	defaultImageCacheMB      = 64
	defaultLogFile           = "~/.local/state/whisker/whisker.log"
	defaultLogLevel          = "info"
	defaultFavoritesPath     = "~/.local/share/whisker/favorites.toml"
	defaultRedisAddr         = "127.0.0.1:6379"
	defaultRedisKey          = "whisker:favorites"

	// APIKeyEnv overrides an empty api_key.
	APIKeyEnv = "WHISKER_API_KEY"

	BackendFile  = "file"
	BackendRedis = "redis"
)

type rawConfig struct {
	APIBase           string `toml:"api_base"`
	APIKey            string `toml:"api_key"`
	PageSize          int    `toml:"page_size"`
	RequestTimeout    string `toml:"request_timeout"`
	ImageCacheEntries int    `toml:"image_cache_entries"`
	ImageCacheMB      int    `toml:"image_cache_mb"`
	RefreshSchedule   string `toml:"refresh_schedule"`
	LogFile           string `toml:"log_file"`
	LogLevel          string `toml:"log_level"`
	FavoritesBackend  string `toml:"favorites_backend"`
	FavoritesPath     string `toml:"favorites_path"`
	RedisAddr         string `toml:"redis_addr"`
	RedisPassword     string `toml:"redis_password"`
	RedisDB           int    `toml:"redis_db"`
	RedisKey          string `toml:"redis_key"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:           defaultAPIBase,
		APIKey:            strings.TrimSpace(os.Getenv(APIKeyEnv)),
		PageSize:          defaultPageSize,
		RequestTimeout:    defaultRequestTimeout,
		ImageCacheEntries: defaultImageCacheEntries,
		ImageCacheMB:      defaultImageCacheMB,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
		FavoritesBackend:  BackendFile,
		FavoritesPath:     mustExpand(defaultFavoritesPath),
		Redis:             Redis{Addr: defaultRedisAddr, Key: defaultRedisKey},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config at path, falling back to defaults when the file is
// missing or a value is empty. The result is validated.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.APIKey); v != "" {
		cfg.APIKey = v
	}
	if raw.PageSize != 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if raw.ImageCacheEntries != 0 {
		cfg.ImageCacheEntries = raw.ImageCacheEntries
	}
	if raw.ImageCacheMB != 0 {
		cfg.ImageCacheMB = raw.ImageCacheMB
	}
	cfg.RefreshSchedule = strings.TrimSpace(raw.RefreshSchedule)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.FavoritesBackend); v != "" {
		cfg.FavoritesBackend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.FavoritesPath); v != "" {
		cfg.FavoritesPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.RedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = raw.RedisPassword
	cfg.Redis.DB = raw.RedisDB
	if v := strings.TrimSpace(raw.RedisKey); v != "" {
		cfg.Redis.Key = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ImageCacheBytes returns the byte bound of the picture cache.
func (c Config) ImageCacheBytes() int64 {
	return int64(c.ImageCacheMB) << 20
}

// LogDir returns the directory holding the log file.
func (c Config) LogDir() string {
	return filepath.Dir(c.LogFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
