package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the connection settings for RedisStore.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Key         string
	DialTimeout time.Duration
}

const defaultRedisKey = "whisker:favorites"

// Validate checks the configuration.
func (c RedisConfig) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("favorites: redis addr is empty")
	}
	if c.DB < 0 {
		return fmt.Errorf("favorites: invalid redis db: %d (must be >= 0)", c.DB)
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("favorites: invalid dial timeout: %v (must be >= 0)", c.DialTimeout)
	}
	return nil
}

// RedisStore keeps favorites as a JSON blob under one Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dial := cfg.DialTimeout
	if dial == 0 {
		dial = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = defaultRedisKey
	}
	log := logger.With().Str("component", "favorites").Str("redis_key", key).Logger()
	log.Info().Str("redis_address", cfg.Addr).Msg("connected to redis")
	return &RedisStore{client: rdb, key: key, logger: log}, nil
}

// Load reads the blob. A missing key is an empty list.
func (s *RedisStore) Load(ctx context.Context) ([]Record, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return records, nil
}

// Save overwrites the blob. Favorites never expire.
func (s *RedisStore) Save(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	s.logger.Debug().Int("count", len(records)).Msg("favorites saved")
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
