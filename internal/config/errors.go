package config

import (
	"fmt"
	"time"
)

// ErrInvalidAPIBase returns an error for a malformed api_base
func ErrInvalidAPIBase(base string) error {
	return fmt.Errorf("config: invalid api_base: %q (must be an absolute http(s) url)", base)
}

// ErrInvalidPageSize returns an error for an out of range page_size
func ErrInvalidPageSize(size int) error {
	return fmt.Errorf("config: invalid page_size: %d (must be 1..%d)", size, maxPageSize)
}

// ErrInvalidRequestTimeout returns an error for a non-positive request_timeout
func ErrInvalidRequestTimeout(d time.Duration) error {
	return fmt.Errorf("config: invalid request_timeout: %v (must be > 0)", d)
}

// ErrInvalidCacheEntries returns an error for a non-positive image_cache_entries
func ErrInvalidCacheEntries(n int) error {
	return fmt.Errorf("config: invalid image_cache_entries: %d (must be >= 1)", n)
}

// ErrInvalidCacheSize returns an error for a non-positive image_cache_mb
func ErrInvalidCacheSize(mb int) error {
	return fmt.Errorf("config: invalid image_cache_mb: %d (must be >= 1)", mb)
}

// ErrInvalidSchedule wraps a cron parse failure for refresh_schedule
func ErrInvalidSchedule(spec string, err error) error {
	return fmt.Errorf("config: invalid refresh_schedule %q: %w", spec, err)
}

// ErrInvalidLogLevel returns an error for an unknown log_level
func ErrInvalidLogLevel(level string) error {
	return fmt.Errorf("config: invalid log_level: %q (trace, debug, info, warn, error, disabled)", level)
}

// ErrEmptyPath returns an error for a required path left empty
func ErrEmptyPath(key string) error {
	return fmt.Errorf("config: %s is empty", key)
}

// ErrUnknownBackend returns an error for an unsupported favorites_backend
func ErrUnknownBackend(name string) error {
	return fmt.Errorf("config: unknown favorites_backend: %q (file or redis)", name)
}

// ErrEmptyRedisAddr returns an error when the redis backend has no address
func ErrEmptyRedisAddr() error {
	return fmt.Errorf("config: redis_addr is empty")
}

// ErrInvalidRedisDB returns an error for a negative redis_db
func ErrInvalidRedisDB(db int) error {
	return fmt.Errorf("config: invalid redis_db: %d (must be >= 0)", db)
}
