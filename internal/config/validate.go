package config

import (
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

const (
	maxPageSize = 100
)

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIBase(c.APIBase)
	}
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return ErrInvalidPageSize(c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout(c.RequestTimeout)
	}
	if c.ImageCacheEntries < 1 {
		return ErrInvalidCacheEntries(c.ImageCacheEntries)
	}
	if c.ImageCacheMB < 1 {
		return ErrInvalidCacheSize(c.ImageCacheMB)
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return ErrInvalidSchedule(c.RefreshSchedule, err)
		}
	}
	if !logLevels[c.LogLevel] {
		return ErrInvalidLogLevel(c.LogLevel)
	}
	if strings.TrimSpace(c.LogFile) == "" {
		return ErrEmptyPath("log_file")
	}
	switch c.FavoritesBackend {
	case BackendFile:
		if strings.TrimSpace(c.FavoritesPath) == "" {
			return ErrEmptyPath("favorites_path")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return ErrEmptyRedisAddr()
		}
		if c.Redis.DB < 0 {
			return ErrInvalidRedisDB(c.Redis.DB)
		}
	default:
		return ErrUnknownBackend(c.FavoritesBackend)
	}
	return nil
}
