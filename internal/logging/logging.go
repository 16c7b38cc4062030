// Package logging builds the zerolog logger whisker writes to its log file.
// The terminal belongs to the UI, so nothing is ever written to stdout or
// stderr once the program is running.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log file and minimum level.
type Config struct {
	Level string
	File  string
}

// Validate checks the level name and file path.
func (c Config) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("logging: file is empty")
	}
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	return nil
}

// New opens (or creates) the log file in append mode and returns a logger
// writing JSON lines to it. Close the returned closer on shutdown.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return zerolog.Nop(), nil, err
	}
	level, _ := parseLevel(cfg.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	return NewWriter(file, level), file, nil
}

// NewWriter returns a logger with whisker's field layout writing to w.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", "whisker").
		Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

func parseLevel(name string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(trimmed)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: invalid level %q: %w", name, err)
	}
	return level, nil
}
