package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher re-issues the current collection query.
type Refresher interface {
	Refresh() error
}

// Scheduler triggers collection refreshes on a cron schedule. An empty
// schedule yields a Scheduler that never fires.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
	spec   string
	entry  cron.EntryID
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@every 10m") and registers a refresh of target.
func NewScheduler(spec string, target Refresher, logger zerolog.Logger) (*Scheduler, error) {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		spec:   strings.TrimSpace(spec),
	}
	if s.spec == "" {
		return s, nil
	}

	id, err := s.cron.AddJob(s.spec, refreshJob{target: target, logger: logger})
	if err != nil {
		return nil, fmt.Errorf("schedule refresh %q: %w", s.spec, err)
	}
	s.entry = id
	return s, nil
}

// Enabled reports whether a refresh job is registered.
func (s *Scheduler) Enabled() bool {
	return s.entry != 0
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	if !s.Enabled() {
		return
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.spec).Time("next", s.cron.Entry(s.entry).Next).Msg("refresh scheduler started")
}

// Stop halts the scheduler and waits for a running refresh call to return,
// or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Err(ctx.Err()).Msg("scheduler stop abandoned")
	}
}

type refreshJob struct {
	target Refresher
	logger zerolog.Logger
}

func (j refreshJob) Run() {
	if err := j.target.Refresh(); err != nil {
		j.logger.Warn().Err(err).Msg("scheduled refresh skipped")
		return
	}
	j.logger.Debug().Msg("scheduled refresh issued")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
