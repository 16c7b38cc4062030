package app

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh() error {
	r.calls.Add(1)
	return r.err
}

func TestNewScheduler(t *testing.T) {
	t.Run("empty schedule is disabled", func(t *testing.T) {
		s, err := NewScheduler("  ", &countingRefresher{}, zerolog.Nop())
		require.NoError(t, err)
		assert.False(t, s.Enabled())

		// Start and Stop are no-ops when disabled.
		s.Start()
		s.Stop(context.Background())
	})

	t.Run("invalid schedule is rejected", func(t *testing.T) {
		_, err := NewScheduler("every tuesday", &countingRefresher{}, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schedule refresh")
	})

	t.Run("descriptor schedule is accepted", func(t *testing.T) {
		s, err := NewScheduler("@every 10m", &countingRefresher{}, zerolog.Nop())
		require.NoError(t, err)
		assert.True(t, s.Enabled())
	})
}

func TestScheduler_FiresRefresh(t *testing.T) {
	// Arrange
	target := &countingRefresher{}
	s, err := NewScheduler("@every 1s", target, zerolog.Nop())
	require.NoError(t, err)

	// Act
	s.Start()
	t.Cleanup(func() { s.Stop(context.Background()) })

	// Assert
	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestRefreshJob_LogsFailure(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	target := &countingRefresher{err: errors.New("controller closed")}
	job := refreshJob{target: target, logger: zerolog.New(&buf)}

	// Act
	job.Run()

	// Assert
	assert.Equal(t, int32(1), target.calls.Load())
	assert.Contains(t, buf.String(), "scheduled refresh skipped")
	assert.Contains(t, buf.String(), "controller closed")
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	l := cronLogger{logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	l.Info("wake", "now", "10:00")
	l.Error(errors.New("boom"), "panic", "job", "refresh")

	out := buf.String()
	assert.Contains(t, out, `"message":"wake"`)
	assert.Contains(t, out, `"now":"10:00"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"job":"refresh"`)
}
