package state_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/five82/whisker/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[V any] struct {
	mu     sync.Mutex
	states []state.State[V]
}

func (r *recorder[V]) Observe(s state.State[V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder[V]) phases() []state.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.Phase, len(r.states))
	for i, s := range r.states {
		out[i] = s.Phase
	}
	return out
}

func TestMachine_ZeroValueIsIdle(t *testing.T) {
	var m state.Machine[string]
	cur := m.Current()
	assert.Equal(t, state.Idle, cur.Phase)
	assert.False(t, cur.HasValue)
	assert.Equal(t, "idle", cur.Phase.String())
}

func TestMachine_LoadCycle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		var m state.Machine[string]
		rec := &recorder[string]{}
		m.Subscribe(rec)

		// Act
		m.Begin()
		s, err := m.Resolve("cat")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, state.Loaded, s.Phase)
		assert.Equal(t, "cat", s.Value)
		assert.Equal(t, []state.Phase{state.Loading, state.Loaded}, rec.phases())
		assert.Equal(t, uint64(2), s.Version)
	})

	t.Run("Failure", func(t *testing.T) {
		var m state.Machine[string]
		boom := errors.New("boom")

		m.Begin()
		s, err := m.Reject(boom)

		require.NoError(t, err)
		assert.Equal(t, state.Failed, s.Phase)
		assert.ErrorIs(t, s.Err, boom)
	})
}

func TestMachine_RefreshKeepsValue(t *testing.T) {
	var m state.Machine[[]int]
	_ = m.Hit([]int{1, 2})

	loading := m.Begin()
	assert.Equal(t, state.Loading, loading.Phase)
	assert.True(t, loading.HasValue)
	assert.Equal(t, []int{1, 2}, loading.Value)

	failed, err := m.Reject(errors.New("500"))
	require.NoError(t, err)
	assert.True(t, failed.HasValue)
	assert.Equal(t, []int{1, 2}, failed.Value)

	again := m.Begin()
	assert.Nil(t, again.Err)
	assert.Equal(t, []int{1, 2}, again.Value)
}

func TestMachine_BeginFreshDropsValue(t *testing.T) {
	var m state.Machine[string]
	m.Hit("old")

	s := m.BeginFresh()

	assert.Equal(t, state.Loading, s.Phase)
	assert.False(t, s.HasValue)
	assert.Empty(t, s.Value)
}

func TestMachine_InvalidTransitions(t *testing.T) {
	var m state.Machine[string]
	rec := &recorder[string]{}
	m.Subscribe(rec)

	_, err := m.Resolve("x")
	assert.ErrorIs(t, err, state.ErrInvalidTransition)

	m.Hit("cached")
	_, err = m.Reject(errors.New("late"))
	assert.ErrorIs(t, err, state.ErrInvalidTransition)
	_, err = m.Resolve("late")
	assert.ErrorIs(t, err, state.ErrInvalidTransition)

	assert.Equal(t, []state.Phase{state.Loaded}, rec.phases())
	assert.Equal(t, "cached", m.Current().Value)
}

func TestMachine_HitFromAnyPhase(t *testing.T) {
	var m state.Machine[int]
	m.Begin()
	s := m.Hit(7)
	assert.Equal(t, state.Loaded, s.Phase)
	assert.Equal(t, 7, s.Value)

	m.Begin()
	_, _ = m.Reject(errors.New("x"))
	s = m.Hit(8)
	assert.Equal(t, state.Loaded, s.Phase)
	assert.Nil(t, s.Err)
}

func TestMachine_Unsubscribe(t *testing.T) {
	var m state.Machine[int]
	rec := &recorder[int]{}
	var other []int
	unsubscribe := m.Subscribe(rec)
	m.Subscribe(state.ObserverFunc[int](func(s state.State[int]) { other = append(other, s.Value) }))

	m.Hit(1)
	unsubscribe()
	unsubscribe()
	m.Hit(2)

	assert.Len(t, rec.phases(), 1)
	assert.Equal(t, []int{1, 2}, other)
}

func TestMachine_ObserversSeeOrderedVersions(t *testing.T) {
	var m state.Machine[int]
	rec := &recorder[int]{}
	m.Subscribe(rec)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			m.Hit(v)
		}(i)
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.states, 50)
	for i, s := range rec.states {
		assert.Equal(t, uint64(i+1), s.Version)
	}
}
