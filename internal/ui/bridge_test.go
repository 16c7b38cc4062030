package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/collection"
	"github.com/five82/whisker/internal/state"
)

func TestBridge_ForwardsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBridge(ctx)
	list := b.ListObserver()
	slot := b.SlotObserver()

	// Publish before anyone reads; the sends must not block.
	for v := uint64(1); v <= 100; v++ {
		list.Observe(state.State[[]catapi.Image]{Phase: state.Loading, Version: v})
	}
	slot("cat1", state.State[catapi.Picture]{Phase: state.Loaded})

	got := make(chan tea.Msg, 128)
	go b.pump(func(msg tea.Msg) { got <- msg })

	for want := uint64(1); want <= 100; want++ {
		msg := receive(t, got)
		lc, ok := msg.(listChangedMsg)
		require.True(t, ok, "message %d = %#v", want, msg)
		require.Equal(t, want, lc.version)
	}
	pc, ok := receive(t, got).(pictureChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "cat1", pc.id)
	assert.Equal(t, state.Loaded, pc.phase)
}

func TestBridge_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBridge(ctx)

	done := make(chan struct{})
	go func() {
		b.pump(func(tea.Msg) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "pump did not return after cancel")
	}

	// Sends after shutdown are dropped instead of blocking the publisher.
	b.ListObserver().Observe(state.State[[]catapi.Image]{Phase: state.Loaded})
}

func TestBridge_ControllerNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBridge(ctx)
	ctrl := collection.NewController(ctx, &fakeLister{}, collection.Options{Limit: 2}, zerolog.Nop())
	defer ctrl.Close()
	unsubscribe := ctrl.Subscribe(b.ListObserver())
	defer unsubscribe()

	got := make(chan tea.Msg, 16)
	go b.pump(func(msg tea.Msg) { got <- msg })

	require.NoError(t, ctrl.LoadAll(2))

	var phases []state.Phase
	for len(phases) < 2 {
		lc, ok := receive(t, got).(listChangedMsg)
		require.True(t, ok, "expected list notifications only")
		phases = append(phases, lc.phase)
	}
	assert.Equal(t, []state.Phase{state.Loading, state.Loaded}, phases)
}

func receive(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for a message")
		return nil
	}
}
