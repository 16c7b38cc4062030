package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/smallnest/chanx"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/collection"
	"github.com/five82/whisker/internal/state"
)

// bridgeBuffer is the initial capacity of the notification channel.
const bridgeBuffer = 64

// Bridge carries pipeline notifications into the program loop. Observers
// run while the controller and loaders hold their locks, so a send must
// never wait on the UI; the unbounded channel absorbs bursts.
type Bridge struct {
	ctx context.Context
	ch  *chanx.UnboundedChan[tea.Msg]
}

// NewBridge creates a bridge that lives until ctx ends.
func NewBridge(ctx context.Context) *Bridge {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Bridge{ctx: ctx, ch: chanx.NewUnboundedChan[tea.Msg](ctx, bridgeBuffer)}
}

// ListObserver returns the observer to register on the collection controller.
func (b *Bridge) ListObserver() state.Observer[[]catapi.Image] {
	return state.ObserverFunc[[]catapi.Image](func(s state.State[[]catapi.Image]) {
		b.send(listChangedMsg{phase: s.Phase, version: s.Version})
	})
}

// SlotObserver returns the observer to pass to collection.NewSlots.
func (b *Bridge) SlotObserver() collection.SlotObserver {
	return func(id string, s state.State[catapi.Picture]) {
		b.send(pictureChangedMsg{id: id, phase: s.Phase})
	}
}

// Pending returns the number of undelivered notifications.
func (b *Bridge) Pending() int {
	return b.ch.Len()
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch.In <- msg:
	case <-b.ctx.Done():
	}
}

// pump forwards notifications to send until the bridge context ends.
func (b *Bridge) pump(send func(tea.Msg)) {
	for {
		select {
		case msg, ok := <-b.ch.Out:
			if !ok {
				return
			}
			send(msg)
		case <-b.ctx.Done():
			return
		}
	}
}

type listChangedMsg struct {
	phase   state.Phase
	version uint64
}

type pictureChangedMsg struct {
	id    string
	phase state.Phase
}
