// Package state models the lifecycle of a single remote request.
//
// A Machine moves through Idle, Loading, Loaded and Failed:
//
//	Idle ──Begin──▶ Loading ──Resolve──▶ Loaded
//	                   │                   │
//	                   └──Reject──▶ Failed │
//	                                  │    │
//	        Loading ◀──Begin (refresh)┴────┘
//
// Begin keeps the previous value visible while a refresh is in flight and
// Reject keeps it after a failure, so consumers never flash to empty.
// BeginFresh drops it when the consumer moves to a different resource.
// Hit jumps straight to Loaded from any phase for cache hits. Resolve and
// Reject outside Loading return ErrInvalidTransition and publish nothing.
//
// Every transition is delivered to subscribed observers in order. Observers
// run on the caller's goroutine and must not block; the UI hands states to
// its event loop through an unbounded channel.
package state
