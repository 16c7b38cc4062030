package state

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Phase is the coarse position of a request in its lifecycle.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ErrInvalidTransition is returned when a transition is not allowed from the current phase.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is one published lifecycle value. Value stays populated while a
// refresh is Loading or after it Failed, so consumers can keep showing it.
type State[V any] struct {
	Phase    Phase
	Value    V
	HasValue bool
	Err      error
	Version  uint64
	Changed  time.Time
}

// Ready reports whether the state carries a value from a completed load.
func (s State[V]) Ready() bool {
	return s.Phase == Loaded
}

// Observer receives every published State in order. Implementations must
// return quickly and must not call transitions on the publishing Machine.
type Observer[V any] interface {
	Observe(State[V])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[V any] func(State[V])

func (f ObserverFunc[V]) Observe(s State[V]) { f(s) }

// Machine holds the lifecycle of one consumer and publishes every change.
// The zero value is an Idle machine ready to use.
type Machine[V any] struct {
	publishMu sync.Mutex // serializes transitions so observers see them in order

	mu        sync.Mutex
	cur       State[V]
	observers []subscription[V]
	nextID    int
}

type subscription[V any] struct {
	id       int
	observer Observer[V]
}

// Current returns the latest published state.
func (m *Machine[V]) Current() State[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Subscribe registers o and returns a function that removes it.
func (m *Machine[V]) Subscribe(o Observer[V]) (unsubscribe func()) {
	if o == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, subscription[V]{id: id, observer: o})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, sub := range m.observers {
				if sub.id == id {
					m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Begin enters Loading and keeps any previous value visible. It is valid
// from every phase; from Loading it starts a new cycle.
func (m *Machine[V]) Begin() State[V] {
	s, _ := m.transition(func(cur State[V]) (State[V], error) {
		cur.Phase = Loading
		cur.Err = nil
		return cur, nil
	})
	return s
}

// BeginFresh enters Loading and drops the previous value, used when the
// consumer switches to a different resource.
func (m *Machine[V]) BeginFresh() State[V] {
	s, _ := m.transition(func(State[V]) (State[V], error) {
		return State[V]{Phase: Loading}, nil
	})
	return s
}

// Resolve moves Loading to Loaded with v.
func (m *Machine[V]) Resolve(v V) (State[V], error) {
	return m.transition(func(cur State[V]) (State[V], error) {
		if cur.Phase != Loading {
			return cur, fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, cur.Phase)
		}
		return State[V]{Phase: Loaded, Value: v, HasValue: true}, nil
	})
}

// Reject moves Loading to Failed with err, keeping any previous value.
func (m *Machine[V]) Reject(err error) (State[V], error) {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return m.transition(func(cur State[V]) (State[V], error) {
		if cur.Phase != Loading {
			return cur, fmt.Errorf("%w: reject from %s", ErrInvalidTransition, cur.Phase)
		}
		cur.Phase = Failed
		cur.Err = err
		return cur, nil
	})
}

// Hit publishes Loaded(v) from any phase; it is the cache short-circuit.
func (m *Machine[V]) Hit(v V) State[V] {
	s, _ := m.transition(func(State[V]) (State[V], error) {
		return State[V]{Phase: Loaded, Value: v, HasValue: true}, nil
	})
	return s
}

// Reset returns to Idle and drops the value.
func (m *Machine[V]) Reset() State[V] {
	s, _ := m.transition(func(State[V]) (State[V], error) {
		return State[V]{Phase: Idle}, nil
	})
	return s
}

func (m *Machine[V]) transition(next func(State[V]) (State[V], error)) (State[V], error) {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.mu.Lock()
	s, err := next(m.cur)
	if err != nil {
		cur := m.cur
		m.mu.Unlock()
		return cur, err
	}
	s.Version = m.cur.Version + 1
	s.Changed = time.Now()
	m.cur = s
	observers := make([]Observer[V], len(m.observers))
	for i, sub := range m.observers {
		observers[i] = sub.observer
	}
	m.mu.Unlock()

	for _, o := range observers {
		o.Observe(s)
	}
	return s, nil
}
