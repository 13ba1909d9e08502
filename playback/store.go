package playback

import (
	"sync"
)

// CanonicalName is the registration name of the canonical store.
const CanonicalName = "store"

// Store is the canonical reactive state holder. It is the only writable
// source the Coordinator ever registers, and it notifies subscribers on every
// applied patch so UI layers can re-render without polling.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []chan State
}

// NewStore creates a canonical store initialized to the default snapshot.
func NewStore() *Store {
	return &Store{state: DefaultState()}
}

// Name implements Source.
func (s *Store) Name() string { return CanonicalName }

// Kind implements Source.
func (s *Store) Kind() Kind { return KindCanonical }

// State reports the full current snapshot as a patch.
func (s *Store) State() Patch {
	return FullPatch(s.Snapshot())
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply overlays a patch onto the store and notifies subscribers.
func (s *Store) Apply(p Patch) {
	s.mu.Lock()
	s.state = p.Apply(s.state)
	snapshot := s.state
	listeners := s.listeners
	s.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snapshot:
		default:
			// Subscriber is lagging; dropping a snapshot is safe since the
			// next notification carries the complete state.
		}
	}
}

// Subscribe registers a listener channel receiving full snapshots on change.
func (s *Store) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 16)
	s.listeners = append(s.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a previously subscribed listener channel.
func (s *Store) Unsubscribe(target <-chan State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ch := range s.listeners {
		if ch == target {
			close(ch)
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}
