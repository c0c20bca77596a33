package state

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Store holds the latest value of S and fans changes out to subscribers.
// The zero value is ready to use.
type Store[S any] struct {
	mu          sync.RWMutex
	snapshot    S
	subscribers map[string]chan S
	closed      bool
}

// New returns a store seeded with initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{snapshot: initial}
}

// Snapshot returns a copy of the current value.
func (s *Store[S]) Snapshot() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Update applies fn to the stored value under the write lock. When fn
// reports a change the new value is published to every subscriber.
func (s *Store[S]) Update(fn func(*S) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.snapshot) || s.closed {
		return
	}
	for _, ch := range s.subscribers {
		publish(ch, s.snapshot)
	}
}

// Subscribe registers a subscriber and returns its id and channel. The
// channel holds at most buffer values (minimum one); when full the oldest
// pending value is replaced, so a slow reader always ends on the latest.
func (s *Store[S]) Subscribe(buffer int) (string, <-chan S) {
	if buffer < 1 {
		buffer = 1
	}
	id := ulid.Make().String()
	ch := make(chan S, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return id, ch
	}
	if s.subscribers == nil {
		s.subscribers = make(map[string]chan S)
	}
	s.subscribers[id] = ch
	return id, ch
}

// Unsubscribe closes and forgets the subscriber. Unknown ids are ignored.
func (s *Store[S]) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Close closes every subscriber channel. Later updates still change the
// stored value but publish nothing.
func (s *Store[S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// publish never blocks. Callers hold the write lock, so nothing else sends
// on ch between the drain and the retry.
func publish[S any](ch chan S, value S) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}
