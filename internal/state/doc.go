// Package state provides a small thread-safe observable store.
//
// # Overview
//
// Store[S] keeps the latest value of some state type and lets the code that
// owns the transitions publish them to any number of observers. The editor
// presenter keeps its screen state here; the terminal UI and the headless
// commands subscribe to it.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (presenter):          Consumers (UI, CLI):
//	┌────────────────┐            ┌──────────────────┐
//	│ Dispatch(ev)   │            │                  │
//	│      ↓         │            │                  │
//	│ store.Update() │───────────→│ <-ch             │
//	│      ↓         │ (publish)  │ store.Snapshot() │
//	│ async result   │            │      ↓           │
//	│ store.Update() │───────────→│ render           │
//	└────────────────┘            └──────────────────┘
//
// Transitions come from two places: Dispatch on the caller's goroutine and
// fetch or save results on background goroutines. Both go through Update,
// so the store is the single point where they are ordered.
//
// # Core Types
//
// Store[S]:
//   - Holds one value of S, the latest snapshot
//   - Guarded by a sync.RWMutex
//   - Keeps a map of subscriber channels keyed by a ULID
//
// The subscriber id is returned by Subscribe and passed back to
// Unsubscribe. ULIDs sort by creation time, which keeps log lines about
// subscribers in order.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock:
//
//   - Update(): write lock, transition applied and published atomically
//   - Snapshot(): read lock, returns a copy
//   - Subscribe()/Unsubscribe()/Close(): write lock
//
// Observers never see a half-applied transition: the value handed to a
// subscriber is the one produced by a whole Update call. The lock is held
// while fn runs, so fn must not call back into the store.
//
// # Update Semantics
//
// Update hands fn a pointer to the stored value. fn mutates it in place
// and returns whether anything changed:
//
//	store.Update(func(s *Screen) bool {
//		if s.Saving {
//			return false // no change, nothing published
//		}
//		s.Saving = true
//		return true // published to every subscriber
//	})
//
// Returning false must leave the value untouched; the store does not roll
// back partial edits.
//
// # Publishing
//
// Publishing never blocks the writer. A subscriber whose channel is full has
// its oldest pending value dropped in favour of the newest. Intermediate
// states may be skipped this way but the last one always arrives:
//
//	buffer 1, updates A B C, reader idle
//	→ channel holds C
//
// Consumers that need every step (tests asserting Loading before Success)
// should subscribe with a larger buffer or read Snapshot after each
// notification instead of relying on the delivered value.
//
// S should be a value type (or treat any slices and pointers it carries as
// read-only), since Snapshot and publish hand out shallow copies.
//
// # Closing
//
// Close closes every subscriber channel, so a reader ranging over its
// channel ends. Subscribe after Close returns an already closed channel.
// Update after Close still applies fn to the stored value and publishes
// nothing; Snapshot keeps working. Close and Unsubscribe are idempotent.
//
// # Usage Example
//
//	store := state.New(Screen{})
//	id, ch := store.Subscribe(4)
//	defer store.Unsubscribe(id)
//
//	go func() {
//		for latest := range ch {
//			render(latest)
//		}
//	}()
//
//	store.Update(func(s *Screen) bool {
//		s.Saving = true
//		return true
//	})
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	var store state.Store[Screen] // ready to use
//
// For tests:
//   - No initialization required
//   - Snapshot() returns the zero S if never updated
//   - Updates are visible to Snapshot as soon as Update returns
//   - Publishing is synchronous: after Update returns the value is already
//     in every subscriber's channel
package state
