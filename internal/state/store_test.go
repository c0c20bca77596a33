package state

import (
	"sync"
	"testing"
	"time"
)

type screen struct {
	Count int
	Items []string
}

func TestStore_ZeroValueSnapshot(t *testing.T) {
	var s Store[screen]
	snap := s.Snapshot()
	if snap.Count != 0 || snap.Items != nil {
		t.Fatalf("zero snapshot = %#v, want empty", snap)
	}
}

func TestStore_UpdatePublishesOnChange(t *testing.T) {
	s := New(screen{Count: 1})
	id, ch := s.Subscribe(2)
	defer s.Unsubscribe(id)

	s.Update(func(v *screen) bool {
		v.Count = 2
		return true
	})

	select {
	case got := <-ch:
		if got.Count != 2 {
			t.Fatalf("published Count = %d, want 2", got.Count)
		}
	case <-time.After(time.Second):
		t.Fatal("no value published")
	}
	if s.Snapshot().Count != 2 {
		t.Fatalf("Snapshot().Count = %d, want 2", s.Snapshot().Count)
	}
}

func TestStore_UpdateWithoutChangeDoesNotPublish(t *testing.T) {
	s := New(screen{})
	id, ch := s.Subscribe(1)
	defer s.Unsubscribe(id)

	s.Update(func(*screen) bool { return false })

	select {
	case got := <-ch:
		t.Fatalf("unexpected publish %#v", got)
	default:
	}
}

func TestStore_SlowSubscriberSeesLatest(t *testing.T) {
	s := New(screen{})
	id, ch := s.Subscribe(1)
	defer s.Unsubscribe(id)

	for i := 1; i <= 10; i++ {
		n := i
		s.Update(func(v *screen) bool {
			v.Count = n
			return true
		})
	}

	got := <-ch
	if got.Count != 10 {
		t.Fatalf("slow subscriber got Count = %d, want 10", got.Count)
	}
	select {
	case extra := <-ch:
		t.Fatalf("channel should hold a single value, got extra %#v", extra)
	default:
	}
}

func TestStore_UnsubscribeClosesChannel(t *testing.T) {
	s := New(screen{})
	id, ch := s.Subscribe(1)
	s.Unsubscribe(id)
	s.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after Unsubscribe")
	}
	s.Update(func(v *screen) bool {
		v.Count++
		return true
	})
}

func TestStore_CloseStopsPublishing(t *testing.T) {
	s := New(screen{})
	_, ch := s.Subscribe(1)
	s.Close()
	s.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after Close")
	}

	s.Update(func(v *screen) bool {
		v.Count = 7
		return true
	})
	if s.Snapshot().Count != 7 {
		t.Fatalf("update after Close should still apply, got %d", s.Snapshot().Count)
	}

	_, late := s.Subscribe(1)
	if _, ok := <-late; ok {
		t.Fatal("subscribe after Close should return a closed channel")
	}
}

func TestStore_SubscriberIDsAreUnique(t *testing.T) {
	var s Store[screen]
	a, _ := s.Subscribe(1)
	b, _ := s.Subscribe(1)
	if a == "" || a == b {
		t.Fatalf("ids = %q, %q, want distinct non-empty", a, b)
	}
}

func TestStore_ConcurrentUpdatesAreAtomic(t *testing.T) {
	s := New(screen{})
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v *screen) bool {
				v.Count++
				v.Items = append(v.Items[:len(v.Items):len(v.Items)], "x")
				return true
			})
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Count != 50 || len(snap.Items) != 50 {
		t.Fatalf("snapshot = count %d items %d, want 50/50", snap.Count, len(snap.Items))
	}
}
