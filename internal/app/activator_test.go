package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/matrix"
	"github.com/five82/roomperms/internal/permissions"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type flakyRoom struct {
	mu       sync.Mutex
	failures int
	calls    int
	err      error
}

func (r *flakyRoom) FetchPermissions(context.Context) (*permissions.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		if r.err != nil {
			return nil, r.err
		}
		return nil, errors.New("homeserver unreachable")
	}
	return &permissions.Set{Ban: 50, Kick: 50, RedactEvents: 50}, nil
}

func (r *flakyRoom) UpdatePermissions(context.Context, permissions.Set) error { return nil }

func (r *flakyRoom) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestStartActivator_RetriesUntilLoaded(t *testing.T) {
	room := &flakyRoom{failures: 2}
	p := editor.New(context.Background(), permissions.SectionRoomDetails, room, editor.WithLogger(zerolog.Nop()))
	t.Cleanup(p.Close)

	id, updates := p.Subscribe(1)
	defer p.Unsubscribe(id)

	StartActivator(context.Background(), p, time.Millisecond, nil)

	select {
	case st := <-updates:
		if !st.Loaded() {
			t.Fatalf("first published state not loaded: %#v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("activator never loaded the snapshot")
	}
	if got := room.callCount(); got != 3 {
		t.Fatalf("fetch calls = %d, want 3", got)
	}
}

func TestStartActivator_StopsWhenPresenterCloses(t *testing.T) {
	room := &flakyRoom{failures: 1 << 30}
	p := editor.New(context.Background(), permissions.SectionRoomDetails, room, editor.WithLogger(zerolog.Nop()))

	StartActivator(context.Background(), p, 5*time.Millisecond, nil)
	time.Sleep(20 * time.Millisecond)
	p.Close()
	time.Sleep(20 * time.Millisecond)

	before := room.callCount()
	time.Sleep(50 * time.Millisecond)
	if after := room.callCount(); after != before {
		t.Fatalf("activator kept fetching after Close: %d -> %d", before, after)
	}
}

func TestStartActivator_GivesUpOnPermanentError(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
	}{
		{"forbidden", matrix.ErrCodeForbidden, http.StatusForbidden},
		{"unknown token", matrix.ErrCodeUnknownToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"errcode":"`+tt.code+`","error":"denied"}`)
			}))
			t.Cleanup(server.Close)

			client, err := matrix.NewClient(matrix.Options{HomeserverURL: server.URL, AccessToken: "secret"})
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			p := newPresenter(context.Background(), permissions.SectionRoomDetails, matrix.NewRoom(client, "!abc:example.org"), time.Second)
			t.Cleanup(p.Close)

			select {
			case <-p.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("activator kept retrying a permanent error")
			}
			if got := requests.Load(); got != 1 {
				t.Fatalf("requests = %d, want 1", got)
			}
			if err := p.Err(); !matrix.IsMatrixError(err, tt.code) {
				t.Fatalf("Err() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStartActivator_RetriesTransientMatrixError(t *testing.T) {
	room := &flakyRoom{failures: 1, err: &matrix.MatrixError{Code: matrix.ErrCodeNotFound, StatusCode: 404}}
	fetches := &fetchRecorder{Room: room}
	p := editor.New(context.Background(), permissions.SectionRoomDetails, fetches, editor.WithLogger(zerolog.Nop()))
	t.Cleanup(p.Close)

	id, updates := p.Subscribe(1)
	defer p.Unsubscribe(id)

	StartActivator(context.Background(), p, time.Millisecond, fetches.lastErr)

	select {
	case st := <-updates:
		if !st.Loaded() {
			t.Fatalf("first published state not loaded: %#v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("activator stopped on a retryable error")
	}
	if got := room.callCount(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2", got)
	}
}
