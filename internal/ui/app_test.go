package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/permissions"
	"github.com/five82/roomperms/internal/prefs"
)

type memRoom struct {
	mu        sync.Mutex
	set       permissions.Set
	updateErr error
	saves     int
	gate      chan struct{}
}

func (r *memRoom) FetchPermissions(context.Context) (*permissions.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.set
	return &set, nil
}

func (r *memRoom) UpdatePermissions(_ context.Context, set permissions.Set) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.updateErr != nil {
		return r.updateErr
	}
	r.set = set
	return nil
}

type harness struct {
	t          *testing.T
	room       *memRoom
	prefsPath  string
	presenters []*editor.Presenter
}

func newHarness(t *testing.T, set permissions.Set) *harness {
	t.Helper()
	h := &harness{
		t:         t,
		room:      &memRoom{set: set},
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	t.Cleanup(func() {
		for _, p := range h.presenters {
			p.Close()
		}
	})
	return h
}

// factory returns presenters that are already loaded.
func (h *harness) factory(section permissions.Section) Presenter {
	p := editor.New(context.Background(), section, h.room, editor.WithLogger(zerolog.Nop()))
	p.Activate()
	require.NoError(h.t, p.AwaitFetch(context.Background()))
	h.presenters = append(h.presenters, p)
	return p
}

func (h *harness) current() *editor.Presenter {
	return h.presenters[len(h.presenters)-1]
}

func (h *harness) model(section permissions.Section) Model {
	m := New(Options{
		Room:         "!room:example.org",
		Section:      section,
		NewPresenter: h.factory,
		PrefsPath:    h.prefsPath,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func baseSet() permissions.Set {
	return permissions.Set{
		Ban:          50,
		Kick:         50,
		RedactEvents: 50,
		RoomName:     50,
		RoomAvatar:   75,
		RoomTopic:    50,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewLoadsInitialSection(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)

	assert.True(t, m.state.Loaded())
	assert.Equal(t, permissions.SectionRoomDetails, m.state.Section)
	assert.Equal(t, permissions.SectionRoomDetails.Items(), m.state.Items)

	view := m.View()
	assert.Contains(t, view, "Change room name")
	assert.Contains(t, view, "Custom (75)")
	assert.Contains(t, view, "!room:example.org")
}

func TestCursorStaysInRange(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionMessagesAndContent)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	for range 5 {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 1, m.cursor)
}

func TestRaiseRoleEditsSelectedAction(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	level, ok := m.state.Level(permissions.KeyRoomName)
	require.True(t, ok)
	assert.Equal(t, 100, level)
	assert.True(t, m.state.HasChanges())
	assert.Contains(t, m.View(), "unsaved")
}

func TestLowerRoleSnapsCustomLevel(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	level, _ := m.state.Level(permissions.KeyRoomAvatar)
	assert.Equal(t, 50, level)

	m, _ = press(t, m, runes("h"))
	level, _ = m.state.Level(permissions.KeyRoomAvatar)
	assert.Equal(t, 0, level)
}

func TestExitWhenCleanQuits(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
}

func TestExitWhenDirtyConfirms(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, cmd := press(t, m, runes("q"))
	assert.False(t, isQuit(cmd))
	require.NotNil(t, m.modal)
	assert.True(t, m.state.ConfirmExitAction.IsConfirming())
	assert.Contains(t, m.View(), "+room_name")

	// n keeps editing.
	m, cmd = press(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Nil(t, m.modal)
	assert.True(t, m.state.ConfirmExitAction.IsUninitialized())
	assert.True(t, m.state.HasChanges())

	// y discards and quits.
	m, _ = press(t, m, runes("q"))
	require.NotNil(t, m.modal)
	_, cmd = press(t, m, runes("y"))
	assert.True(t, isQuit(cmd))
}

func TestDeclineThenExitAsksAgain(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, _ = press(t, m, runes("q"))
	require.NotNil(t, m.modal)

	// No message is delivered between the two keys.
	m, _ = press(t, m, runes("n"))
	m, cmd := press(t, m, runes("q"))

	assert.False(t, isQuit(cmd))
	require.NotNil(t, m.modal)
	assert.True(t, m.state.ConfirmExitAction.IsConfirming())
	assert.True(t, m.state.HasChanges())
}

func TestTabSwitchesSectionWhenClean(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	first := h.current()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, isQuit(cmd))
	require.Len(t, h.presenters, 2)
	assert.Equal(t, permissions.SectionMessagesAndContent, m.state.Section)
	assert.True(t, m.state.Loaded())

	select {
	case <-first.Done():
	default:
		t.Fatal("previous presenter was not closed")
	}

	stored, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, permissions.SectionMessagesAndContent, stored.Section())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, permissions.SectionRoomDetails, m.state.Section)
}

func TestTabWithEditsConfirmsFirst(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, m.modal)
	require.Len(t, h.presenters, 1)

	m, _ = press(t, m, runes("y"))
	require.Len(t, h.presenters, 2)
	assert.Equal(t, permissions.SectionMessagesAndContent, m.state.Section)
	assert.False(t, m.state.HasChanges())
	assert.Equal(t, 0, h.room.saves)
}

func TestSaveReportsSuccessAndResets(t *testing.T) {
	h := newHarness(t, baseSet())
	h.room.gate = make(chan struct{})
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, _ = press(t, m, runes("s"))
	assert.True(t, m.state.SaveAction.IsLoading())
	assert.Contains(t, m.View(), "Saving...")

	// A second save while one is running is not sent.
	m, _ = press(t, m, runes("s"))
	close(h.room.gate)
	h.current().Wait()

	next, _ := m.Update(stateMsg{sub: m.subID})
	m = next.(Model)

	assert.Equal(t, "Saved", m.status)
	assert.Equal(t, statusSuccess, m.statusKind)
	assert.True(t, m.state.SaveAction.IsUninitialized())
	assert.False(t, m.state.HasChanges())
	assert.Equal(t, 100, h.room.set.RoomName)
	assert.Equal(t, 1, h.room.saves)
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	h := newHarness(t, baseSet())
	h.room.updateErr = errors.New("M_FORBIDDEN: not allowed")
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, _ = press(t, m, runes("s"))
	h.current().Wait()
	next, _ := m.Update(stateMsg{sub: m.subID})
	m = next.(Model)

	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "M_FORBIDDEN")
	assert.True(t, m.state.SaveAction.IsUninitialized())
	assert.True(t, m.state.HasChanges())
	assert.Contains(t, m.View(), "Save failed")
}

func TestStaleStateMessagesAreIgnored(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	oldSub := m.subID

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotEqual(t, oldSub, m.subID)

	next, cmd := m.Update(stateMsg{sub: oldSub})
	assert.Nil(t, cmd)
	assert.Equal(t, permissions.SectionMessagesAndContent, next.(Model).state.Section)
}

func TestCycleThemePersists(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	require.Equal(t, "Nightfox", m.theme.Name)

	m, _ = press(t, m, runes("T"))
	assert.Equal(t, "Slate", m.theme.Name)

	stored, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Slate", stored.Theme)
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)

	m, _ = press(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, cmd := press(t, m, runes("s"))
	assert.False(t, m.showHelp)
	assert.Nil(t, cmd)
	assert.True(t, m.state.SaveAction.IsUninitialized())
}

func TestCtrlCQuitsEvenWithEdits(t *testing.T) {
	h := newHarness(t, baseSet())
	m := h.model(permissions.SectionRoomDetails)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}

type stoppingPresenter struct {
	*editor.Presenter
	err error
}

func (p stoppingPresenter) Err() error { return p.err }

func TestStoppedPresenterShowsCause(t *testing.T) {
	room := &memRoom{set: baseSet()}
	var p *editor.Presenter
	m := New(Options{
		Room:    "!room:example.org",
		Section: permissions.SectionRoomDetails,
		NewPresenter: func(section permissions.Section) Presenter {
			p = editor.New(context.Background(), section, room, editor.WithLogger(zerolog.Nop()))
			return stoppingPresenter{Presenter: p, err: errors.New("M_FORBIDDEN: not in room")}
		},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	t.Cleanup(p.Close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	assert.Contains(t, m.View(), "Waiting for the room's power levels")

	p.Close()
	next, cmd := m.Update(m.Init()())
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.stopped)
	assert.Equal(t, statusError, m.statusKind)
	view := m.View()
	assert.Contains(t, view, "Permissions unavailable")
	assert.Contains(t, view, "M_FORBIDDEN")

	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
}
