package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/permissions"
	"github.com/five82/roomperms/internal/prefs"
)

// Presenter is the editor contract the UI renders and drives.
type Presenter interface {
	State() editor.State
	Dispatch(ev editor.Event)
	Subscribe(buffer int) (string, <-chan editor.State)
	Unsubscribe(id string)
	Close()
}

// failer is implemented by presenters that can be stopped for good by
// whatever loads them. Err returns the cause once stopped.
type failer interface {
	Err() error
}

// PresenterFactory returns a started presenter for section.
type PresenterFactory func(section permissions.Section) Presenter

// Options configures the UI.
type Options struct {
	Context      context.Context
	Room         string // shown in the header
	Section      permissions.Section
	NewPresenter PresenterFactory
	ThemeName    string
	PrefsPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	room         string
	newPresenter PresenterFactory
	prefsPath    string

	// Editor
	presenter Presenter
	subID     string
	updates   <-chan editor.State
	state     editor.State

	// UI state
	keys     keyMap
	help     help.Model
	theme    Theme
	width    int
	height   int
	ready    bool
	cursor   int
	showHelp bool
	modal    Modal
	stopped  bool

	// pendingSection is where to go once the current presenter allows
	// leaving; nil means leaving quits.
	pendingSection *permissions.Section

	status     string
	statusKind statusKind
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// New creates the model and the presenter for the initial section.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:          ctx,
		room:         opts.Room,
		newPresenter: opts.NewPresenter,
		prefsPath:    prefsPath,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		theme:        GetTheme(themeName),
	}
	m.attach(opts.Section)
	return m
}

// attach replaces the current presenter with a new one for section.
func (m *Model) attach(section permissions.Section) {
	m.detach()
	m.presenter = m.newPresenter(section)
	m.subID, m.updates = m.presenter.Subscribe(1)
	m.state = m.presenter.State()
	m.cursor = 0
	m.pendingSection = nil
	m.modal = nil
	m.stopped = false
}

func (m *Model) detach() {
	if m.presenter == nil {
		return
	}
	m.presenter.Unsubscribe(m.subID)
	m.presenter.Close()
	m.presenter = nil
	m.updates = nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForState(m.subID, m.updates)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case stateMsg:
		if msg.sub != m.subID {
			return m, nil
		}
		next, cmd := m.refresh()
		if next.subID == msg.sub {
			cmd = tea.Batch(cmd, waitForState(next.subID, next.updates))
		}
		return next, cmd

	case closedMsg:
		if msg.sub != m.subID {
			return m, nil
		}
		m.stopped = true
		m.updates = nil
		if f, ok := m.presenter.(failer); ok {
			if err := f.Err(); err != nil {
				m.setStatus("Cannot load permissions: "+err.Error(), statusError)
			}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		// Apply the answer now so the next key sees the settled state.
		if confirm, ok := modal.(confirmModal); ok && confirm.answered {
			return m.answerConfirm(confirm.discard)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.RaiseRole):
		return m.stepRole(true)

	case key.Matches(msg, m.keys.LowerRole):
		return m.stepRole(false)

	case key.Matches(msg, m.keys.NextSection):
		return m.leaveFor(m.state.Section.Next())

	case key.Matches(msg, m.keys.PrevSection):
		return m.leaveFor(m.state.Section.Prev())

	case key.Matches(msg, m.keys.Save):
		if m.state.SaveAction.IsLoading() {
			return m, nil
		}
		m.setStatus("Saving...", statusInfo)
		return m.dispatch(editor.Save{})

	case key.Matches(msg, m.keys.Exit):
		m.pendingSection = nil
		return m.dispatch(editor.Exit{})
	}

	return m, nil
}

// stepRole moves the selected action to the neighbouring role. A custom
// level first snaps to the role below it when lowering.
func (m Model) stepRole(raise bool) (tea.Model, tea.Cmd) {
	if len(m.state.Items) == 0 {
		return m, nil
	}
	item := m.state.Items[m.cursor]
	level, ok := m.state.Level(item)
	if !ok {
		return m, nil
	}

	role := permissions.RoleForLevel(level)
	switch {
	case raise:
		role = role.Next()
	case !permissions.IsCustomLevel(level):
		role = role.Prev()
	}
	return m.dispatch(editor.ChangeMinimumRoleForAction{Key: item, Role: role})
}

// answerConfirm resolves the discard-changes dialog.
func (m Model) answerConfirm(discard bool) (tea.Model, tea.Cmd) {
	if discard {
		return m.dispatch(editor.Exit{})
	}
	m.pendingSection = nil
	return m.dispatch(editor.ResetPendingActions{})
}

// leaveFor asks the presenter to exit so the editor can switch to section.
func (m Model) leaveFor(section permissions.Section) (tea.Model, tea.Cmd) {
	m.pendingSection = &section
	return m.dispatch(editor.Exit{})
}

// dispatch sends ev and applies the resulting state immediately.
func (m Model) dispatch(ev editor.Event) (tea.Model, tea.Cmd) {
	m.presenter.Dispatch(ev)
	return m.refresh()
}

// refresh reads the latest state and consumes terminal actions.
func (m Model) refresh() (Model, tea.Cmd) {
	m.state = m.presenter.State()
	st := m.state

	if m.cursor >= len(st.Items) {
		m.cursor = max(len(st.Items)-1, 0)
	}

	switch {
	case st.ConfirmExitAction.IsSuccess():
		if m.pendingSection == nil {
			return m, tea.Quit
		}
		next := *m.pendingSection
		m.attach(next)
		m.savePrefs()
		m.setStatus("", statusInfo)
		return m, waitForState(m.subID, m.updates)

	case st.ConfirmExitAction.IsConfirming():
		if m.modal == nil {
			diff, err := st.Diff()
			if err != nil {
				log.Warn().Err(err).Msg("render pending changes")
			}
			m.modal = newConfirmModal("Unsaved changes in "+st.Section.Title(), diff)
		}

	case m.modal != nil:
		m.modal = nil
	}

	switch {
	case st.SaveAction.IsSuccess():
		m.setStatus("Saved", statusSuccess)
		m.presenter.Dispatch(editor.ResetPendingActions{})
		m.state = m.presenter.State()
		m.modal = nil
		m.pendingSection = nil
	case st.SaveAction.IsFailure():
		m.setStatus(fmt.Sprintf("Save failed: %v", st.SaveAction.Err()), statusError)
		m.presenter.Dispatch(editor.ResetPendingActions{})
		m.state = m.presenter.State()
		m.modal = nil
		m.pendingSection = nil
	}
	return m, nil
}

func (m *Model) setStatus(text string, kind statusKind) {
	m.status = text
	m.statusKind = kind
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, LastSection: m.state.Section.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Warn().Err(err).Msg("save prefs")
	}
}

// Messages

// stateMsg signals that the presenter subscribed under sub has a new state.
type stateMsg struct {
	sub string
}

// closedMsg signals that the subscription sub ended.
type closedMsg struct {
	sub string
}

// Commands

func waitForState(sub string, updates <-chan editor.State) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return closedMsg{sub: sub}
		}
		return stateMsg{sub: sub}
	}
}

// Run starts the Bubble Tea program and closes the last presenter on exit.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.detach()
	} else {
		m.detach()
	}
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
