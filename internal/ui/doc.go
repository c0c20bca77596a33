// Package ui is the Bubble Tea front end of the permissions editor.
//
// The UI owns no editing logic. It renders editor.State and turns key
// presses into editor events; everything else (dirty tracking, the
// confirm-before-leaving rule, saving) lives in the presenter.
//
// # Files
//
//   - app.go: Model, Update loop, presenter lifecycle and Run
//   - header.go: header with section tabs, the action rows and the footer
//   - modal.go: Modal interface and the discard-changes dialog
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings (bubbles/key)
//   - theme.go: Nightfox and Slate palettes
//
// # Presenter lifecycle
//
// Each section visit gets its own presenter from Options.NewPresenter. The
// model subscribes to it and a tea.Cmd blocks on the subscription, turning
// each change into a stateMsg tagged with the subscription id. Messages
// from a presenter that has since been replaced are dropped.
//
// Leaving a section (tab, shift+tab) or the program (esc, q) dispatches
// editor.Exit. With no pending edits the presenter answers Success at once;
// otherwise it answers Confirming and the model opens a dialog showing the
// diff. y dispatches Exit again, n dispatches ResetPendingActions.
//
// A presenter can also be stopped by whatever loads it, for instance when
// the homeserver rejects the token. Its subscription then closes; the model
// marks itself stopped and, if the presenter has an Err method, shows the
// cause in the footer. q still leaves.
//
// Dialog answers are applied inside the key handler, so the key after y or
// n already sees the resolved state.
//
// Terminal save results are shown in the footer and then cleared with
// ResetPendingActions so the next save starts from Uninitialized.
//
// # Key Bindings
//
//   - up/down, k/j: select action
//   - left/right, h/l: less or more privileged role
//   - tab/shift+tab: next or previous section
//   - s: save
//   - esc, q: leave
//   - T: cycle theme (saved to prefs)
//   - ?: help
//   - ctrl+c: quit immediately, discarding edits
package ui
