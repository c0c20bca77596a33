// Package editor implements the presenter behind the permission editing
// screen.
//
// # Overview
//
// A Presenter is created per section each time the screen is shown. It holds
// two copies of the room's permissions: the baseline (last fetched or saved)
// and the edited copy. HasChanges is always computed from the two, never
// stored.
//
// # Architecture
//
//	┌──────────────┐  Dispatch(ev)  ┌───────────────┐  Fetch/Update  ┌──────┐
//	│ UI / CLI     │───────────────→│ Presenter     │───────────────→│ Room │
//	│              │←───────────────│ state.Store   │←───────────────│      │
//	└──────────────┘ Subscribe/State└───────────────┘  (goroutines)  └──────┘
//
// The rendering layer reads State and sends user intents through Dispatch:
//
//	ChangeMinimumRoleForAction  edit one key to a role's level
//	ChangeLevelForAction        edit one key to an arbitrary level
//	Save                        persist the edited copy
//	Exit                        leave, confirming first if dirty
//	ResetPendingActions         clear consumed save/exit results
//
// Room is the only dependency. matrix.Room implements it against a
// homeserver; tests use in-memory fakes.
//
// # Core Types
//
// State:
//   - Section and Items: the section shown and its keys, fixed for the
//     presenter's lifetime
//   - CurrentPermissions: the edited copy, nil until the first load
//   - BaselinePermissions: the last fetched or saved copy
//   - SaveAction, ConfirmExitAction: asyncaction.Action[Unit] results the
//     UI reacts to and then clears with ResetPendingActions
//
// Derived, never stored:
//   - Loaded(): CurrentPermissions != nil
//   - HasChanges(): the two copies differ
//   - Changes()/Diff(): the differing keys, as a list or a unified diff
//
// # Lifecycle
//
//	New       → state seeded with Section and Items, nothing loaded
//	Activate  → fetch starts on a goroutine
//	            data:    baseline = current = fetched
//	            no data: state unchanged, Activate may be called again
//	Dispatch  → transitions below
//	Close     → calls cancelled, subscriptions closed, late results dropped
//
// Activate does nothing once loaded or while a fetch runs. AwaitFetch
// blocks until the running fetch has applied its result; callers that
// retry (the activation loop in package app) use it to decide when to try
// again.
//
// # Edit Semantics
//
// Both change events replace exactly one field of the edited copy. They
// are ignored before the first load, for keys outside the permission set,
// and when the level is already the requested one (no state is published).
//
// # Exit Protocol
//
//	clean, or already Confirming  → ConfirmExitAction = Success
//	dirty and not Confirming      → ConfirmExitAction = Confirming
//
// A second Exit while Confirming is the user's confirmation. Declining is
// ResetPendingActions, which returns ConfirmExitAction to Uninitialized
// and keeps the edits.
//
// # Save Protocol
//
//	nothing loaded  → SaveAction = Failure(ErrIllegalState)
//	otherwise       → SaveAction = Loading, Room.UpdatePermissions runs
//	                  success: baseline = saved copy, SaveAction = Success
//	                  failure: edits kept, SaveAction = Failure(err)
//
// A Save while one is Loading is ignored. The baseline after success is the
// copy that was sent, so an edit made while the save was in flight is still
// reported by HasChanges afterwards. A panic inside the Room becomes a
// Failure. Each save is logged with its own ULID as save_id.
//
// # Concurrency
//
// Fetch and save run on goroutines tracked by a conc.WaitGroup; their
// results re-enter through the state store, so observers see whole
// transitions only. Close cancels the calls and drops their results. Wait
// blocks until every launched task has finished, which tests use to reach
// a settled state.
//
// WithCallTimeout bounds each Room call; the activation loop and the
// headless commands pass the configured request timeout.
//
// # Usage Example
//
//	p := editor.New(ctx, permissions.SectionRoomDetails, room,
//		editor.WithCallTimeout(10*time.Second))
//	defer p.Close()
//
//	p.Activate()
//	if err := p.AwaitFetch(ctx); err != nil {
//		return err
//	}
//	p.Dispatch(editor.ChangeMinimumRoleForAction{
//		Key:  permissions.KeyRoomName,
//		Role: permissions.RoleModerator,
//	})
//
//	id, updates := p.Subscribe(1)
//	defer p.Unsubscribe(id)
//	p.Dispatch(editor.Save{})
//	for st := p.State(); !st.SaveAction.IsTerminal(); st = p.State() {
//		<-updates
//	}
//
// # Logging
//
// The presenter logs through zerolog with component=editor and the section
// name. WithLogger replaces the global logger; tests pass zerolog.Nop().
package editor
