package editor

import (
	"github.com/five82/roomperms/internal/asyncaction"
	"github.com/five82/roomperms/internal/permissions"
)

// State is what the rendering layer sees. Pointer and slice fields are
// shared between snapshots and must be treated as read-only.
type State struct {
	Section permissions.Section
	Items   []permissions.Key

	// CurrentPermissions is the edited copy, nil until the first load.
	CurrentPermissions *permissions.Set
	// BaselinePermissions is the last fetched or saved copy.
	BaselinePermissions *permissions.Set

	SaveAction        asyncaction.Action[asyncaction.Unit]
	ConfirmExitAction asyncaction.Action[asyncaction.Unit]
}

// Loaded reports whether a snapshot has been fetched.
func (s State) Loaded() bool {
	return s.CurrentPermissions != nil
}

// HasChanges reports whether the edited copy differs from the baseline.
func (s State) HasChanges() bool {
	if s.CurrentPermissions == nil || s.BaselinePermissions == nil {
		return s.CurrentPermissions != s.BaselinePermissions
	}
	return *s.CurrentPermissions != *s.BaselinePermissions
}

// Changes lists the edited keys of this section's screen, across all keys.
func (s State) Changes() []permissions.Change {
	if !s.Loaded() || s.BaselinePermissions == nil {
		return nil
	}
	return permissions.Changes(*s.BaselinePermissions, *s.CurrentPermissions)
}

// Diff renders the pending edits as a unified diff, empty when clean.
func (s State) Diff() (string, error) {
	if !s.HasChanges() || !s.Loaded() || s.BaselinePermissions == nil {
		return "", nil
	}
	return permissions.UnifiedDiff(*s.BaselinePermissions, *s.CurrentPermissions)
}

// Level returns the edited level for key and whether a snapshot is loaded.
func (s State) Level(key permissions.Key) (int, bool) {
	if s.CurrentPermissions == nil {
		return 0, false
	}
	return s.CurrentPermissions.Level(key), true
}
