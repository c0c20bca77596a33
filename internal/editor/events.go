package editor

import "github.com/five82/roomperms/internal/permissions"

// Event is one user intent handed to Presenter.Dispatch.
type Event interface {
	isEvent()
}

// ChangeMinimumRoleForAction sets the level required for Key to the level
// of Role.
type ChangeMinimumRoleForAction struct {
	Key  permissions.Key
	Role permissions.Role
}

// ChangeLevelForAction sets an arbitrary required level for Key.
type ChangeLevelForAction struct {
	Key   permissions.Key
	Level int
}

// Save persists the edited permissions.
type Save struct{}

// Exit asks to leave the screen, confirming first when edits would be lost.
type Exit struct{}

// ResetPendingActions clears the save and exit actions after the UI has
// acted on them.
type ResetPendingActions struct{}

func (ChangeMinimumRoleForAction) isEvent() {}
func (ChangeLevelForAction) isEvent()       {}
func (Save) isEvent()                       {}
func (Exit) isEvent()                       {}
func (ResetPendingActions) isEvent()        {}
