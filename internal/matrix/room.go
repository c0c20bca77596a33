package matrix

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/permissions"
)

// Room edits the permissions of one room through an API.
type Room struct {
	api    API
	roomID string
}

// Ensure Room implements editor.Room at compile time.
var _ editor.Room = (*Room)(nil)

// NewRoom binds api to roomID.
func NewRoom(api API, roomID string) *Room {
	return &Room{api: api, roomID: roomID}
}

// OpenRoom resolves ref, which may be a room id (!id:server) or an alias
// (#alias:server), and returns the bound Room.
func OpenRoom(ctx context.Context, api API, ref string) (*Room, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "!"):
		return NewRoom(api, ref), nil
	case strings.HasPrefix(ref, "#"):
		roomID, err := api.ResolveAlias(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolve alias %s: %w", ref, err)
		}
		return NewRoom(api, roomID), nil
	default:
		return nil, fmt.Errorf("room %q must be a room id (!) or alias (#)", ref)
	}
}

// ID returns the room id.
func (r *Room) ID() string {
	return r.roomID
}

// FetchPermissions reads the editable levels from the room's power levels.
func (r *Room) FetchPermissions(ctx context.Context) (*permissions.Set, error) {
	content, err := r.api.PowerLevels(ctx, r.roomID)
	if err != nil {
		return nil, fmt.Errorf("read power levels for %s: %w", r.roomID, err)
	}
	set := content.Permissions()
	return &set, nil
}

// UpdatePermissions writes set into the room's power levels. The latest
// content is read first so fields outside set (users, notifications,
// other event levels) are preserved.
func (r *Room) UpdatePermissions(ctx context.Context, set permissions.Set) error {
	content, err := r.api.PowerLevels(ctx, r.roomID)
	if err != nil {
		return fmt.Errorf("read power levels for %s: %w", r.roomID, err)
	}
	if _, err := r.api.SetPowerLevels(ctx, r.roomID, content.WithPermissions(set)); err != nil {
		return fmt.Errorf("write power levels for %s: %w", r.roomID, err)
	}
	return nil
}
