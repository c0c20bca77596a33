// Package permissions defines the editable permission set of a room.
//
// A Set holds one required power level per Key. Keys are grouped into
// Sections, each backing one editing screen:
//
//	Room details            room_name, room_avatar, room_topic
//	Messages and content    send_events, redact_events
//	Member moderation       invite, kick, ban
//
// The grouping is static configuration. Roles (Admin 100, Moderator 50,
// User 0) are the choices offered by the editor; arbitrary integer levels
// are still representable and render as "Custom (n)".
//
// Sets are plain values. With returns a modified copy, so a baseline held
// by one component can never be changed through another's edit, and two
// sets compare structurally with ==.
package permissions
