package permissions

import (
	"fmt"
	"strings"
)

// Key names one editable field of a Set.
type Key int

const (
	KeyBan Key = iota
	KeyInvite
	KeyKick
	KeySendEvents
	KeyRedactEvents
	KeyRoomName
	KeyRoomAvatar
	KeyRoomTopic
)

var keyOrder = []Key{
	KeyBan,
	KeyInvite,
	KeyKick,
	KeySendEvents,
	KeyRedactEvents,
	KeyRoomName,
	KeyRoomAvatar,
	KeyRoomTopic,
}

var keyNames = map[Key]string{
	KeyBan:          "ban",
	KeyInvite:       "invite",
	KeyKick:         "kick",
	KeySendEvents:   "send_events",
	KeyRedactEvents: "redact_events",
	KeyRoomName:     "room_name",
	KeyRoomAvatar:   "room_avatar",
	KeyRoomTopic:    "room_topic",
}

var keyLabels = map[Key]string{
	KeyBan:          "Ban people",
	KeyInvite:       "Invite people",
	KeyKick:         "Remove people",
	KeySendEvents:   "Send messages",
	KeyRedactEvents: "Delete messages",
	KeyRoomName:     "Change room name",
	KeyRoomAvatar:   "Change room avatar",
	KeyRoomTopic:    "Change room topic",
}

// Keys returns every key in display order.
func Keys() []Key {
	out := make([]Key, len(keyOrder))
	copy(out, keyOrder)
	return out
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// Label returns the human readable description of the action.
func (k Key) Label() string {
	if label, ok := keyLabels[k]; ok {
		return label
	}
	return k.String()
}

// Valid reports whether k is one of the known keys.
func (k Key) Valid() bool {
	_, ok := keyNames[k]
	return ok
}

// ParseKey resolves a wire name such as "send_events". Dashes are accepted
// in place of underscores.
func ParseKey(value string) (Key, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	for _, k := range keyOrder {
		if keyNames[k] == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown permission %q", value)
}

// Set holds the required power level for each editable action. It is a
// value type: copy it freely, compare it with ==.
type Set struct {
	Ban          int `json:"ban" yaml:"ban" toml:"ban"`
	Invite       int `json:"invite" yaml:"invite" toml:"invite"`
	Kick         int `json:"kick" yaml:"kick" toml:"kick"`
	SendEvents   int `json:"send_events" yaml:"send_events" toml:"send_events"`
	RedactEvents int `json:"redact_events" yaml:"redact_events" toml:"redact_events"`
	RoomName     int `json:"room_name" yaml:"room_name" toml:"room_name"`
	RoomAvatar   int `json:"room_avatar" yaml:"room_avatar" toml:"room_avatar"`
	RoomTopic    int `json:"room_topic" yaml:"room_topic" toml:"room_topic"`
}

// Level returns the level stored for key, 0 for an unknown key.
func (s Set) Level(key Key) int {
	switch key {
	case KeyBan:
		return s.Ban
	case KeyInvite:
		return s.Invite
	case KeyKick:
		return s.Kick
	case KeySendEvents:
		return s.SendEvents
	case KeyRedactEvents:
		return s.RedactEvents
	case KeyRoomName:
		return s.RoomName
	case KeyRoomAvatar:
		return s.RoomAvatar
	case KeyRoomTopic:
		return s.RoomTopic
	default:
		return 0
	}
}

// With returns a copy of s with the field named by key set to level.
// An unknown key returns s unchanged.
func (s Set) With(key Key, level int) Set {
	switch key {
	case KeyBan:
		s.Ban = level
	case KeyInvite:
		s.Invite = level
	case KeyKick:
		s.Kick = level
	case KeySendEvents:
		s.SendEvents = level
	case KeyRedactEvents:
		s.RedactEvents = level
	case KeyRoomName:
		s.RoomName = level
	case KeyRoomAvatar:
		s.RoomAvatar = level
	case KeyRoomTopic:
		s.RoomTopic = level
	}
	return s
}

// Change describes one key whose level differs between two sets.
type Change struct {
	Key  Key
	From int
	To   int
}

// Changes lists the keys that differ between from and to, in Keys order.
func Changes(from, to Set) []Change {
	var out []Change
	for _, k := range keyOrder {
		a, b := from.Level(k), to.Level(k)
		if a != b {
			out = append(out, Change{Key: k, From: a, To: b})
		}
	}
	return out
}
