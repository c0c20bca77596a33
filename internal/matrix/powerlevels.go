package matrix

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/five82/roomperms/internal/permissions"
)

// Event types whose levels live in the events map.
const (
	EventTypePowerLevels = "m.room.power_levels"
	EventTypeRoomName    = "m.room.name"
	EventTypeRoomAvatar  = "m.room.avatar"
	EventTypeRoomTopic   = "m.room.topic"
)

// Defaults applied by homeservers when a field is absent.
const (
	defaultBan           = 50
	defaultKick          = 50
	defaultRedact        = 50
	defaultInvite        = 0
	defaultEventsDefault = 0
	defaultStateDefault  = 50
)

// PowerLevels is the content of an m.room.power_levels state event. Nil
// pointers mean the field is absent and the server default applies.
// Top-level keys this type does not model survive a decode/encode round
// trip untouched.
type PowerLevels struct {
	Users         map[string]int `json:"users,omitempty"`
	UsersDefault  *int           `json:"users_default,omitempty"`
	Events        map[string]int `json:"events,omitempty"`
	EventsDefault *int           `json:"events_default,omitempty"`
	StateDefault  *int           `json:"state_default,omitempty"`
	Invite        *int           `json:"invite,omitempty"`
	Ban           *int           `json:"ban,omitempty"`
	Kick          *int           `json:"kick,omitempty"`
	Redact        *int           `json:"redact,omitempty"`
	Notifications map[string]int `json:"notifications,omitempty"`

	extra map[string]json.RawMessage
}

type powerLevelsFields PowerLevels

var knownFields = map[string]struct{}{
	"users": {}, "users_default": {}, "events": {}, "events_default": {},
	"state_default": {}, "invite": {}, "ban": {}, "kick": {}, "redact": {},
	"notifications": {},
}

// UnmarshalJSON decodes the modelled fields and keeps everything else.
func (p *PowerLevels) UnmarshalJSON(data []byte) error {
	var fields powerLevelsFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownFields {
		delete(raw, key)
	}
	*p = PowerLevels(fields)
	if len(raw) > 0 {
		p.extra = raw
	}
	return nil
}

// MarshalJSON encodes the modelled fields plus any passthrough keys.
func (p PowerLevels) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(powerLevelsFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.extra) == 0 {
		return encoded, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, fmt.Errorf("merge power levels: %w", err)
	}
	for key, value := range p.extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Permissions extracts the editable levels, filling in server defaults.
func (p PowerLevels) Permissions() permissions.Set {
	stateDefault := intOr(p.StateDefault, defaultStateDefault)
	return permissions.Set{
		Ban:          intOr(p.Ban, defaultBan),
		Invite:       intOr(p.Invite, defaultInvite),
		Kick:         intOr(p.Kick, defaultKick),
		SendEvents:   intOr(p.EventsDefault, defaultEventsDefault),
		RedactEvents: intOr(p.Redact, defaultRedact),
		RoomName:     p.eventLevel(EventTypeRoomName, stateDefault),
		RoomAvatar:   p.eventLevel(EventTypeRoomAvatar, stateDefault),
		RoomTopic:    p.eventLevel(EventTypeRoomTopic, stateDefault),
	}
}

// WithPermissions returns a copy with the editable levels replaced by set.
// Levels equal to what the copy already resolves to are left as they are,
// so an unedited field keeps relying on the server default.
func (p PowerLevels) WithPermissions(set permissions.Set) PowerLevels {
	out := p.clone()
	current := p.Permissions()

	if set.Ban != current.Ban {
		out.Ban = intPtr(set.Ban)
	}
	if set.Invite != current.Invite {
		out.Invite = intPtr(set.Invite)
	}
	if set.Kick != current.Kick {
		out.Kick = intPtr(set.Kick)
	}
	if set.RedactEvents != current.RedactEvents {
		out.Redact = intPtr(set.RedactEvents)
	}
	if set.SendEvents != current.SendEvents {
		out.EventsDefault = intPtr(set.SendEvents)
	}
	if set.RoomName != current.RoomName {
		out.setEventLevel(EventTypeRoomName, set.RoomName)
	}
	if set.RoomAvatar != current.RoomAvatar {
		out.setEventLevel(EventTypeRoomAvatar, set.RoomAvatar)
	}
	if set.RoomTopic != current.RoomTopic {
		out.setEventLevel(EventTypeRoomTopic, set.RoomTopic)
	}
	return out
}

func (p PowerLevels) eventLevel(eventType string, fallback int) int {
	if level, ok := p.Events[eventType]; ok {
		return level
	}
	return fallback
}

func (p *PowerLevels) setEventLevel(eventType string, level int) {
	if p.Events == nil {
		p.Events = make(map[string]int)
	}
	p.Events[eventType] = level
}

func (p PowerLevels) clone() PowerLevels {
	out := p
	out.Users = maps.Clone(p.Users)
	out.Events = maps.Clone(p.Events)
	out.Notifications = maps.Clone(p.Notifications)
	out.extra = maps.Clone(p.extra)
	return out
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func intPtr(v int) *int {
	return &v
}
