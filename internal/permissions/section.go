package permissions

import (
	"fmt"
	"strings"
)

// Section groups related keys on one editing screen.
type Section int

const (
	SectionRoomDetails Section = iota
	SectionMessagesAndContent
	SectionMembershipModeration
)

var sectionOrder = []Section{
	SectionRoomDetails,
	SectionMessagesAndContent,
	SectionMembershipModeration,
}

var sectionItems = map[Section][]Key{
	SectionRoomDetails:          {KeyRoomName, KeyRoomAvatar, KeyRoomTopic},
	SectionMessagesAndContent:   {KeySendEvents, KeyRedactEvents},
	SectionMembershipModeration: {KeyInvite, KeyKick, KeyBan},
}

var sectionNames = map[Section]string{
	SectionRoomDetails:          "room_details",
	SectionMessagesAndContent:   "messages_and_content",
	SectionMembershipModeration: "membership_moderation",
}

var sectionTitles = map[Section]string{
	SectionRoomDetails:          "Room details",
	SectionMessagesAndContent:   "Messages and content",
	SectionMembershipModeration: "Member moderation",
}

// Sections returns every section in display order.
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

// Items returns the ordered keys edited in this section. The slice is a
// fresh copy.
func (s Section) Items() []Key {
	items := sectionItems[s]
	out := make([]Key, len(items))
	copy(out, items)
	return out
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Title returns the heading shown above the section.
func (s Section) Title() string {
	if title, ok := sectionTitles[s]; ok {
		return title
	}
	return s.String()
}

// Next returns the following section, wrapping around.
func (s Section) Next() Section {
	return sectionOrder[(s.index()+1)%len(sectionOrder)]
}

// Prev returns the preceding section, wrapping around.
func (s Section) Prev() Section {
	return sectionOrder[(s.index()+len(sectionOrder)-1)%len(sectionOrder)]
}

func (s Section) index() int {
	for i, candidate := range sectionOrder {
		if candidate == s {
			return i
		}
	}
	return 0
}

// ParseSection resolves a section by name. Short aliases "details",
// "messages" and "moderation" are accepted.
func ParseSection(value string) (Section, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	switch normalized {
	case "details":
		return SectionRoomDetails, nil
	case "messages":
		return SectionMessagesAndContent, nil
	case "moderation", "membership":
		return SectionMembershipModeration, nil
	}
	for _, s := range sectionOrder {
		if sectionNames[s] == normalized {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", value)
}

// Section returns the section that edits k.
func (k Key) Section() (Section, bool) {
	for _, s := range sectionOrder {
		for _, item := range sectionItems[s] {
			if item == k {
				return s, true
			}
		}
	}
	return 0, false
}
