package permissions

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is a named power level a user can be given.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

var roleOrder = []Role{RoleAdmin, RoleModerator, RoleUser}

// Roles returns the roles from most to least privileged.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// PowerLevel returns the level implied by the role.
func (r Role) PowerLevel() int {
	switch r {
	case RoleAdmin:
		return 100
	case RoleModerator:
		return 50
	default:
		return 0
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleModerator:
		return "moderator"
	case RoleUser:
		return "user"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Label is the name shown when the role is the minimum for an action.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admins"
	case RoleModerator:
		return "Moderators"
	default:
		return "Everyone"
	}
}

// Next steps toward more privilege, wrapping from Admin to User.
func (r Role) Next() Role {
	switch r {
	case RoleUser:
		return RoleModerator
	case RoleModerator:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Prev steps toward less privilege, wrapping from User to Admin.
func (r Role) Prev() Role {
	switch r {
	case RoleAdmin:
		return RoleModerator
	case RoleModerator:
		return RoleUser
	default:
		return RoleAdmin
	}
}

// RoleForLevel maps an arbitrary power level to the role that covers it.
func RoleForLevel(level int) Role {
	switch {
	case level >= 100:
		return RoleAdmin
	case level >= 50:
		return RoleModerator
	default:
		return RoleUser
	}
}

// IsCustomLevel reports whether level is not exactly a role's level.
func IsCustomLevel(level int) bool {
	return RoleForLevel(level).PowerLevel() != level
}

// ParseRole accepts a role name ("admin", "moderator", "mod", "user",
// "everyone").
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin", "admins":
		return RoleAdmin, nil
	case "moderator", "moderators", "mod":
		return RoleModerator, nil
	case "user", "users", "everyone", "default":
		return RoleUser, nil
	}
	return 0, fmt.Errorf("unknown role %q", value)
}

// ParseLevel accepts either a role name or a plain integer level.
func ParseLevel(value string) (int, error) {
	if role, err := ParseRole(value); err == nil {
		return role.PowerLevel(), nil
	}
	level, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("level %q is neither a role nor an integer", value)
	}
	return level, nil
}

// LevelLabel renders a level as its role label, with the number appended
// for custom levels.
func LevelLabel(level int) string {
	if IsCustomLevel(level) {
		return fmt.Sprintf("Custom (%d)", level)
	}
	return RoleForLevel(level).Label()
}
