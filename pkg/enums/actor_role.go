package enums

import (
	"fmt"
	"strings"
)

// ActorRole is the role claim carried by an authenticated actor.
type ActorRole string

const (
	ActorRoleUser      ActorRole = "user"
	ActorRoleModerator ActorRole = "moderator"
	ActorRoleAdmin     ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleUser,
	ActorRoleModerator,
	ActorRoleAdmin,
}

func (r ActorRole) String() string {
	return string(r)
}

func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role is admin-equivalent for place moderation.
func (r ActorRole) IsPrivileged() bool {
	return r == ActorRoleAdmin || r == ActorRoleModerator
}

func ParseActorRole(value string) (ActorRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validActorRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
