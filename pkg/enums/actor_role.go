package enums

import "fmt"

// ActorRole classifies an authenticated caller.
type ActorRole string

const (
	ActorRolePlayer  ActorRole = "player"
	ActorRoleAdmin   ActorRole = "admin"
	ActorRoleService ActorRole = "service"
)

var validActorRoles = []ActorRole{
	ActorRolePlayer,
	ActorRoleAdmin,
	ActorRoleService,
}

// IsValid reports whether the value matches the canonical role enum.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts the raw string to ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
