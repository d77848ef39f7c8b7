package enums

import "fmt"

// ActorRole identifies who performed a state-changing operation.
type ActorRole string

const (
	RoleBuyer  ActorRole = "buyer"
	RoleDealer ActorRole = "dealer"
	RoleAdmin  ActorRole = "admin"
	RoleSystem ActorRole = "system"
)

var validActorRoles = []ActorRole{RoleBuyer, RoleDealer, RoleAdmin, RoleSystem}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
