package enums

import "fmt"

// Role distinguishes the three account types on the platform.
type Role string

const (
	RolePharmacy    Role = "pharmacy"
	RoleDistributor Role = "distributor"
	RoleAdmin       Role = "admin"
)

var validRoles = []Role{RolePharmacy, RoleDistributor, RoleAdmin}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw strings into Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
