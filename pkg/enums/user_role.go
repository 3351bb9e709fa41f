package enums

import (
	"fmt"
	"strings"
)

// UserRole is the account-level role carried in access tokens.
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleVendor UserRole = "vendor"
	UserRoleAdmin  UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleBuyer,
	UserRoleVendor,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == strings.ToLower(strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// RegistrationRole maps a self-service signup choice onto a role. Admin can
// never be self-assigned; "seller" is accepted as an alias for vendor.
func RegistrationRole(value string) UserRole {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "vendor", "seller":
		return UserRoleVendor
	default:
		return UserRoleBuyer
	}
}
