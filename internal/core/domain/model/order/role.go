package order

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// Role is the kind of actor requesting a transition.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole converts external input into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if err := role.Validate(); err != nil {
		return "", err
	}
	return role, nil
}

// Validate reports whether r is a known role.
func (r Role) Validate() error {
	switch r {
	case RoleVendor, RoleRider, RoleAdmin, RoleCustomer:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor identifies who performed a transition.
type Actor struct {
	Role Role
	ID   kernel.UUID
}

// Validate checks both role and identity.
func (a Actor) Validate() error {
	if err := a.Role.Validate(); err != nil {
		return err
	}
	return a.ID.Validate()
}
