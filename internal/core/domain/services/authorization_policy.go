package services

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// Binding ties an acting identity to the parties of one order.
//
// ActiveRiderID is the rider currently assigned to the order, or nil when nobody is.
type Binding struct {
	ActingID      kernel.UUID
	VendorID      kernel.UUID
	CustomerID    kernel.UUID
	ActiveRiderID *kernel.UUID
}

// BindingFor builds the binding of actingID against o and its active rider.
func BindingFor(o *order.Order, actingID kernel.UUID, activeRiderID *kernel.UUID) Binding {
	return Binding{
		ActingID:      actingID,
		VendorID:      o.VendorID(),
		CustomerID:    o.CustomerID(),
		ActiveRiderID: activeRiderID,
	}
}

// AuthorizationPolicy decides who may move an order along which edge of the status table.
//
// Key responsibilities:
//   - Looking up the (from, to) edge and its role column
//   - Checking the acting identity against the order's vendor, customer or active rider
//   - Telling an impossible move apart from a move this actor may not make
//
// Business rules:
//   - A vendor acts only on orders of its own store
//   - A rider acts only on the order it is currently assigned to
//   - A customer acts only on its own order
//   - An admin may act on any order where the edge lists the admin role
//
// Example usage:
//
//	policy := services.NewAuthorizationPolicy()
//	binding := services.BindingFor(o, actingID, activeRider)
//	if err := policy.Authorize(order.RoleVendor, binding, o.Status(), order.Accepted); err != nil {
//	    // errs.ErrInvalidTransition or errs.ErrUnauthorized
//	}
type AuthorizationPolicy struct{}

// NewAuthorizationPolicy creates a new AuthorizationPolicy instance.
func NewAuthorizationPolicy() AuthorizationPolicy {
	return AuthorizationPolicy{}
}

// CanTransition reports whether role, acting under binding, may move an order from one
// status to another.
//
// Parameters:
//   - role: the kind of actor requesting the move
//   - binding: the acting identity and the parties of the order
//   - from: the order's current status
//   - to: the requested status
//
// Returns:
//   - bool: true only when the edge exists, lists role, and the identity matches
func (p AuthorizationPolicy) CanTransition(role order.Role, binding Binding, from, to order.Status) bool {
	return p.Authorize(role, binding, from, to) == nil
}

// Authorize is CanTransition with the reason for a refusal.
//
// Returns:
//   - error: nil when allowed
//   - errs.ErrInvalidTransition when no edge leads from -> to for any role
//   - errs.ErrUnauthorized when the edge exists but role or identity does not match
func (p AuthorizationPolicy) Authorize(role order.Role, binding Binding, from, to order.Status) error {
	edge, ok := order.FindEdge(from, to)
	if !ok {
		return errs.NewDomainError(errs.ErrInvalidTransition, fmt.Sprintf("no transition from %s to %s", from, to))
	}

	if !edge.Allows(role) {
		return errs.NewDomainError(errs.ErrUnauthorized,
			fmt.Sprintf("role %s may not move an order from %s to %s", role, from, to))
	}

	if !identityMatches(role, binding) {
		return errs.NewDomainError(errs.ErrUnauthorized,
			fmt.Sprintf("%s %s is not bound to this order", role, binding.ActingID))
	}

	return nil
}

func identityMatches(role order.Role, b Binding) bool {
	if b.ActingID.IsZero() {
		return false
	}
	switch role {
	case order.RoleVendor:
		return b.ActingID.IsEqual(b.VendorID)
	case order.RoleCustomer:
		return b.ActingID.IsEqual(b.CustomerID)
	case order.RoleRider:
		return b.ActiveRiderID != nil && b.ActingID.IsEqual(*b.ActiveRiderID)
	case order.RoleAdmin:
		return true
	default:
		return false
	}
}
