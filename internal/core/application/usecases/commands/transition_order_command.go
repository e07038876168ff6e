package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks to move an order to a new status on behalf of an actor.
// The reason is only read when the target is rejected.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(orderID, order.RoleVendor, vendorID, order.Rejected, "out of stock")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct {
	orderID  kernel.UUID
	role     order.Role
	actingID kernel.UUID
	target   order.Status
	reason   string

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand validates the identifiers, role and target status.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	role order.Role,
	actingID kernel.UUID,
	target order.Status,
	reason string,
) (TransitionOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), role.Validate(), actingID.Validate(), target.Validate()); err != nil {
		return TransitionOrderCommand{}, err
	}

	return TransitionOrderCommand{
		orderID:  orderID,
		role:     role,
		actingID: actingID,
		target:   target,
		reason:   reason,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c TransitionOrderCommand) Role() order.Role      { return c.role }
func (c TransitionOrderCommand) ActingID() kernel.UUID { return c.actingID }
func (c TransitionOrderCommand) Target() order.Status  { return c.target }
func (c TransitionOrderCommand) Reason() string        { return c.reason }

// Actor is the identity recorded in the history entry.
func (c TransitionOrderCommand) Actor() order.Actor {
	return order.Actor{Role: c.role, ID: c.actingID}
}
