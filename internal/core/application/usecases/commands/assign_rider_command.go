package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrAssignRiderCommandIsNotConstructed = errors.New(
	"AssignRiderCommand must be created via NewAssignRiderCommand constructor",
)

// AssignRiderCommand binds a rider to an order.
//
// Example:
//
//	cmd, _ := NewAssignRiderCommand(orderID, riderID)
//	assignmentID, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrAlreadyAssigned):
//	    // release the current rider first
//	case errors.Is(err, errs.ErrRiderBusy):
//	    // pick another rider
//	}
type AssignRiderCommand struct {
	orderID kernel.UUID
	riderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignRiderCommand(orderID, riderID kernel.UUID) (AssignRiderCommand, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate()); err != nil {
		return AssignRiderCommand{}, err
	}
	return AssignRiderCommand{orderID: orderID, riderID: riderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignRiderCommand) Validate() error {
	return c.guard.Validate(ErrAssignRiderCommandIsNotConstructed)
}

func (c AssignRiderCommand) OrderID() kernel.UUID { return c.orderID }
func (c AssignRiderCommand) RiderID() kernel.UUID { return c.riderID }
