package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrReleaseAssignmentCommandIsNotConstructed = errors.New(
	"ReleaseAssignmentCommand must be created via NewReleaseAssignmentCommand constructor",
)

// ReleaseAssignmentCommand unbinds the active rider of an order. A reassignment is this
// command followed by AssignRiderCommand.
type ReleaseAssignmentCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewReleaseAssignmentCommand(orderID kernel.UUID) (ReleaseAssignmentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ReleaseAssignmentCommand{}, err
	}
	return ReleaseAssignmentCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ReleaseAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrReleaseAssignmentCommandIsNotConstructed)
}

func (c ReleaseAssignmentCommand) OrderID() kernel.UUID { return c.orderID }
