package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrReleaseReservationCommandIsNotConstructed = errors.New(
	"ReleaseReservationCommand must be created via NewReleaseReservationCommand constructor",
)

// ReleaseReservationCommand returns the units held by token to the deal.
type ReleaseReservationCommand struct {
	token kernel.UUID
	guard guard.ConstructorGuard
}

func NewReleaseReservationCommand(token kernel.UUID) (ReleaseReservationCommand, error) {
	if err := token.Validate(); err != nil {
		return ReleaseReservationCommand{}, err
	}
	return ReleaseReservationCommand{token: token, guard: guard.NewConstructorGuard()}, nil
}

func (c ReleaseReservationCommand) Validate() error {
	return c.guard.Validate(ErrReleaseReservationCommandIsNotConstructed)
}

func (c ReleaseReservationCommand) Token() kernel.UUID { return c.token }
