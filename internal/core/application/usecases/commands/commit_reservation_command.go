package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrCommitReservationCommandIsNotConstructed = errors.New(
	"CommitReservationCommand must be created via NewCommitReservationCommand constructor",
)

// CommitReservationCommand finalizes the reservation identified by token.
type CommitReservationCommand struct {
	token kernel.UUID
	guard guard.ConstructorGuard
}

func NewCommitReservationCommand(token kernel.UUID) (CommitReservationCommand, error) {
	if err := token.Validate(); err != nil {
		return CommitReservationCommand{}, err
	}
	return CommitReservationCommand{token: token, guard: guard.NewConstructorGuard()}, nil
}

func (c CommitReservationCommand) Validate() error {
	return c.guard.Validate(ErrCommitReservationCommandIsNotConstructed)
}

func (c CommitReservationCommand) Token() kernel.UUID { return c.token }
