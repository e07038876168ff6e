package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrReserveDealCommandIsNotConstructed = errors.New(
	"ReserveDealCommand must be created via NewReserveDealCommand constructor",
)

// ReserveDealCommand claims quantity units of a deal.
type ReserveDealCommand struct {
	dealID   kernel.UUID
	quantity int

	guard guard.ConstructorGuard
}

// NewReserveDealCommand validates the deal id and requires a positive quantity.
func NewReserveDealCommand(dealID kernel.UUID, quantity int) (ReserveDealCommand, error) {
	var quantityErr error
	if quantity <= 0 {
		quantityErr = errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if err := errors.Join(dealID.Validate(), quantityErr); err != nil {
		return ReserveDealCommand{}, err
	}

	return ReserveDealCommand{dealID: dealID, quantity: quantity, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReserveDealCommand) Validate() error {
	return c.guard.Validate(ErrReserveDealCommandIsNotConstructed)
}

func (c ReserveDealCommand) DealID() kernel.UUID { return c.dealID }
func (c ReserveDealCommand) Quantity() int       { return c.quantity }
