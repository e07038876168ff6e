package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/pkg/guard"
)

var ErrCreateDealCommandIsNotConstructed = errors.New(
	"CreateDealCommand must be created via NewCreateDealCommand constructor",
)

// CreateDealCommand registers a new deal on behalf of the platform operator.
// The deal shape is checked when the command is built, so an invalid deal never reaches a
// transaction.
type CreateDealCommand struct {
	params deal.Params
	guard  guard.ConstructorGuard
}

// NewCreateDealCommand validates params by building the deal they describe.
func NewCreateDealCommand(params deal.Params) (CreateDealCommand, error) {
	if _, err := deal.NewDeal(params); err != nil {
		return CreateDealCommand{}, err
	}
	return CreateDealCommand{params: params, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateDealCommand) Validate() error {
	return c.guard.Validate(ErrCreateDealCommandIsNotConstructed)
}

func (c CreateDealCommand) Params() deal.Params { return c.params }
