package order

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// StatusConflictError reports that an order left Expected before a transition could be
// stored. Actual is the status read back after the lost race.
type StatusConflictError struct {
	OrderID  kernel.UUID
	Expected Status
	Actual   Status
}

// NewStatusConflictError builds the error for orderID.
func NewStatusConflictError(orderID kernel.UUID, expected, actual Status) *StatusConflictError {
	return &StatusConflictError{OrderID: orderID, Expected: expected, Actual: actual}
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("%s: order %s moved from %s to %s", errs.ErrConflict, e.OrderID, e.Expected, e.Actual)
}

func (e *StatusConflictError) Unwrap() error {
	return errs.ErrConflict
}
