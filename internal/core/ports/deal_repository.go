package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
)

// DealRepository defines the persistence contract for deals and their reservations.
//
// Reserve and Release change soldQuantity. Both are conditional writes: concurrent callers
// on the same deal can never push soldQuantity above maxQuantity or below zero.
type DealRepository interface {
	// Add persists a new deal.
	Add(ctx context.Context, aggregate *deal.Deal) error

	// Get retrieves a deal by id. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*deal.Deal, error)

	// Reserve claims quantity units of dealID at now under token.
	//
	// Fails with errs.ErrOutOfStock when the units are not available, errs.ErrDealExpired when
	// the deal is inactive or outside its window, and errs.ErrObjectNotFound for unknown deals.
	// On failure soldQuantity is unchanged and no reservation exists.
	Reserve(ctx context.Context, dealID kernel.UUID, quantity int, token kernel.UUID, now time.Time) (*deal.Reservation, error)

	// GetReservation retrieves a reservation by token.
	GetReservation(ctx context.Context, token kernel.UUID) (*deal.Reservation, error)

	// Commit marks the reservation committed. Committing again is a no-op; a released
	// reservation fails with errs.ErrAlreadyReleased.
	Commit(ctx context.Context, token kernel.UUID, at time.Time) error

	// Release closes the reservation and returns its units to the deal in one step.
	// A second release fails with errs.ErrAlreadyReleased and changes nothing.
	Release(ctx context.Context, token kernel.UUID, at time.Time) (*deal.Reservation, error)

	// BindToOrder records orderID as the owner of every reservation in tokens.
	BindToOrder(ctx context.Context, tokens []kernel.UUID, orderID kernel.UUID) error

	// GetOpenForOrder lists reservations of orderID that have not been released.
	GetOpenForOrder(ctx context.Context, orderID kernel.UUID) ([]*deal.Reservation, error)

	// DeactivateExpired retires active deals whose end date is before now and returns the
	// ids of the deals it retired. Quantities are never touched.
	DeactivateExpired(ctx context.Context, now time.Time) ([]kernel.UUID, error)
}
