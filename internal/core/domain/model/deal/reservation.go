package deal

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrReservationIsNotConstructed is returned for reservations not built via a constructor.
var ErrReservationIsNotConstructed = errors.New("Reservation must be created via NewReservation constructor")

// Reservation is a provisional claim of quantity units against a deal. Its token is the
// handle callers use to commit or release the claim.
type Reservation struct {
	token       kernel.UUID
	dealID      kernel.UUID
	quantity    int
	orderID     *kernel.UUID
	reservedAt  time.Time
	committedAt *time.Time
	releasedAt  *time.Time

	guard guard.ConstructorGuard
}

// NewReservation records a fresh claim made at reservedAt.
func NewReservation(token, dealID kernel.UUID, quantity int, reservedAt time.Time) (*Reservation, error) {
	return RestoreReservation(token, dealID, quantity, nil, reservedAt, nil, nil)
}

// RestoreReservation rebuilds a reservation from persistence.
func RestoreReservation(
	token, dealID kernel.UUID,
	quantity int,
	orderID *kernel.UUID,
	reservedAt time.Time,
	committedAt, releasedAt *time.Time,
) (*Reservation, error) {
	var quantityErr error
	if quantity <= 0 {
		quantityErr = errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	var reservedErr error
	if reservedAt.IsZero() {
		reservedErr = errs.NewValueIsRequiredError("reservedAt")
	}
	if err := errors.Join(token.Validate(), dealID.Validate(), quantityErr, reservedErr); err != nil {
		return nil, err
	}

	return &Reservation{
		token:       token,
		dealID:      dealID,
		quantity:    quantity,
		orderID:     orderID,
		reservedAt:  reservedAt.UTC(),
		committedAt: committedAt,
		releasedAt:  releasedAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the reservation was built through a constructor.
func (r *Reservation) Validate() error {
	if r == nil {
		return ErrReservationIsNotConstructed
	}
	return r.guard.Validate(ErrReservationIsNotConstructed)
}

func (r *Reservation) Token() kernel.UUID      { return r.token }
func (r *Reservation) DealID() kernel.UUID     { return r.dealID }
func (r *Reservation) Quantity() int           { return r.quantity }
func (r *Reservation) OrderID() *kernel.UUID   { return r.orderID }
func (r *Reservation) ReservedAt() time.Time   { return r.reservedAt }
func (r *Reservation) CommittedAt() *time.Time { return r.committedAt }
func (r *Reservation) ReleasedAt() *time.Time  { return r.releasedAt }
func (r *Reservation) IsReleased() bool        { return r.releasedAt != nil }
func (r *Reservation) IsCommitted() bool       { return r.committedAt != nil }

// Commit finalizes the claim. Committing twice is a no-op; committing a released
// reservation fails with ErrAlreadyReleased.
func (r *Reservation) Commit(at time.Time) error {
	if r.IsReleased() {
		return errs.NewDomainError(errs.ErrAlreadyReleased, fmt.Sprintf("reservation %s", r.token))
	}
	if r.IsCommitted() {
		return nil
	}
	committed := at.UTC()
	r.committedAt = &committed
	return nil
}

// Release closes the claim. A second release fails with ErrAlreadyReleased.
func (r *Reservation) Release(at time.Time) error {
	if r.IsReleased() {
		return errs.NewDomainError(errs.ErrAlreadyReleased, fmt.Sprintf("reservation %s", r.token))
	}
	released := at.UTC()
	r.releasedAt = &released
	return nil
}

// BindToOrder records the order that owns the claim. Rebinding to the same order is allowed.
func (r *Reservation) BindToOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if r.orderID != nil && !r.orderID.IsEqual(orderID) {
		return errs.NewValueIsInvalidErrorWithCause("orderID",
			fmt.Errorf("reservation %s already belongs to order %s", r.token, r.orderID))
	}
	r.orderID = &orderID
	return nil
}
