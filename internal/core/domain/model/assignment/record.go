package assignment

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrRecordIsNotConstructed is returned when a Record was not built via a constructor.
var ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord constructor")

// Record binds one rider to one order for a period of time.
// At most one open record exists per order.
type Record struct {
	id         kernel.UUID
	orderID    kernel.UUID
	riderID    kernel.UUID
	assignedAt time.Time
	releasedAt *time.Time

	guard guard.ConstructorGuard
}

// NewRecord opens an assignment of riderID to orderID at assignedAt.
func NewRecord(id, orderID, riderID kernel.UUID, assignedAt time.Time) (*Record, error) {
	return RestoreRecord(id, orderID, riderID, assignedAt, nil)
}

// RestoreRecord rebuilds a record from persistence.
func RestoreRecord(id, orderID, riderID kernel.UUID, assignedAt time.Time, releasedAt *time.Time) (*Record, error) {
	var assignedErr error
	if assignedAt.IsZero() {
		assignedErr = errs.NewValueIsRequiredError("assignedAt")
	}
	var releasedErr error
	if releasedAt != nil && releasedAt.Before(assignedAt) {
		releasedErr = errs.NewValueIsInvalidErrorWithCause("releasedAt",
			fmt.Errorf("%s is before assignment at %s", releasedAt.Format(time.RFC3339), assignedAt.Format(time.RFC3339)))
	}
	if err := errors.Join(id.Validate(), orderID.Validate(), riderID.Validate(), assignedErr, releasedErr); err != nil {
		return nil, err
	}

	return &Record{
		id:         id,
		orderID:    orderID,
		riderID:    riderID,
		assignedAt: assignedAt.UTC(),
		releasedAt: releasedAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the record was built through a constructor.
func (r *Record) Validate() error {
	if r == nil {
		return ErrRecordIsNotConstructed
	}
	return r.guard.Validate(ErrRecordIsNotConstructed)
}

func (r *Record) ID() kernel.UUID        { return r.id }
func (r *Record) OrderID() kernel.UUID   { return r.orderID }
func (r *Record) RiderID() kernel.UUID   { return r.riderID }
func (r *Record) AssignedAt() time.Time  { return r.assignedAt }
func (r *Record) ReleasedAt() *time.Time { return r.releasedAt }

// IsActive reports whether the rider is still bound to the order.
func (r *Record) IsActive() bool {
	return r.releasedAt == nil
}

// Release closes the record at the given time.
func (r *Record) Release(at time.Time) error {
	if !r.IsActive() {
		return errs.NewDomainError(errs.ErrAlreadyReleased, fmt.Sprintf("assignment %s", r.id))
	}
	released := at.UTC()
	r.releasedAt = &released
	return nil
}
