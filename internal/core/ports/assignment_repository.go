package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for rider assignments.
type AssignmentRepository interface {
	// Assign stores record as the active assignment of its order.
	//
	// The rider's open assignments are counted and checked against policy in the same atomic
	// step as the insert. Fails with errs.ErrAlreadyAssigned when the order already has an
	// active record and errs.ErrRiderBusy when the rider is at capacity.
	Assign(ctx context.Context, record *assignment.Record, policy assignment.Policy) error

	// Release closes the active assignment of orderID at the given time and returns it.
	// Returns errs.ErrObjectNotFound when the order has no active assignment.
	Release(ctx context.Context, orderID kernel.UUID, at time.Time) (*assignment.Record, error)

	// GetActive returns the open assignment of orderID.
	// Returns errs.ErrObjectNotFound when the order has no active assignment.
	GetActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error)

	// LockActive is GetActive for writers. Inside a unit of work the open record stays
	// locked until commit, so it cannot be released or replaced while the caller acts on it.
	// Returns errs.ErrObjectNotFound when the order has no active assignment.
	LockActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error)

	// GetHistory lists every assignment of orderID, oldest first.
	GetHistory(ctx context.Context, orderID kernel.UUID) ([]*assignment.Record, error)
}
