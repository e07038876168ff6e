package memory

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// AssignmentRepository implements ports.AssignmentRepository over the store.
type AssignmentRepository struct {
	uow *UnitOfWork
}

// Assign checks the order's binding and the rider's load and appends record under one lock.
func (r *AssignmentRepository) Assign(_ context.Context, record *assignment.Record, policy assignment.Policy) error {
	if err := record.Validate(); err != nil {
		return err
	}
	stored, err := cloneRecord(record)
	if err != nil {
		return err
	}
	return r.uow.run(func(st *state) error {
		riderLoad := 0
		for _, existing := range st.assignments {
			if !existing.IsActive() {
				continue
			}
			if existing.OrderID().IsEqual(record.OrderID()) {
				return errs.NewDomainError(errs.ErrAlreadyAssigned,
					fmt.Sprintf("order %s is assigned to rider %s", record.OrderID(), existing.RiderID()))
			}
			if existing.RiderID().IsEqual(record.RiderID()) {
				riderLoad++
			}
		}
		if err := policy.Admit(record.RiderID(), riderLoad); err != nil {
			return err
		}
		st.assignments = append(st.assignments, stored)
		return nil
	})
}

func (r *AssignmentRepository) Release(_ context.Context, orderID kernel.UUID, at time.Time) (*assignment.Record, error) {
	var released *assignment.Record
	err := r.uow.run(func(st *state) error {
		for i, existing := range st.assignments {
			if !existing.IsActive() || !existing.OrderID().IsEqual(orderID) {
				continue
			}
			next, err := cloneRecord(existing)
			if err != nil {
				return err
			}
			if err = next.Release(at); err != nil {
				return err
			}
			st.assignments[i] = next
			released, err = cloneRecord(next)
			return err
		}
		return errs.NewObjectNotFoundError("active assignment", orderID.String())
	})
	return released, err
}

func (r *AssignmentRepository) GetActive(_ context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	var found *assignment.Record
	err := r.uow.run(func(st *state) error {
		for _, existing := range st.assignments {
			if existing.IsActive() && existing.OrderID().IsEqual(orderID) {
				var err error
				found, err = cloneRecord(existing)
				return err
			}
		}
		return errs.NewObjectNotFoundError("active assignment", orderID.String())
	})
	return found, err
}

// LockActive is GetActive; a unit of work already holds the store lock until it ends.
func (r *AssignmentRepository) LockActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	return r.GetActive(ctx, orderID)
}

func (r *AssignmentRepository) GetHistory(_ context.Context, orderID kernel.UUID) ([]*assignment.Record, error) {
	result := make([]*assignment.Record, 0)
	err := r.uow.run(func(st *state) error {
		for _, existing := range st.assignments {
			if !existing.OrderID().IsEqual(orderID) {
				continue
			}
			next, err := cloneRecord(existing)
			if err != nil {
				return err
			}
			result = append(result, next)
		}
		return nil
	})
	return result, err
}
