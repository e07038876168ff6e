package memory

import (
	"context"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// OrderRepository implements ports.OrderRepository over the store.
type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	stored, err := cloneOrder(aggregate)
	if err != nil {
		return err
	}
	return r.uow.run(func(st *state) error {
		if _, exists := st.orders[aggregate.ID()]; exists {
			return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s already exists", aggregate.ID()))
		}
		st.orders[aggregate.ID()] = stored
		st.orderSeq = append(st.orderSeq, aggregate.ID())
		return nil
	})
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var found *order.Order
	err := r.uow.run(func(st *state) error {
		stored, ok := st.orders[id]
		if !ok {
			return errs.NewObjectNotFoundError("order", id.String())
		}
		var cloneErr error
		found, cloneErr = cloneOrder(stored)
		return cloneErr
	})
	return found, err
}

// CompareAndSetStatus replaces the stored order only while its status still equals expected.
func (r *OrderRepository) CompareAndSetStatus(
	_ context.Context,
	aggregate *order.Order,
	expected order.Status,
	entry order.HistoryEntry,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if last := aggregate.LastHistoryEntry(); last.Status != entry.Status || !last.At.Equal(entry.At) {
		return errs.NewValueIsInvalidErrorWithCause("history entry",
			fmt.Errorf("entry %s is not the latest history entry of order %s", entry.Status, aggregate.ID()))
	}
	next, err := cloneOrder(aggregate)
	if err != nil {
		return err
	}
	return r.uow.run(func(st *state) error {
		stored, ok := st.orders[aggregate.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		if stored.Status() != expected {
			return order.NewStatusConflictError(aggregate.ID(), expected, stored.Status())
		}
		st.orders[aggregate.ID()] = next
		return nil
	})
}

func (r *OrderRepository) GetAllUncompleted(_ context.Context) ([]*order.Order, error) {
	result := make([]*order.Order, 0)
	err := r.uow.run(func(st *state) error {
		for _, id := range st.orderSeq {
			stored := st.orders[id]
			if stored.Status().IsTerminal() {
				continue
			}
			o, err := cloneOrder(stored)
			if err != nil {
				return err
			}
			result = append(result, o)
		}
		return nil
	})
	return result, err
}
