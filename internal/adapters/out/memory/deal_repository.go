package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// DealRepository implements ports.DealRepository over the store.
type DealRepository struct {
	uow *UnitOfWork
}

func (r *DealRepository) Add(_ context.Context, aggregate *deal.Deal) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	stored, err := cloneDeal(aggregate)
	if err != nil {
		return err
	}
	return r.uow.run(func(st *state) error {
		if _, exists := st.deals[aggregate.ID()]; exists {
			return errs.NewValueIsInvalidErrorWithCause("deal", fmt.Errorf("deal %s already exists", aggregate.ID()))
		}
		st.deals[aggregate.ID()] = stored
		return nil
	})
}

func (r *DealRepository) Get(_ context.Context, id kernel.UUID) (*deal.Deal, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var found *deal.Deal
	err := r.uow.run(func(st *state) error {
		stored, ok := st.deals[id]
		if !ok {
			return errs.NewObjectNotFoundError("deal", id.String())
		}
		var cloneErr error
		found, cloneErr = cloneDeal(stored)
		return cloneErr
	})
	return found, err
}

func (r *DealRepository) Reserve(
	_ context.Context,
	dealID kernel.UUID,
	quantity int,
	token kernel.UUID,
	now time.Time,
) (*deal.Reservation, error) {
	reservation, err := deal.NewReservation(token, dealID, quantity, now)
	if err != nil {
		return nil, err
	}
	err = r.uow.run(func(st *state) error {
		stored, ok := st.deals[dealID]
		if !ok {
			return errs.NewObjectNotFoundError("deal", dealID.String())
		}
		next, cloneErr := cloneDeal(stored)
		if cloneErr != nil {
			return cloneErr
		}
		if reserveErr := next.Reserve(quantity, now); reserveErr != nil {
			return reserveErr
		}
		st.deals[dealID] = next
		st.reservations[token] = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cloneReservation(reservation)
}

func (r *DealRepository) GetReservation(_ context.Context, token kernel.UUID) (*deal.Reservation, error) {
	var found *deal.Reservation
	err := r.uow.run(func(st *state) error {
		stored, ok := st.reservations[token]
		if !ok {
			return errs.NewObjectNotFoundError("reservation", token.String())
		}
		var cloneErr error
		found, cloneErr = cloneReservation(stored)
		return cloneErr
	})
	return found, err
}

func (r *DealRepository) Commit(_ context.Context, token kernel.UUID, at time.Time) error {
	return r.uow.run(func(st *state) error {
		stored, ok := st.reservations[token]
		if !ok {
			return errs.NewObjectNotFoundError("reservation", token.String())
		}
		next, err := cloneReservation(stored)
		if err != nil {
			return err
		}
		if err = next.Commit(at); err != nil {
			return err
		}
		st.reservations[token] = next
		return nil
	})
}

// Release closes the reservation and restocks its deal under the same lock.
func (r *DealRepository) Release(_ context.Context, token kernel.UUID, at time.Time) (*deal.Reservation, error) {
	var released *deal.Reservation
	err := r.uow.run(func(st *state) error {
		stored, ok := st.reservations[token]
		if !ok {
			return errs.NewObjectNotFoundError("reservation", token.String())
		}
		next, err := cloneReservation(stored)
		if err != nil {
			return err
		}
		if err = next.Release(at); err != nil {
			return err
		}

		storedDeal, ok := st.deals[next.DealID()]
		if !ok {
			return errs.NewObjectNotFoundError("deal", next.DealID().String())
		}
		nextDeal, err := cloneDeal(storedDeal)
		if err != nil {
			return err
		}
		if err = nextDeal.Restock(next.Quantity()); err != nil {
			return err
		}

		st.reservations[token] = next
		st.deals[nextDeal.ID()] = nextDeal
		released, err = cloneReservation(next)
		return err
	})
	return released, err
}

func (r *DealRepository) BindToOrder(_ context.Context, tokens []kernel.UUID, orderID kernel.UUID) error {
	return r.uow.run(func(st *state) error {
		bound := make(map[kernel.UUID]*deal.Reservation, len(tokens))
		for _, token := range tokens {
			stored, ok := st.reservations[token]
			if !ok {
				return errs.NewObjectNotFoundError("reservation", token.String())
			}
			next, err := cloneReservation(stored)
			if err != nil {
				return err
			}
			if err = next.BindToOrder(orderID); err != nil {
				return err
			}
			bound[token] = next
		}
		for token, next := range bound {
			st.reservations[token] = next
		}
		return nil
	})
}

func (r *DealRepository) GetOpenForOrder(_ context.Context, orderID kernel.UUID) ([]*deal.Reservation, error) {
	result := make([]*deal.Reservation, 0)
	err := r.uow.run(func(st *state) error {
		for _, stored := range st.reservations {
			if stored.IsReleased() || stored.OrderID() == nil || !stored.OrderID().IsEqual(orderID) {
				continue
			}
			next, err := cloneReservation(stored)
			if err != nil {
				return err
			}
			result = append(result, next)
		}
		return nil
	})
	slices.SortFunc(result, func(a, b *deal.Reservation) int {
		return a.ReservedAt().Compare(b.ReservedAt())
	})
	return result, err
}

func (r *DealRepository) DeactivateExpired(_ context.Context, now time.Time) ([]kernel.UUID, error) {
	retired := make([]kernel.UUID, 0)
	err := r.uow.run(func(st *state) error {
		for id, stored := range st.deals {
			if !stored.IsActive() || !stored.IsExpired(now) {
				continue
			}
			next, err := cloneDeal(stored)
			if err != nil {
				return err
			}
			next.Retire(now)
			st.deals[id] = next
			retired = append(retired, id)
		}
		return nil
	})
	return retired, err
}
