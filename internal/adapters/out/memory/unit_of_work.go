package memory

import (
	"context"

	"marketplace/internal/core/ports"
)

// UnitOfWork emulates a transaction by holding the store's write lock.
// A UnitOfWork must not be shared between goroutines.
type UnitOfWork struct {
	store  *Store
	inTx   bool
	before *state
}

// Begin acquires the store lock and records the state to restore on Rollback.
// Calling Begin twice is a no-op.
func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.inTx {
		return nil
	}
	u.store.mu.Lock()
	u.before = u.store.state.snapshot()
	u.inTx = true
	return nil
}

// Commit keeps the changes and releases the lock.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.inTx {
		return ErrNoTransaction
	}
	u.before = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

// Rollback restores the state captured by Begin and releases the lock.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.inTx {
		return ErrNoTransaction
	}
	u.store.state = u.before
	u.before = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) DealRepository() ports.DealRepository {
	return &DealRepository{uow: u}
}

func (u *UnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return &AssignmentRepository{uow: u}
}

func (u *UnitOfWork) run(fn func(st *state) error) error {
	return u.store.run(u.inTx, fn)
}
