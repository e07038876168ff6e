// Package memory keeps every aggregate in process memory behind one mutex.
//
// A unit of work holds the store's write lock from Begin until Commit or Rollback, which
// gives transactions serializable isolation; Rollback restores the state captured at Begin.
// Repository calls made outside a transaction lock around each call.
//
// Stored aggregates are never handed out: every read returns a fresh copy and every write
// stores one, so a caller mutating an aggregate cannot bypass the conditional writes.
//
// The store backs STORE_DRIVER=memory and the Docker-free tests.
package memory

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoTransaction = errors.New("memory: no active transaction")

type state struct {
	orders       map[kernel.UUID]*order.Order
	orderSeq     []kernel.UUID
	deals        map[kernel.UUID]*deal.Deal
	reservations map[kernel.UUID]*deal.Reservation
	assignments  []*assignment.Record
}

func newState() *state {
	return &state{
		orders:       make(map[kernel.UUID]*order.Order),
		deals:        make(map[kernel.UUID]*deal.Deal),
		reservations: make(map[kernel.UUID]*deal.Reservation),
	}
}

// snapshot copies the containers. Stored values are replaced, never mutated, so sharing them
// between snapshots is safe.
func (s *state) snapshot() *state {
	return &state{
		orders:       maps.Clone(s.orders),
		orderSeq:     slices.Clone(s.orderSeq),
		deals:        maps.Clone(s.deals),
		reservations: maps.Clone(s.reservations),
		assignments:  slices.Clone(s.assignments),
	}
}

// Store is the shared in-memory database. It is also the unit of work factory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Create produces a new unit of work over the store.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

// run executes fn against the current state, taking the lock unless the caller's unit of
// work already holds it.
func (s *Store) run(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}
