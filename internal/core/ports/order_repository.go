package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a newly placed order with its items and first history entry.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its items and full history.
	// Returns errs.ErrObjectNotFound when no order has the given id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// CompareAndSetStatus stores the aggregate's status, rejection reason and rider together
	// with entry, but only while the stored status still equals expected.
	//
	// When another writer moved the order first nothing is written and an
	// *order.StatusConflictError carrying the fresh status is returned.
	CompareAndSetStatus(ctx context.Context, aggregate *order.Order, expected order.Status, entry order.HistoryEntry) error

	// GetAllUncompleted lists orders that are not in a terminal status, oldest first.
	GetAllUncompleted(ctx context.Context) ([]*order.Order, error)
}
