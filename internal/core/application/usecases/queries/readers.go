// Package queries contains read-only operations over orders and deals.
// Query handlers read through narrow reader interfaces that the composition root binds to the
// reader connection, so reporting traffic never competes with command transactions.
package queries

import (
	"context"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

type (
	// OrderReader loads orders outside of a transaction.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
		GetAllUncompleted(ctx context.Context) ([]*order.Order, error)
	}

	// DealReader loads deals outside of a transaction.
	DealReader interface {
		Get(ctx context.Context, id kernel.UUID) (*deal.Deal, error)
	}

	// AssignmentReader loads rider assignments outside of a transaction.
	AssignmentReader interface {
		GetActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error)
		GetHistory(ctx context.Context, orderID kernel.UUID) ([]*assignment.Record, error)
	}
)
