package order

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// StatusChanged is emitted after a transition has been stored.
type StatusChanged struct {
	OrderID         kernel.UUID
	VendorID        kernel.UUID
	CustomerID      kernel.UUID
	RiderID         *kernel.UUID
	From            Status
	To              Status
	Actor           Actor
	RejectionReason *string
	At              time.Time
}

// NewStatusChanged describes the move of o from the previous status to its current one.
func NewStatusChanged(o *Order, from Status, entry HistoryEntry) StatusChanged {
	return StatusChanged{
		OrderID:         o.ID(),
		VendorID:        o.VendorID(),
		CustomerID:      o.CustomerID(),
		RiderID:         o.RiderID(),
		From:            from,
		To:              entry.Status,
		Actor:           entry.Actor,
		RejectionReason: o.RejectionReason(),
		At:              entry.At,
	}
}
