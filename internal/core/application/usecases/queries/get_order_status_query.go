package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery reads the current state of one order.
type GetOrderStatusQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, err
	}
	return GetOrderStatusQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

func (q GetOrderStatusQuery) OrderID() kernel.UUID { return q.orderID }

// GetOrderStatusQueryResponse is a snapshot of an order and its rider binding.
type GetOrderStatusQueryResponse struct {
	ID                  kernel.UUID
	VendorID            kernel.UUID
	CustomerID          kernel.UUID
	RiderID             *kernel.UUID
	ActiveRiderID       *kernel.UUID
	Status              order.Status
	RejectionReason     *string
	SpecialInstructions string
	Total               kernel.Money
	Items               []order.Item
	History             []order.HistoryEntry
	AssignmentCount     int
}
