package queries

import (
	"context"
)

// GetOrderStatusQueryHandler reads an order together with its rider assignments.
type GetOrderStatusQueryHandler struct {
	orders      OrderReader
	assignments AssignmentReader
}

func NewGetOrderStatusQueryHandler(orders OrderReader, assignments AssignmentReader) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{orders: orders, assignments: assignments}
}

// Handle fails with errs.ErrObjectNotFound for unknown orders.
func (h GetOrderStatusQueryHandler) Handle(ctx context.Context, query GetOrderStatusQuery) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	records, err := h.assignments.GetHistory(ctx, o.ID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response := GetOrderStatusQueryResponse{
		ID:                  o.ID(),
		VendorID:            o.VendorID(),
		CustomerID:          o.CustomerID(),
		RiderID:             o.RiderID(),
		Status:              o.Status(),
		RejectionReason:     o.RejectionReason(),
		SpecialInstructions: o.SpecialInstructions(),
		Total:               o.Total(),
		Items:               o.Items(),
		History:             o.History(),
		AssignmentCount:     len(records),
	}
	for _, record := range records {
		if record.IsActive() {
			riderID := record.RiderID()
			response.ActiveRiderID = &riderID
		}
	}

	return response, nil
}
