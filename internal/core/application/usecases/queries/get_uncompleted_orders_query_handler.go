package queries

import (
	"context"
)

// GetUncompletedOrdersQueryHandler lists orders still moving through the lifecycle.
// Orders are returned oldest first.
type GetUncompletedOrdersQueryHandler struct {
	orders OrderReader
}

// NewGetUncompletedOrdersQueryHandler creates a handler reading through orders.
func NewGetUncompletedOrdersQueryHandler(orders OrderReader) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{orders: orders}
}

// Handle executes the query. An empty result is an empty slice, never nil.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]GetUncompletedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	found, err := h.orders.GetAllUncompleted(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]GetUncompletedOrdersQueryResponse, 0, len(found))
	for _, o := range found {
		response = append(response, GetUncompletedOrdersQueryResponse{
			ID:         o.ID(),
			VendorID:   o.VendorID(),
			CustomerID: o.CustomerID(),
			RiderID:    o.RiderID(),
			Status:     o.Status(),
			Total:      o.Total(),
		})
	}

	return response, nil
}
