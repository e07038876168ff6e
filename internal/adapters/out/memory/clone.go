package memory

import (
	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneOrder(o *order.Order) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(), o.VendorID(), o.CustomerID(),
		copyPtr(o.RiderID()),
		o.Items(),
		o.Status(),
		copyPtr(o.RejectionReason()),
		o.SpecialInstructions(),
		o.History(),
	)
}

func cloneDeal(d *deal.Deal) (*deal.Deal, error) {
	return deal.RestoreDeal(deal.Params{
		ID:                 d.ID(),
		ProductRef:         d.ProductRef(),
		OriginalPrice:      d.OriginalPrice(),
		DealPrice:          d.DealPrice(),
		DiscountPercentage: d.DiscountPercentage(),
		Type:               d.Type(),
		StartDate:          d.StartDate(),
		EndDate:            d.EndDate(),
		MaxQuantity:        d.MaxQuantity(),
		SoldQuantity:       d.SoldQuantity(),
		IsActive:           d.IsActive(),
		Featured:           d.Featured(),
		Category:           d.Category(),
		Tags:               d.Tags(),
	})
}

func cloneReservation(r *deal.Reservation) (*deal.Reservation, error) {
	return deal.RestoreReservation(
		r.Token(), r.DealID(), r.Quantity(),
		copyPtr[kernel.UUID](r.OrderID()),
		r.ReservedAt(),
		copyPtr(r.CommittedAt()),
		copyPtr(r.ReleasedAt()),
	)
}

func cloneRecord(r *assignment.Record) (*assignment.Record, error) {
	return assignment.RestoreRecord(r.ID(), r.OrderID(), r.RiderID(), r.AssignedAt(), copyPtr(r.ReleasedAt()))
}
