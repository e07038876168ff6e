// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored as one orders row plus its order_items lines and its append-only
// order_history rows.
package orderrepo

import (
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey"`
	VendorID            uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerID          uuid.UUID         `gorm:"type:uuid;not null"`
	RiderID             *uuid.UUID        `gorm:"type:uuid"`
	Status              string            `gorm:"type:varchar(32);not null;index"`
	RejectionReason     *string           `gorm:"type:varchar(500)"`
	SpecialInstructions string            `gorm:"type:text;not null"`
	Total               decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	CreatedAt           time.Time         `gorm:"not null"`
	Items               []OrderItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History             []OrderHistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order line. Position keeps the lines in placement order.
type OrderItemDTO struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_order_items_position"`
	Position  int             `gorm:"not null;uniqueIndex:ux_order_items_position"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	DealID    *uuid.UUID      `gorm:"type:uuid"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// OrderHistoryDTO is one status the order has been in.
type OrderHistoryDTO struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_order_history_position"`
	Position  int       `gorm:"not null;uniqueIndex:ux_order_history_position"`
	Status    string    `gorm:"type:varchar(32);not null"`
	ActorRole string    `gorm:"type:varchar(16);not null"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	At        time.Time `gorm:"not null"`
}

func (OrderHistoryDTO) TableName() string {
	return "order_history"
}

// fromDomain converts an order aggregate to its database representation, lines and history included.
func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Bytes()

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for i, item := range aggregate.Items() {
		items = append(items, OrderItemDTO{
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID().Bytes(),
			DealID:    optionalID(item.DealID()),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Decimal(),
		})
	}

	history := make([]OrderHistoryDTO, 0, len(aggregate.History()))
	for i, entry := range aggregate.History() {
		history = append(history, historyFromDomain(orderID, i, entry))
	}

	return OrderDTO{
		ID:                  orderID,
		VendorID:            aggregate.VendorID().Bytes(),
		CustomerID:          aggregate.CustomerID().Bytes(),
		RiderID:             optionalID(aggregate.RiderID()),
		Status:              aggregate.Status().String(),
		RejectionReason:     aggregate.RejectionReason(),
		SpecialInstructions: aggregate.SpecialInstructions(),
		Total:               aggregate.Total().Decimal(),
		CreatedAt:           aggregate.History()[0].At,
		Items:               items,
		History:             history,
	}
}

func historyFromDomain(orderID uuid.UUID, position int, entry order.HistoryEntry) OrderHistoryDTO {
	return OrderHistoryDTO{
		OrderID:   orderID,
		Position:  position,
		Status:    entry.Status.String(),
		ActorRole: entry.Actor.Role.String(),
		ActorID:   entry.Actor.ID.Bytes(),
		At:        entry.At,
	}
}

// toDomain rebuilds the aggregate with RestoreOrder. Items and History must be loaded
// ordered by position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	riderID, err := restoreOptionalID(dto.RiderID)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, line := range dto.Items {
		item, itemErr := itemToDomain(line)
		if itemErr != nil {
			return nil, fmt.Errorf("order %s line %d: %w", id, line.Position, itemErr)
		}
		items = append(items, item)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, row := range dto.History {
		actorID, actorErr := kernel.UUIDFromBytes(row.ActorID[:])
		if actorErr != nil {
			return nil, actorErr
		}
		history = append(history, order.HistoryEntry{
			Status: order.Status(row.Status),
			Actor:  order.Actor{Role: order.Role(row.ActorRole), ID: actorID},
			At:     row.At.UTC(),
		})
	}

	return order.RestoreOrder(
		id, vendorID, customerID, riderID, items,
		order.Status(dto.Status), dto.RejectionReason, dto.SpecialInstructions, history,
	)
}

func itemToDomain(line OrderItemDTO) (order.Item, error) {
	productID, err := kernel.UUIDFromBytes(line.ProductID[:])
	if err != nil {
		return order.Item{}, err
	}
	dealID, err := restoreOptionalID(line.DealID)
	if err != nil {
		return order.Item{}, err
	}
	unitPrice, err := kernel.NewMoney(line.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, dealID, line.Quantity, unitPrice)
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func restoreOptionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
