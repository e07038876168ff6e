// Package dealrepo persists deals and their stock reservations. Every stock movement is a
// single conditional UPDATE, so the database row is the only place stock is counted.
package dealrepo

import (
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DealDTO represents the database structure for persisting deals.
type DealDTO struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductRef         uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DealPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	DealType           string          `gorm:"type:varchar(16);not null"`
	StartDate          time.Time       `gorm:"not null"`
	EndDate            time.Time       `gorm:"not null"`
	MaxQuantity        int             `gorm:"not null"`
	SoldQuantity       int             `gorm:"not null"`
	IsActive           bool            `gorm:"not null"`
	Featured           bool            `gorm:"not null"`
	Category           string          `gorm:"type:varchar(100);not null"`
	Tags               pq.StringArray  `gorm:"type:text[];not null"`
}

// TableName specifies the database table name for deal entities.
func (DealDTO) TableName() string {
	return "deals"
}

// ReservationDTO is a quantity held against a deal.
type ReservationDTO struct {
	Token       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DealID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID `gorm:"type:uuid"`
	Quantity    int        `gorm:"not null"`
	ReservedAt  time.Time  `gorm:"not null"`
	CommittedAt *time.Time
	ReleasedAt  *time.Time
}

func (ReservationDTO) TableName() string {
	return "deal_reservations"
}

func fromDomain(d *deal.Deal) DealDTO {
	return DealDTO{
		ID:                 d.ID().Bytes(),
		ProductRef:         d.ProductRef().Bytes(),
		OriginalPrice:      d.OriginalPrice().Decimal(),
		DealPrice:          d.DealPrice().Decimal(),
		DiscountPercentage: d.DiscountPercentage(),
		DealType:           d.Type().String(),
		StartDate:          d.StartDate(),
		EndDate:            d.EndDate(),
		MaxQuantity:        d.MaxQuantity(),
		SoldQuantity:       d.SoldQuantity(),
		IsActive:           d.IsActive(),
		Featured:           d.Featured(),
		Category:           d.Category(),
		Tags:               pq.StringArray(d.Tags()),
	}
}

func toDomain(dto DealDTO) (*deal.Deal, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productRef, err := kernel.UUIDFromBytes(dto.ProductRef[:])
	if err != nil {
		return nil, err
	}
	originalPrice, err := kernel.NewMoney(dto.OriginalPrice)
	if err != nil {
		return nil, err
	}
	dealPrice, err := kernel.NewMoney(dto.DealPrice)
	if err != nil {
		return nil, err
	}

	return deal.RestoreDeal(deal.Params{
		ID:                 id,
		ProductRef:         productRef,
		OriginalPrice:      originalPrice,
		DealPrice:          dealPrice,
		DiscountPercentage: dto.DiscountPercentage,
		Type:               deal.Type(dto.DealType),
		StartDate:          dto.StartDate.UTC(),
		EndDate:            dto.EndDate.UTC(),
		MaxQuantity:        dto.MaxQuantity,
		SoldQuantity:       dto.SoldQuantity,
		IsActive:           dto.IsActive,
		Featured:           dto.Featured,
		Category:           dto.Category,
		Tags:               []string(dto.Tags),
	})
}

func reservationFromDomain(r *deal.Reservation) ReservationDTO {
	var orderID *uuid.UUID
	if r.OrderID() != nil {
		raw := r.OrderID().Bytes()
		orderID = &raw
	}
	return ReservationDTO{
		Token:       r.Token().Bytes(),
		DealID:      r.DealID().Bytes(),
		OrderID:     orderID,
		Quantity:    r.Quantity(),
		ReservedAt:  r.ReservedAt(),
		CommittedAt: r.CommittedAt(),
		ReleasedAt:  r.ReleasedAt(),
	}
}

func reservationToDomain(dto ReservationDTO) (*deal.Reservation, error) {
	token, err := kernel.UUIDFromBytes(dto.Token[:])
	if err != nil {
		return nil, err
	}
	dealID, err := kernel.UUIDFromBytes(dto.DealID[:])
	if err != nil {
		return nil, err
	}
	var orderID *kernel.UUID
	if dto.OrderID != nil {
		id, idErr := kernel.UUIDFromBytes(dto.OrderID[:])
		if idErr != nil {
			return nil, idErr
		}
		orderID = &id
	}
	return deal.RestoreReservation(token, dealID, dto.Quantity, orderID, dto.ReservedAt, utc(dto.CommittedAt), utc(dto.ReleasedAt))
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
