package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// DealSnapshot is the cached, read-only view of a deal.
type DealSnapshot struct {
	ID                 string    `json:"id"`
	ProductRef         string    `json:"productRef"`
	OriginalPrice      string    `json:"originalPrice"`
	DealPrice          string    `json:"dealPrice"`
	DiscountPercentage string    `json:"discountPercentage"`
	Type               string    `json:"dealType"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	MaxQuantity        int       `json:"maxQuantity"`
	SoldQuantity       int       `json:"soldQuantity"`
	IsActive           bool      `json:"isActive"`
	Featured           bool      `json:"featured"`
	Category           string    `json:"category"`
	Tags               []string  `json:"tags"`
}

// StockCache keeps deal snapshots close to readers. Entries are invalidated after every
// write that changes a deal, so a hit is at most one TTL stale.
type StockCache interface {
	// Get returns the snapshot and true on a hit.
	Get(ctx context.Context, dealID kernel.UUID) (DealSnapshot, bool, error)
	Set(ctx context.Context, snapshot DealSnapshot) error
	Invalidate(ctx context.Context, dealIDs ...kernel.UUID) error
}
