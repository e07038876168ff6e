package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/guard"
)

var ErrGetDealSnapshotQueryIsNotConstructed = errors.New(
	"GetDealSnapshotQuery must be created via NewGetDealSnapshotQuery constructor",
)

// GetDealSnapshotQuery reads the stock position of a deal.
type GetDealSnapshotQuery struct {
	dealID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetDealSnapshotQuery(dealID kernel.UUID) (GetDealSnapshotQuery, error) {
	if err := dealID.Validate(); err != nil {
		return GetDealSnapshotQuery{}, err
	}
	return GetDealSnapshotQuery{dealID: dealID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDealSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetDealSnapshotQueryIsNotConstructed)
}

func (q GetDealSnapshotQuery) DealID() kernel.UUID { return q.dealID }

// GetDealSnapshotQueryResponse is the stored deal plus the values derived from it at AsOf.
type GetDealSnapshotQueryResponse struct {
	ports.DealSnapshot

	RemainingQuantity int
	IsExpired         bool
	IsValid           bool
	AsOf              time.Time
	FromCache         bool
}
