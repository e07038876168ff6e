package queries

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetDealSnapshotQueryHandler serves deal snapshots from the stock cache, falling back to
// the reader connection and refilling the cache on a miss.
//
// Derived values are recomputed on every call, so a cached snapshot never reports a deal as
// valid after its end date.
type GetDealSnapshotQueryHandler struct {
	deals  DealReader
	cache  ports.StockCache
	logger *zap.Logger
}

// NewGetDealSnapshotQueryHandler creates the handler. cache may be nil.
func NewGetDealSnapshotQueryHandler(deals DealReader, cache ports.StockCache, log *zap.Logger) GetDealSnapshotQueryHandler {
	return GetDealSnapshotQueryHandler{
		deals:  deals,
		cache:  cache,
		logger: logger.OrNop(log).With(zap.String("component", "deal_snapshot")),
	}
}

// Handle fails with errs.ErrObjectNotFound for unknown deals.
func (h GetDealSnapshotQueryHandler) Handle(ctx context.Context, query GetDealSnapshotQuery) (GetDealSnapshotQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDealSnapshotQueryResponse{}, err
	}

	now := time.Now().UTC()

	if snapshot, ok := h.fromCache(ctx, query.DealID()); ok {
		if restored, err := restoreSnapshot(snapshot); err == nil {
			return respond(snapshot, restored, now, true), nil
		}
		h.logger.Warn("discarding unreadable cached deal", zap.Stringer("deal_id", query.DealID()))
	}

	d, err := h.deals.Get(ctx, query.DealID())
	if err != nil {
		return GetDealSnapshotQueryResponse{}, err
	}

	snapshot := SnapshotOf(d)
	if h.cache != nil {
		if err = h.cache.Set(ctx, snapshot); err != nil {
			h.logger.Warn("stock cache write failed", zap.Error(err), zap.Stringer("deal_id", d.ID()))
		}
	}

	return respond(snapshot, d, now, false), nil
}

func (h GetDealSnapshotQueryHandler) fromCache(ctx context.Context, id kernel.UUID) (ports.DealSnapshot, bool) {
	if h.cache == nil {
		return ports.DealSnapshot{}, false
	}
	snapshot, ok, err := h.cache.Get(ctx, id)
	if err != nil {
		h.logger.Warn("stock cache read failed", zap.Error(err), zap.Stringer("deal_id", id))
		return ports.DealSnapshot{}, false
	}
	return snapshot, ok
}

func respond(snapshot ports.DealSnapshot, d *deal.Deal, now time.Time, cached bool) GetDealSnapshotQueryResponse {
	return GetDealSnapshotQueryResponse{
		DealSnapshot:      snapshot,
		RemainingQuantity: d.RemainingQuantity(),
		IsExpired:         d.IsExpired(now),
		IsValid:           d.IsValid(now),
		AsOf:              now,
		FromCache:         cached,
	}
}

// SnapshotOf flattens d into its cacheable form.
func SnapshotOf(d *deal.Deal) ports.DealSnapshot {
	return ports.DealSnapshot{
		ID:                 d.ID().String(),
		ProductRef:         d.ProductRef().String(),
		OriginalPrice:      d.OriginalPrice().String(),
		DealPrice:          d.DealPrice().String(),
		DiscountPercentage: d.DiscountPercentage().String(),
		Type:               d.Type().String(),
		StartDate:          d.StartDate(),
		EndDate:            d.EndDate(),
		MaxQuantity:        d.MaxQuantity(),
		SoldQuantity:       d.SoldQuantity(),
		IsActive:           d.IsActive(),
		Featured:           d.Featured(),
		Category:           d.Category(),
		Tags:               d.Tags(),
	}
}

func restoreSnapshot(s ports.DealSnapshot) (*deal.Deal, error) {
	id, err := kernel.UUIDFromString(s.ID)
	if err != nil {
		return nil, err
	}
	productRef, err := kernel.UUIDFromString(s.ProductRef)
	if err != nil {
		return nil, err
	}
	originalPrice, err := kernel.MoneyFromString(s.OriginalPrice)
	if err != nil {
		return nil, err
	}
	dealPrice, err := kernel.MoneyFromString(s.DealPrice)
	if err != nil {
		return nil, err
	}
	discount, err := decimal.NewFromString(s.DiscountPercentage)
	if err != nil {
		return nil, err
	}

	return deal.RestoreDeal(deal.Params{
		ID:                 id,
		ProductRef:         productRef,
		OriginalPrice:      originalPrice,
		DealPrice:          dealPrice,
		DiscountPercentage: discount,
		Type:               deal.Type(s.Type),
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		MaxQuantity:        s.MaxQuantity,
		SoldQuantity:       s.SoldQuantity,
		IsActive:           s.IsActive,
		Featured:           s.Featured,
		Category:           s.Category,
		Tags:               s.Tags,
	})
}
