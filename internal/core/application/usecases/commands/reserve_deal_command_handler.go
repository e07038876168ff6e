package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ReserveDealCommandHandler takes stock out of a deal under a fresh reservation token.
//
// The repository performs the availability check and the increment as one conditional
// write, so two callers racing for the last unit get one token and one errs.ErrOutOfStock.
type ReserveDealCommandHandler struct {
	uowFactory DealUoWFactory
	cache      ports.StockCache
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewReserveDealCommandHandler creates a handler for deal reservations.
func NewReserveDealCommandHandler(
	uowFactory DealUoWFactory,
	cache ports.StockCache,
	metrics *observability.Metrics,
	log *zap.Logger,
) ReserveDealCommandHandler {
	return ReserveDealCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "reserve_deal")),
	}
}

// Handle returns the reservation token, or errs.ErrOutOfStock, errs.ErrDealExpired or
// errs.ErrObjectNotFound.
func (h ReserveDealCommandHandler) Handle(ctx context.Context, cmd ReserveDealCommand) (token kernel.UUID, err error) {
	ctx, span := tracer.Start(ctx, "ReserveDeal", trace.WithAttributes(
		attribute.String("deal.id", cmd.DealID().String()),
		attribute.Int("deal.quantity", cmd.Quantity()),
	))
	defer func() {
		h.metrics.ObserveReservation("reserve", err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "reservation refused", err,
			zap.Stringer("deal_id", cmd.DealID()), zap.Int("quantity", cmd.Quantity()))
	}()

	if err = cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	reservation, err := uow.DealRepository().Reserve(ctx, cmd.DealID(), cmd.Quantity(), kernel.NewUUID(), time.Now().UTC())
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	invalidateDeals(ctx, h.cache, h.logger, cmd.DealID())
	h.logger.Debug("deal reserved",
		zap.Stringer("deal_id", cmd.DealID()),
		zap.Stringer("token", reservation.Token()),
		zap.Int("quantity", cmd.Quantity()))

	return reservation.Token(), nil
}
