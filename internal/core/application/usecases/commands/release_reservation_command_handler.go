package commands

import (
	"context"
	"time"

	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

// ReleaseReservationCommandHandler closes a reservation and restocks its deal in one step.
//
// A second release of the same token fails with errs.ErrAlreadyReleased and changes nothing,
// so callers retrying a compensation can treat that error as success.
type ReleaseReservationCommandHandler struct {
	uowFactory DealUoWFactory
	cache      ports.StockCache
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewReleaseReservationCommandHandler(
	uowFactory DealUoWFactory,
	cache ports.StockCache,
	metrics *observability.Metrics,
	log *zap.Logger,
) ReleaseReservationCommandHandler {
	return ReleaseReservationCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "release_reservation")),
	}
}

func (h ReleaseReservationCommandHandler) Handle(ctx context.Context, cmd ReleaseReservationCommand) (err error) {
	ctx, span := tracer.Start(ctx, "ReleaseReservation")
	defer func() {
		h.metrics.ObserveReservation("release", err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "reservation release refused", err, zap.Stringer("token", cmd.Token()))
	}()

	if err = cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	reservation, err := uow.DealRepository().Release(ctx, cmd.Token(), time.Now().UTC())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	invalidateDeals(ctx, h.cache, h.logger, reservation.DealID())
	return nil
}
