package commands

import (
	"context"
	"time"

	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

// ReleaseAssignmentCommandHandler closes the active assignment of an order. The closed record
// stays in the assignment history.
type ReleaseAssignmentCommandHandler struct {
	uowFactory UoWFactory
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewReleaseAssignmentCommandHandler(
	uowFactory UoWFactory,
	metrics *observability.Metrics,
	log *zap.Logger,
) ReleaseAssignmentCommandHandler {
	return ReleaseAssignmentCommandHandler{
		uowFactory: uowFactory,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "release_assignment")),
	}
}

// Handle fails with errs.ErrObjectNotFound when the order has no active rider.
func (h ReleaseAssignmentCommandHandler) Handle(ctx context.Context, cmd ReleaseAssignmentCommand) (err error) {
	ctx, span := tracer.Start(ctx, "ReleaseAssignment")
	defer func() {
		h.metrics.ObserveAssignment("release", err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "rider release refused", err, zap.Stringer("order_id", cmd.OrderID()))
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

	record, err := uow.AssignmentRepository().Release(ctx, cmd.OrderID(), time.Now().UTC())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.Info("rider released",
		zap.Stringer("order_id", cmd.OrderID()), zap.Stringer("rider_id", record.RiderID()))
	return nil
}
