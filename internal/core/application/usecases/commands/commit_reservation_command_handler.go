package commands

import (
	"context"
	"time"

	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

// CommitReservationCommandHandler makes a reservation final. Committing twice is a no-op.
type CommitReservationCommandHandler struct {
	uowFactory DealUoWFactory
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewCommitReservationCommandHandler(
	uowFactory DealUoWFactory,
	metrics *observability.Metrics,
	log *zap.Logger,
) CommitReservationCommandHandler {
	return CommitReservationCommandHandler{
		uowFactory: uowFactory,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "commit_reservation")),
	}
}

// Handle fails with errs.ErrAlreadyReleased for released reservations and
// errs.ErrObjectNotFound for unknown tokens.
func (h CommitReservationCommandHandler) Handle(ctx context.Context, cmd CommitReservationCommand) (err error) {
	ctx, span := tracer.Start(ctx, "CommitReservation")
	defer func() {
		h.metrics.ObserveReservation("commit", err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "reservation commit refused", err, zap.Stringer("token", cmd.Token()))
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

	if err = uow.DealRepository().Commit(ctx, cmd.Token(), time.Now().UTC()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
