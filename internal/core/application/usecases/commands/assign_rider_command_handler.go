package commands

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AssignRiderCommandHandler opens a rider assignment on a non-terminal order.
//
// Business rules:
//   - an order has at most one active rider
//   - a rider carries at most policy.MaxActive() orders at once
//   - terminal orders cannot be assigned
type AssignRiderCommandHandler struct {
	uowFactory UoWFactory
	policy     assignment.Policy
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewAssignRiderCommandHandler(
	uowFactory UoWFactory,
	policy assignment.Policy,
	metrics *observability.Metrics,
	log *zap.Logger,
) AssignRiderCommandHandler {
	return AssignRiderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "assign_rider")),
	}
}

// Handle returns the id of the new assignment record. It fails with errs.ErrObjectNotFound,
// errs.ErrInvalidTransition for terminal orders, errs.ErrAlreadyAssigned or errs.ErrRiderBusy.
func (h AssignRiderCommandHandler) Handle(ctx context.Context, cmd AssignRiderCommand) (id kernel.UUID, err error) {
	ctx, span := tracer.Start(ctx, "AssignRider", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("rider.id", cmd.RiderID().String()),
	))
	defer func() {
		h.metrics.ObserveAssignment("assign", err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "rider assignment refused", err,
			zap.Stringer("order_id", cmd.OrderID()), zap.Stringer("rider_id", cmd.RiderID()))
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

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}
	if aggregate.Status().IsTerminal() {
		return kernel.UUID{}, errs.NewDomainError(errs.ErrInvalidTransition,
			fmt.Sprintf("order %s is %s and takes no rider", aggregate.ID(), aggregate.Status()))
	}

	record, err := assignment.NewRecord(kernel.NewUUID(), aggregate.ID(), cmd.RiderID(), time.Now().UTC())
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.AssignmentRepository().Assign(ctx, record, h.policy); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	h.logger.Info("rider assigned",
		zap.Stringer("order_id", aggregate.ID()),
		zap.Stringer("rider_id", cmd.RiderID()),
		zap.Stringer("assignment_id", record.ID()))

	return record.ID(), nil
}
