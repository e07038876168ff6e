package commands

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TransitionOrderResult is the status the order ended in and the history entry appended.
type TransitionOrderResult struct {
	From         order.Status
	Status       order.Status
	HistoryEntry order.HistoryEntry
}

// TransitionOrderCommandHandler moves an order along one edge of the status table.
//
// Within one transaction it:
//   - loads the order and the rider currently assigned to it
//   - asks the authorization policy whether the actor may make the move
//   - applies the move to the aggregate
//   - stores it with a write conditioned on the status it observed
//   - on rejection or cancellation, releases every open deal reservation of the order
//   - on any terminal status, releases the active rider assignment
//
// After commit it invalidates cached deal snapshots and publishes an OrderStatusChanged event.
// Neither of those can undo the transition.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(uowFactory, cache, publisher, metrics, logger)
//	result, err := handler.Handle(ctx, cmd)
//	var conflict *order.StatusConflictError
//	if errors.As(err, &conflict) {
//	    // somebody else moved the order first, conflict.Actual is the fresh status
//	}
type TransitionOrderCommandHandler struct {
	uowFactory UoWFactory
	policy     services.AuthorizationPolicy
	cache      ports.StockCache
	publisher  ports.OrderEventPublisher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTransitionOrderCommandHandler creates a handler for order transitions.
// cache, publisher and metrics may be nil.
func NewTransitionOrderCommandHandler(
	uowFactory UoWFactory,
	cache ports.StockCache,
	publisher ports.OrderEventPublisher,
	metrics *observability.Metrics,
	log *zap.Logger,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     services.NewAuthorizationPolicy(),
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "transition_order")),
	}
}

// Handle applies the transition described by cmd.
//
// Fails with errs.ErrObjectNotFound, errs.ErrInvalidTransition, errs.ErrUnauthorized,
// errs.ErrMissingReason or, when the order moved concurrently, an *order.StatusConflictError
// wrapping errs.ErrConflict. On failure nothing is stored.
func (h TransitionOrderCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (result TransitionOrderResult, err error) {
	ctx, span := tracer.Start(ctx, "TransitionOrder", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("order.target_status", cmd.Target().String()),
		attribute.String("actor.role", cmd.Role().String()),
	))
	defer func() {
		h.metrics.ObserveTransition(cmd.Target().String(), err)
		observability.EndSpan(span, err)
		logOutcome(h.logger, "order transition refused", err,
			zap.Stringer("order_id", cmd.OrderID()),
			zap.Stringer("target", cmd.Target()),
			zap.Stringer("role", cmd.Role()),
			zap.Stringer("acting_id", cmd.ActingID()))
	}()

	if err = cmd.Validate(); err != nil {
		return TransitionOrderResult{}, err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return TransitionOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	dealRepo := uow.DealRepository()
	assignmentRepo := uow.AssignmentRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	activeRider, err := activeRiderOf(ctx, assignmentRepo, aggregate.ID())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	from := aggregate.Status()
	binding := services.BindingFor(aggregate, cmd.ActingID(), activeRider)
	if err = h.policy.Authorize(cmd.Role(), binding, from, cmd.Target()); err != nil {
		return TransitionOrderResult{}, err
	}

	entry, err := aggregate.Transition(cmd.Target(), cmd.Actor(), cmd.Reason(), now)
	if err != nil {
		return TransitionOrderResult{}, err
	}

	if err = orderRepo.CompareAndSetStatus(ctx, aggregate, from, entry); err != nil {
		return TransitionOrderResult{}, err
	}

	var touchedDeals []kernel.UUID
	if aggregate.Status() == order.Rejected || aggregate.Status() == order.Cancelled {
		if touchedDeals, err = h.releaseReservations(ctx, dealRepo, aggregate.ID(), now); err != nil {
			return TransitionOrderResult{}, err
		}
	}

	if aggregate.Status().IsTerminal() {
		if err = h.releaseAssignment(ctx, assignmentRepo, aggregate.ID(), now); err != nil {
			return TransitionOrderResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionOrderResult{}, err
	}

	h.logger.Info("order transitioned",
		zap.Stringer("order_id", aggregate.ID()),
		zap.Stringer("from", from),
		zap.Stringer("to", aggregate.Status()),
		zap.Stringer("role", cmd.Role()))

	invalidateDeals(ctx, h.cache, h.logger, touchedDeals...)
	h.publish(ctx, order.NewStatusChanged(aggregate, from, entry))

	return TransitionOrderResult{From: from, Status: aggregate.Status(), HistoryEntry: entry}, nil
}

// releaseReservations returns the stock of every open reservation of orderID.
// A reservation released concurrently is skipped.
func (h TransitionOrderCommandHandler) releaseReservations(
	ctx context.Context,
	dealRepo ports.DealRepository,
	orderID kernel.UUID,
	at time.Time,
) ([]kernel.UUID, error) {
	open, err := dealRepo.GetOpenForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	dealIDs := make([]kernel.UUID, 0, len(open))
	for _, reservation := range open {
		_, releaseErr := dealRepo.Release(ctx, reservation.Token(), at)
		h.metrics.ObserveReservation("release", releaseErr)
		if errors.Is(releaseErr, errs.ErrAlreadyReleased) {
			h.logger.Info("reservation already released",
				zap.Stringer("order_id", orderID), zap.Stringer("token", reservation.Token()))
			continue
		}
		if releaseErr != nil {
			return nil, releaseErr
		}
		dealIDs = append(dealIDs, reservation.DealID())
	}
	return dealIDs, nil
}

func (h TransitionOrderCommandHandler) releaseAssignment(
	ctx context.Context,
	assignmentRepo ports.AssignmentRepository,
	orderID kernel.UUID,
	at time.Time,
) error {
	_, err := assignmentRepo.Release(ctx, orderID, at)
	h.metrics.ObserveAssignment("release", err)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	return err
}

func (h TransitionOrderCommandHandler) publish(ctx context.Context, event order.StatusChanged) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishStatusChanged(ctx, event); err != nil {
		h.logger.Warn("order status event not published",
			zap.Error(err), zap.Stringer("order_id", event.OrderID), zap.Stringer("to", event.To))
	}
}

// activeRiderOf returns the rider currently assigned to orderID, or nil. The binding stays
// locked for the rest of the unit of work.
func activeRiderOf(ctx context.Context, repo ports.AssignmentRepository, orderID kernel.UUID) (*kernel.UUID, error) {
	record, err := repo.LockActive(ctx, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	riderID := record.RiderID()
	return &riderID, nil
}
