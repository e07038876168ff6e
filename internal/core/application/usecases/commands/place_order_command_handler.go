package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PlaceOrderResult describes the stored order.
type PlaceOrderResult struct {
	OrderID           kernel.UUID
	Status            order.Status
	Total             kernel.Money
	ReservationTokens []kernel.UUID
}

// PlaceOrderCommandHandler stores a new pending order and reserves deal stock for its deal
// lines in the same transaction.
//
// Either every deal line is reserved and the order is stored, or nothing is: a refused
// reservation rolls back the reservations already taken for earlier lines.
//
// Example:
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, stockCache, metrics, logger)
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("order %s is %s, total %s\n", result.OrderID, result.Status, result.Total)
type PlaceOrderCommandHandler struct {
	uowFactory UoWFactory
	cache      ports.StockCache
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
// cache and metrics may be nil.
func NewPlaceOrderCommandHandler(
	uowFactory UoWFactory,
	cache ports.StockCache,
	metrics *observability.Metrics,
	log *zap.Logger,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "place_order")),
	}
}

// Handle reserves stock for every deal line, stores the order in pending status and binds the
// reservations to it.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (result PlaceOrderResult, err error) {
	ctx, span := tracer.Start(ctx, "PlaceOrder", trace.WithAttributes(attribute.String("order.id", cmd.OrderID().String())))
	defer func() { observability.EndSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return PlaceOrderResult{}, err
	}

	now := time.Now().UTC()
	aggregate, err := order.NewOrder(cmd.OrderID(), cmd.VendorID(), cmd.CustomerID(), cmd.Items(), cmd.SpecialInstructions(), now)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return PlaceOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	dealRepo := uow.DealRepository()
	tokens := make([]kernel.UUID, 0)
	for _, item := range aggregate.Items() {
		if item.DealID() == nil {
			continue
		}
		reservation, reserveErr := dealRepo.Reserve(ctx, *item.DealID(), item.Quantity(), kernel.NewUUID(), now)
		h.metrics.ObserveReservation("reserve", reserveErr)
		if reserveErr != nil {
			logOutcome(h.logger, "order placement refused", reserveErr,
				zap.Stringer("order_id", aggregate.ID()), zap.Stringer("deal_id", *item.DealID()))
			return PlaceOrderResult{}, reserveErr
		}
		tokens = append(tokens, reservation.Token())
	}

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return PlaceOrderResult{}, err
	}

	if len(tokens) > 0 {
		if err = dealRepo.BindToOrder(ctx, tokens, aggregate.ID()); err != nil {
			return PlaceOrderResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return PlaceOrderResult{}, err
	}

	invalidateDeals(ctx, h.cache, h.logger, aggregate.DealIDs()...)
	h.logger.Info("order placed",
		zap.Stringer("order_id", aggregate.ID()),
		zap.Int("reservations", len(tokens)),
		zap.Stringer("total", aggregate.Total()))

	return PlaceOrderResult{
		OrderID:           aggregate.ID(),
		Status:            aggregate.Status(),
		Total:             aggregate.Total(),
		ReservationTokens: tokens,
	}, nil
}

// invalidateDeals drops cached snapshots of the given deals. Failures only cost freshness.
func invalidateDeals(ctx context.Context, cache ports.StockCache, log *zap.Logger, dealIDs ...kernel.UUID) {
	if cache == nil || len(dealIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, dealIDs...); err != nil {
		log.Warn("stock cache invalidation failed", zap.Error(err), zap.Int("deals", len(dealIDs)))
	}
}
