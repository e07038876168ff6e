package commands

import (
	"context"

	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

// ExpireDealsCommandHandler runs the expiry sweep. It only clears isActive; sold and
// maximum quantities stay as they were.
type ExpireDealsCommandHandler struct {
	uowFactory DealUoWFactory
	cache      ports.StockCache
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewExpireDealsCommandHandler(
	uowFactory DealUoWFactory,
	cache ports.StockCache,
	metrics *observability.Metrics,
	log *zap.Logger,
) ExpireDealsCommandHandler {
	return ExpireDealsCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		metrics:    metrics,
		logger:     logger.OrNop(log).With(zap.String("component", "expire_deals")),
	}
}

// Handle returns how many deals were retired.
func (h ExpireDealsCommandHandler) Handle(ctx context.Context, cmd ExpireDealsCommand) (retired int, err error) {
	ctx, span := tracer.Start(ctx, "ExpireDeals")
	defer func() { observability.EndSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ids, err := uow.DealRepository().DeactivateExpired(ctx, cmd.Now())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	invalidateDeals(ctx, h.cache, h.logger, ids...)
	h.metrics.AddExpiredDeals(len(ids))
	if len(ids) > 0 {
		h.logger.Info("deals expired", zap.Int("count", len(ids)), zap.Time("now", cmd.Now()))
	}

	return len(ids), nil
}
