package commands

import (
	"context"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

// CreateDealCommandHandler stores a new active deal with nothing sold.
type CreateDealCommandHandler struct {
	uowFactory DealUoWFactory
	logger     *zap.Logger
}

func NewCreateDealCommandHandler(uowFactory DealUoWFactory, log *zap.Logger) CreateDealCommandHandler {
	return CreateDealCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.OrNop(log).With(zap.String("component", "create_deal")),
	}
}

// Handle returns the id of the stored deal.
func (h CreateDealCommandHandler) Handle(ctx context.Context, cmd CreateDealCommand) (id kernel.UUID, err error) {
	ctx, span := tracer.Start(ctx, "CreateDeal")
	defer func() { observability.EndSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	aggregate, err := deal.NewDeal(cmd.Params())
	if err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DealRepository().Add(ctx, aggregate); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	h.logger.Info("deal created",
		zap.Stringer("deal_id", aggregate.ID()),
		zap.Int("max_quantity", aggregate.MaxQuantity()),
		zap.Time("end_date", aggregate.EndDate()))

	return aggregate.ID(), nil
}
