package cmd

import (
	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"
	"marketplace/internal/observability"

	"go.uber.org/zap"
)

// Adapters are the outbound dependencies the use cases run against.
type Adapters struct {
	// Writer opens transactions on the primary store.
	Writer ports.UnitOfWorkFactory
	// Reader serves queries; it may point at a replica.
	Reader    ports.UnitOfWorkFactory
	Cache     ports.StockCache
	Publisher ports.OrderEventPublisher
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

type CompositionRoot struct {
	config     Config
	uowFactory ports.UnitOfWorkFactory
	reader     ports.UnitOfWork
	cache      ports.StockCache
	publisher  ports.OrderEventPublisher
	metrics    *observability.Metrics
	logger     *zap.Logger
	policy     assignment.Policy
}

func NewCompositionRoot(config Config, adapters Adapters) (CompositionRoot, error) {
	policy, err := assignment.NewPolicy(config.RiderMaxActiveOrders)
	if err != nil {
		return CompositionRoot{}, err
	}

	reader := adapters.Reader
	if reader == nil {
		reader = adapters.Writer
	}

	return CompositionRoot{
		config:     config,
		uowFactory: adapters.Writer,
		reader:     reader.Create(),
		cache:      adapters.Cache,
		publisher:  adapters.Publisher,
		metrics:    adapters.Metrics,
		logger:     adapters.Logger,
		policy:     policy,
	}, nil
}

func (c *CompositionRoot) uows() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) dealUoWs() commands.DealUoWFactory {
	return FuncDealUoWFactory(func() commands.DealUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.uows(), c.cache, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.uows(), c.cache, c.publisher, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateAssignRiderCommandHandler() commands.AssignRiderCommandHandler {
	return commands.NewAssignRiderCommandHandler(c.uows(), c.policy, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateReleaseAssignmentCommandHandler() commands.ReleaseAssignmentCommandHandler {
	return commands.NewReleaseAssignmentCommandHandler(c.uows(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCreateDealCommandHandler() commands.CreateDealCommandHandler {
	return commands.NewCreateDealCommandHandler(c.dealUoWs(), c.logger)
}

func (c *CompositionRoot) CreateReserveDealCommandHandler() commands.ReserveDealCommandHandler {
	return commands.NewReserveDealCommandHandler(c.dealUoWs(), c.cache, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCommitReservationCommandHandler() commands.CommitReservationCommandHandler {
	return commands.NewCommitReservationCommandHandler(c.dealUoWs(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateReleaseReservationCommandHandler() commands.ReleaseReservationCommandHandler {
	return commands.NewReleaseReservationCommandHandler(c.dealUoWs(), c.cache, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateExpireDealsCommandHandler() commands.ExpireDealsCommandHandler {
	return commands.NewExpireDealsCommandHandler(c.dealUoWs(), c.cache, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.reader.OrderRepository(), c.reader.AssignmentRepository())
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.reader.OrderRepository())
}

func (c *CompositionRoot) CreateGetDealSnapshotQueryHandler() queries.GetDealSnapshotQueryHandler {
	return queries.NewGetDealSnapshotQueryHandler(c.reader.DealRepository(), c.cache, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		PlaceOrder:           c.CreatePlaceOrderCommandHandler(),
		TransitionOrder:      c.CreateTransitionOrderCommandHandler(),
		AssignRider:          c.CreateAssignRiderCommandHandler(),
		ReleaseAssignment:    c.CreateReleaseAssignmentCommandHandler(),
		CreateDeal:           c.CreateCreateDealCommandHandler(),
		ReserveDeal:          c.CreateReserveDealCommandHandler(),
		CommitReservation:    c.CreateCommitReservationCommandHandler(),
		ReleaseReservation:   c.CreateReleaseReservationCommandHandler(),
		GetOrderStatus:       c.CreateGetOrderStatusQueryHandler(),
		GetUncompletedOrders: c.CreateGetUncompletedOrdersQueryHandler(),
		GetDealSnapshot:      c.CreateGetDealSnapshotQueryHandler(),
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateExpireDealsCommandHandler(), c.config.DealExpireSchedule, c.logger)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncDealUoWFactory func() commands.DealUoW

func (f FuncDealUoWFactory) Create() commands.DealUoW {
	return f()
}
