package commands_test

import (
	"context"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CompareAndSetStatus(
	ctx context.Context,
	o *order.Order,
	expected order.Status,
	entry order.HistoryEntry,
) error {
	args := m.Called(ctx, o, expected, entry)
	return args.Error(0)
}

func (m *MockOrderRepository) GetAllUncompleted(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDealRepository struct{ mock.Mock }

func (m *MockDealRepository) Add(ctx context.Context, d *deal.Deal) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDealRepository) Get(ctx context.Context, id kernel.UUID) (*deal.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Deal), args.Error(1)
}

func (m *MockDealRepository) Reserve(
	ctx context.Context,
	dealID kernel.UUID,
	quantity int,
	token kernel.UUID,
	now time.Time,
) (*deal.Reservation, error) {
	args := m.Called(ctx, dealID, quantity, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Reservation), args.Error(1)
}

func (m *MockDealRepository) GetReservation(ctx context.Context, token kernel.UUID) (*deal.Reservation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Reservation), args.Error(1)
}

func (m *MockDealRepository) Commit(ctx context.Context, token kernel.UUID, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}

func (m *MockDealRepository) Release(ctx context.Context, token kernel.UUID, at time.Time) (*deal.Reservation, error) {
	args := m.Called(ctx, token, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Reservation), args.Error(1)
}

func (m *MockDealRepository) BindToOrder(ctx context.Context, tokens []kernel.UUID, orderID kernel.UUID) error {
	args := m.Called(ctx, tokens, orderID)
	return args.Error(0)
}

func (m *MockDealRepository) GetOpenForOrder(ctx context.Context, orderID kernel.UUID) ([]*deal.Reservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deal.Reservation), args.Error(1)
}

func (m *MockDealRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]kernel.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Assign(ctx context.Context, r *assignment.Record, policy assignment.Policy) error {
	args := m.Called(ctx, r, policy)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Release(ctx context.Context, orderID kernel.UUID, at time.Time) (*assignment.Record, error) {
	args := m.Called(ctx, orderID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Record), args.Error(1)
}

func (m *MockAssignmentRepository) GetActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Record), args.Error(1)
}

func (m *MockAssignmentRepository) LockActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Record), args.Error(1)
}

func (m *MockAssignmentRepository) GetHistory(ctx context.Context, orderID kernel.UUID) ([]*assignment.Record, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.Record), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DealRepository() ports.DealRepository {
	args := m.Called()
	return args.Get(0).(ports.DealRepository)
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDealUoWFactory struct{ mock.Mock }

func (m *MockDealUoWFactory) Create() commands.DealUoW {
	args := m.Called()
	return args.Get(0).(commands.DealUoW)
}

type MockStockCache struct{ mock.Mock }

func (m *MockStockCache) Get(ctx context.Context, dealID kernel.UUID) (ports.DealSnapshot, bool, error) {
	args := m.Called(ctx, dealID)
	return args.Get(0).(ports.DealSnapshot), args.Bool(1), args.Error(2)
}

func (m *MockStockCache) Set(ctx context.Context, snapshot ports.DealSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStockCache) Invalidate(ctx context.Context, dealIDs ...kernel.UUID) error {
	args := m.Called(ctx, dealIDs)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishStatusChanged(ctx context.Context, event order.StatusChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
