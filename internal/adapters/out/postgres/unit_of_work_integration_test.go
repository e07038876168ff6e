package postgres_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	postgres_adapter "marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/pgtest"
	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

// UnitOfWorkIntegrationTestSuite exercises the unit of work and the three repositories
// against a real PostgreSQL schema built by the goose migrations.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	factory  *postgres_adapter.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(database.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "second begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackUndoesReservationsAndOrder() {
	ctx := context.Background()
	d := suite.addDeal(5)

	uow := suite.factory.CreateGorm()
	suite.Require().NoError(uow.Begin(ctx))

	reservation, err := uow.DealRepository().Reserve(ctx, d.ID(), 3, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	o := suite.newOrder(d.ID())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.DealRepository().BindToOrder(ctx, []kernel.UUID{reservation.Token()}, o.ID()))
	suite.Len(uow.TrackedAggregates(), 2)

	suite.Require().NoError(uow.Rollback(ctx))
	suite.Empty(uow.TrackedAggregates())

	stored, err := suite.factory.Create().DealRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(0, stored.SoldQuantity())

	_, err = suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RefusedReserveKeepsTransactionUsable() {
	ctx := context.Background()
	d := suite.addDeal(1)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	_, err := uow.DealRepository().Reserve(ctx, d.ID(), 2, kernel.NewUUID(), time.Now().UTC())
	suite.Require().ErrorIs(err, errs.ErrOutOfStock)

	_, err = uow.DealRepository().Reserve(ctx, d.ID(), 1, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.Commit(ctx))

	stored, err := suite.factory.Create().DealRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(1, stored.SoldQuantity())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDealRepository_ConcurrentReservesNeverOversell() {
	ctx := context.Background()
	d := suite.addDeal(3)

	var granted, refused atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for range 12 {
		g.Go(func() error {
			uow := suite.factory.Create()
			if err := uow.Begin(gctx); err != nil {
				return err
			}
			defer func() { _ = uow.Rollback(gctx) }()

			_, err := uow.DealRepository().Reserve(gctx, d.ID(), 1, kernel.NewUUID(), time.Now().UTC())
			if errs.KindOf(err) == errs.KindOutOfStock {
				refused.Add(1)
				return nil
			}
			if err != nil {
				return err
			}
			granted.Add(1)
			return uow.Commit(gctx)
		})
	}
	suite.Require().NoError(g.Wait())

	suite.EqualValues(3, granted.Load())
	suite.EqualValues(9, refused.Load())

	stored, err := suite.factory.Create().DealRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(3, stored.SoldQuantity())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDealRepository_ReleaseRestocksOnce() {
	ctx := context.Background()
	d := suite.addDeal(4)
	repo := suite.factory.Create().DealRepository()

	reservation, err := repo.Reserve(ctx, d.ID(), 4, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)

	released, err := repo.Release(ctx, reservation.Token(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.True(released.IsReleased())
	suite.Equal(4, released.Quantity())

	_, err = repo.Release(ctx, reservation.Token(), time.Now().UTC())
	suite.Require().ErrorIs(err, errs.ErrAlreadyReleased)
	suite.Require().ErrorIs(repo.Commit(ctx, reservation.Token(), time.Now().UTC()), errs.ErrAlreadyReleased)

	_, err = repo.Release(ctx, kernel.NewUUID(), time.Now().UTC())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	stored, err := repo.Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(0, stored.SoldQuantity())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDealRepository_CommitIsIdempotent() {
	ctx := context.Background()
	d := suite.addDeal(2)
	repo := suite.factory.Create().DealRepository()

	reservation, err := repo.Reserve(ctx, d.ID(), 1, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)

	suite.Require().NoError(repo.Commit(ctx, reservation.Token(), time.Now().UTC()))
	suite.Require().NoError(repo.Commit(ctx, reservation.Token(), time.Now().UTC()))

	stored, err := repo.GetReservation(ctx, reservation.Token())
	suite.Require().NoError(err)
	suite.True(stored.IsCommitted())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDealRepository_RefusalsAreClassified() {
	ctx := context.Background()
	repo := suite.factory.Create().DealRepository()
	now := time.Now().UTC()

	_, err := repo.Reserve(ctx, kernel.NewUUID(), 1, kernel.NewUUID(), now)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	d := suite.addDeal(2)
	_, err = repo.Reserve(ctx, d.ID(), 1, kernel.NewUUID(), d.StartDate().Add(-time.Minute))
	suite.Require().ErrorIs(err, errs.ErrDealNotStarted)
	suite.Equal(errs.KindDealNotStarted, errs.KindOf(err))

	_, err = repo.Reserve(ctx, d.ID(), 1, kernel.NewUUID(), d.EndDate().Add(time.Minute))
	suite.Require().ErrorIs(err, errs.ErrDealExpired)
	suite.Equal(errs.KindDealExpired, errs.KindOf(err))

	retired, err := repo.DeactivateExpired(ctx, d.EndDate().Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(retired, 1)
	suite.True(retired[0].IsEqual(d.ID()))

	_, err = repo.Reserve(ctx, d.ID(), 1, kernel.NewUUID(), now)
	suite.Require().ErrorIs(err, errs.ErrDealExpired)

	retired, err = repo.DeactivateExpired(ctx, d.EndDate().Add(time.Minute))
	suite.Require().NoError(err)
	suite.Empty(retired)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDealRepository_OpenReservationsForOrder() {
	ctx := context.Background()
	d := suite.addDeal(10)
	o := suite.newOrder(d.ID())
	uow := suite.factory.Create()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	repo := uow.DealRepository()
	first, err := repo.Reserve(ctx, d.ID(), 1, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	second, err := repo.Reserve(ctx, d.ID(), 2, kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(repo.BindToOrder(ctx, []kernel.UUID{first.Token(), second.Token()}, o.ID()))

	_, err = repo.Release(ctx, first.Token(), time.Now().UTC())
	suite.Require().NoError(err)

	open, err := repo.GetOpenForOrder(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().Len(open, 1)
	suite.True(open[0].Token().IsEqual(second.Token()))
	suite.Require().NotNil(open[0].OrderID())
	suite.True(open[0].OrderID().IsEqual(o.ID()))

	err = repo.BindToOrder(ctx, []kernel.UUID{kernel.NewUUID()}, o.ID())
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_StaleTransitionConflicts() {
	ctx := context.Background()
	o := suite.newOrder(kernel.UUID{})
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	repo := suite.factory.Create().OrderRepository()
	first, err := repo.Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := repo.Get(ctx, o.ID())
	suite.Require().NoError(err)

	vendor := order.Actor{Role: order.RoleVendor, ID: o.VendorID()}
	entry, err := first.Transition(order.Rejected, vendor, "kitchen closed", time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(repo.CompareAndSetStatus(ctx, first, order.Pending, entry))

	entry, err = second.Transition(order.Accepted, vendor, "", time.Now().UTC())
	suite.Require().NoError(err)
	err = repo.CompareAndSetStatus(ctx, second, order.Pending, entry)

	var conflict *order.StatusConflictError
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal(order.Rejected, conflict.Actual)

	stored, err := repo.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Rejected, stored.Status())
	suite.Require().NotNil(stored.RejectionReason())
	suite.Equal("kitchen closed", *stored.RejectionReason())
	suite.Len(stored.History(), 2)
	suite.Equal(o.Total().String(), stored.Total().String())

	uncompleted, err := repo.GetAllUncompleted(ctx)
	suite.Require().NoError(err)
	suite.Empty(uncompleted)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAssignmentRepository_OneRiderPerOrder() {
	ctx := context.Background()
	o := suite.newOrder(kernel.UUID{})
	other := suite.newOrder(kernel.UUID{})
	orders := suite.factory.Create().OrderRepository()
	suite.Require().NoError(orders.Add(ctx, o))
	suite.Require().NoError(orders.Add(ctx, other))

	repo := suite.factory.Create().AssignmentRepository()
	r1, r2 := kernel.NewUUID(), kernel.NewUUID()

	suite.Require().NoError(repo.Assign(ctx, suite.record(o.ID(), r1), assignment.DefaultPolicy()))
	suite.Require().ErrorIs(repo.Assign(ctx, suite.record(o.ID(), r2), assignment.DefaultPolicy()), errs.ErrAlreadyAssigned)
	suite.Require().ErrorIs(repo.Assign(ctx, suite.record(other.ID(), r1), assignment.DefaultPolicy()), errs.ErrRiderBusy)

	_, err := repo.Release(ctx, o.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	_, err = repo.Release(ctx, o.ID(), time.Now().UTC())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	suite.Require().NoError(repo.Assign(ctx, suite.record(o.ID(), r2), assignment.DefaultPolicy()))
	history, err := repo.GetHistory(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Len(history, 2)

	active, err := repo.GetActive(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(active.RiderID().IsEqual(r2))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAssignmentRepository_ConcurrentRidersForOneOrder() {
	ctx := context.Background()
	o := suite.newOrder(kernel.UUID{})
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	var won atomic.Int32
	g := new(errgroup.Group)
	for range 6 {
		g.Go(func() error {
			uow := suite.factory.Create()
			if err := uow.Begin(ctx); err != nil {
				return err
			}
			defer func() { _ = uow.Rollback(ctx) }()

			err := uow.AssignmentRepository().Assign(ctx, suite.record(o.ID(), kernel.NewUUID()), assignment.DefaultPolicy())
			if errs.KindOf(err) == errs.KindAlreadyAssigned {
				return nil
			}
			if err != nil {
				return err
			}
			won.Add(1)
			return uow.Commit(ctx)
		})
	}
	suite.Require().NoError(g.Wait())
	suite.EqualValues(1, won.Load())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAssignmentRepository_LockedBindingHoldsOffRelease() {
	ctx := context.Background()
	o := suite.newOrder(kernel.UUID{})
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))
	rider := kernel.NewUUID()
	suite.Require().NoError(suite.factory.Create().AssignmentRepository().Assign(ctx, suite.record(o.ID(), rider), assignment.DefaultPolicy()))

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	defer func() { _ = holder.Rollback(ctx) }()

	active, err := holder.AssignmentRepository().LockActive(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(active.RiderID().IsEqual(rider))

	released := make(chan error, 1)
	go func() {
		_, err := suite.factory.Create().AssignmentRepository().Release(ctx, o.ID(), time.Now().UTC())
		released <- err
	}()

	select {
	case err := <-released:
		suite.FailNow("release went through while the binding was locked", "err: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(holder.Commit(ctx))

	select {
	case err := <-released:
		suite.Require().NoError(err)
	case <-time.After(5 * time.Second):
		suite.FailNow("release did not resume after commit")
	}

	_, err = suite.factory.Create().AssignmentRepository().LockActive(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAssignmentRepository_LockActiveSeesCommittedRelease() {
	ctx := context.Background()
	o := suite.newOrder(kernel.UUID{})
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))
	first, second := kernel.NewUUID(), kernel.NewUUID()
	suite.Require().NoError(suite.factory.Create().AssignmentRepository().Assign(ctx, suite.record(o.ID(), first), assignment.DefaultPolicy()))

	reassign := suite.factory.Create()
	suite.Require().NoError(reassign.Begin(ctx))
	defer func() { _ = reassign.Rollback(ctx) }()
	_, err := reassign.AssignmentRepository().Release(ctx, o.ID(), time.Now().UTC())
	suite.Require().NoError(err)

	type lookup struct {
		record *assignment.Record
		err    error
	}
	locked := make(chan lookup, 1)
	go func() {
		mover := suite.factory.Create()
		if err := mover.Begin(ctx); err != nil {
			locked <- lookup{err: err}
			return
		}
		defer func() { _ = mover.Rollback(ctx) }()
		record, err := mover.AssignmentRepository().LockActive(ctx, o.ID())
		locked <- lookup{record: record, err: err}
	}()

	select {
	case got := <-locked:
		suite.FailNow("binding read while its release was in flight", "rider: %v err: %v", got.record, got.err)
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(reassign.AssignmentRepository().Assign(ctx, suite.record(o.ID(), second), assignment.DefaultPolicy()))
	suite.Require().NoError(reassign.Commit(ctx))

	select {
	case got := <-locked:
		suite.Require().ErrorIs(got.err, errs.ErrObjectNotFound, "the released rider must not stay bound")
	case <-time.After(5 * time.Second):
		suite.FailNow("binding lookup did not resume after commit")
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) addDeal(maxQuantity int) *deal.Deal {
	original, err := kernel.MoneyFromString("12.00")
	suite.Require().NoError(err)
	price, err := kernel.MoneyFromString("9.00")
	suite.Require().NoError(err)

	now := time.Now().UTC()
	d, err := deal.NewDeal(deal.Params{
		ID:            kernel.NewUUID(),
		ProductRef:    kernel.NewUUID(),
		OriginalPrice: original,
		DealPrice:     price,
		Type:          deal.TypeFixed,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		MaxQuantity:   maxQuantity,
		Category:      "drinks",
		Tags:          []string{"cold", "summer"},
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().DealRepository().Add(context.Background(), d))
	return d
}

// newOrder builds a pending order; a zero dealID yields a line without a deal.
func (suite *UnitOfWorkIntegrationTestSuite) newOrder(dealID kernel.UUID) *order.Order {
	price, err := kernel.MoneyFromString("9.00")
	suite.Require().NoError(err)

	var dealRef *kernel.UUID
	if !dealID.IsZero() {
		dealRef = &dealID
	}
	item, err := order.NewItem(kernel.NewUUID(), dealRef, 2, price)
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), []order.Item{item}, "", time.Now().UTC())
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) record(orderID, riderID kernel.UUID) *assignment.Record {
	r, err := assignment.NewRecord(kernel.NewUUID(), orderID, riderID, time.Now().UTC())
	suite.Require().NoError(err)
	return r
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
