package commands_test

import (
	"sync/atomic"
	"testing"
	"time"

	"marketplace/internal/adapters/out/memory"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type memoryUoWFactory struct{ store *memory.Store }

func (f memoryUoWFactory) Create() commands.UoW { return f.store.Create() }

type memoryDealUoWFactory struct{ store *memory.Store }

func (f memoryDealUoWFactory) Create() commands.DealUoW { return f.store.Create() }

type marketplace struct {
	store      *memory.Store
	createDeal commands.CreateDealCommandHandler
	reserve    commands.ReserveDealCommandHandler
	commit     commands.CommitReservationCommandHandler
	release    commands.ReleaseReservationCommandHandler
	expire     commands.ExpireDealsCommandHandler
	place      commands.PlaceOrderCommandHandler
	transition commands.TransitionOrderCommandHandler
	assign     commands.AssignRiderCommandHandler
	unassign   commands.ReleaseAssignmentCommandHandler
}

func newMarketplace() marketplace {
	store := memory.NewStore()
	uows := memoryUoWFactory{store: store}
	dealUoWs := memoryDealUoWFactory{store: store}
	return marketplace{
		store:      store,
		createDeal: commands.NewCreateDealCommandHandler(dealUoWs, nil),
		reserve:    commands.NewReserveDealCommandHandler(dealUoWs, nil, nil, nil),
		commit:     commands.NewCommitReservationCommandHandler(dealUoWs, nil, nil),
		release:    commands.NewReleaseReservationCommandHandler(dealUoWs, nil, nil, nil),
		expire:     commands.NewExpireDealsCommandHandler(dealUoWs, nil, nil, nil),
		place:      commands.NewPlaceOrderCommandHandler(uows, nil, nil, nil),
		transition: commands.NewTransitionOrderCommandHandler(uows, nil, nil, nil, nil),
		assign:     commands.NewAssignRiderCommandHandler(uows, assignment.DefaultPolicy(), nil, nil),
		unassign:   commands.NewReleaseAssignmentCommandHandler(uows, nil, nil),
	}
}

func (m marketplace) givenDeal(t *testing.T, maxQuantity int) kernel.UUID {
	t.Helper()
	original, err := kernel.MoneyFromString("20.00")
	require.NoError(t, err)
	price, err := kernel.MoneyFromString("15.00")
	require.NoError(t, err)

	now := time.Now().UTC()
	cmd, err := commands.NewCreateDealCommand(deal.Params{
		ID:            kernel.NewUUID(),
		ProductRef:    kernel.NewUUID(),
		OriginalPrice: original,
		DealPrice:     price,
		Type:          deal.TypePercentage,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		MaxQuantity:   maxQuantity,
		Category:      "groceries",
		Tags:          []string{"Fresh", "fresh", "weekly"},
	})
	require.NoError(t, err)
	id, err := m.createDeal.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return id
}

func (m marketplace) givenOrder(t *testing.T, dealID *kernel.UUID, quantity int) (commands.PlaceOrderCommand, commands.PlaceOrderResult) {
	t.Helper()
	price, err := kernel.MoneyFromString("15.00")
	require.NoError(t, err)
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]commands.PlaceOrderLine{{ProductID: kernel.NewUUID(), DealID: dealID, Quantity: quantity, UnitPrice: price}},
		"ring twice")
	require.NoError(t, err)
	result, err := m.place.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return cmd, result
}

func (m marketplace) move(t *testing.T, orderID kernel.UUID, role order.Role, actingID kernel.UUID, target order.Status, reason string) error {
	t.Helper()
	cmd, err := commands.NewTransitionOrderCommand(orderID, role, actingID, target, reason)
	require.NoError(t, err)
	_, err = m.transition.Handle(t.Context(), cmd)
	return err
}

func (m marketplace) soldQuantity(t *testing.T, dealID kernel.UUID) int {
	t.Helper()
	d, err := m.store.Create().DealRepository().Get(t.Context(), dealID)
	require.NoError(t, err)
	return d.SoldQuantity()
}

func TestScenario_LastUnitGoesToOneCaller(t *testing.T) {
	m := newMarketplace()
	dealID := m.givenDeal(t, 1)

	cmd, err := commands.NewReserveDealCommand(dealID, 1)
	require.NoError(t, err)

	var tokens, outOfStock atomic.Int32
	g := new(errgroup.Group)
	for range 2 {
		g.Go(func() error {
			_, err := m.reserve.Handle(t.Context(), cmd)
			switch {
			case err == nil:
				tokens.Add(1)
			case errs.KindOf(err) == errs.KindOutOfStock:
				outOfStock.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, tokens.Load())
	assert.EqualValues(t, 1, outOfStock.Load())
	assert.Equal(t, 1, m.soldQuantity(t, dealID))
}

func TestScenario_VendorCannotPickUp(t *testing.T) {
	m := newMarketplace()
	cmd, placed := m.givenOrder(t, nil, 1)

	for _, target := range []order.Status{order.Accepted, order.Preparing} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), target, ""))
	}

	err := m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), order.PickedUp, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestScenario_RejectionReturnsStock(t *testing.T) {
	m := newMarketplace()
	dealID := m.givenDeal(t, 10)
	cmd, placed := m.givenOrder(t, &dealID, 3)
	require.Len(t, placed.ReservationTokens, 1)
	assert.Equal(t, 3, m.soldQuantity(t, dealID))

	err := m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), order.Rejected, "  ")
	require.ErrorIs(t, err, errs.ErrMissingReason)
	assert.Equal(t, 3, m.soldQuantity(t, dealID))

	require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), order.Rejected, "out of stock"))
	assert.Equal(t, 0, m.soldQuantity(t, dealID))

	stored, err := m.store.Create().OrderRepository().Get(t.Context(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.Rejected, stored.Status())
	require.NotNil(t, stored.RejectionReason())
	assert.Equal(t, "out of stock", *stored.RejectionReason())

	releaseCmd, err := commands.NewReleaseReservationCommand(placed.ReservationTokens[0])
	require.NoError(t, err)
	require.ErrorIs(t, m.release.Handle(t.Context(), releaseCmd), errs.ErrAlreadyReleased)
	assert.Equal(t, 0, m.soldQuantity(t, dealID))
}

func TestScenario_PlacementIsAllOrNothing(t *testing.T) {
	m := newMarketplace()
	plenty := m.givenDeal(t, 10)
	scarce := m.givenDeal(t, 1)

	price, err := kernel.MoneyFromString("15.00")
	require.NoError(t, err)
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]commands.PlaceOrderLine{
			{ProductID: kernel.NewUUID(), DealID: &plenty, Quantity: 4, UnitPrice: price},
			{ProductID: kernel.NewUUID(), DealID: &scarce, Quantity: 2, UnitPrice: price},
		}, "")
	require.NoError(t, err)

	_, err = m.place.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	assert.Equal(t, 0, m.soldQuantity(t, plenty))
	assert.Equal(t, 0, m.soldQuantity(t, scarce))
	_, err = m.store.Create().OrderRepository().Get(t.Context(), cmd.OrderID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestScenario_SecondRiderIsRefused(t *testing.T) {
	m := newMarketplace()
	_, placed := m.givenOrder(t, nil, 1)
	r1, r2 := kernel.NewUUID(), kernel.NewUUID()

	first, err := commands.NewAssignRiderCommand(placed.OrderID, r1)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), first)
	require.NoError(t, err)

	second, err := commands.NewAssignRiderCommand(placed.OrderID, r2)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), second)
	require.ErrorIs(t, err, errs.ErrAlreadyAssigned)

	active, err := m.store.Create().AssignmentRepository().GetActive(t.Context(), placed.OrderID)
	require.NoError(t, err)
	assert.True(t, active.RiderID().IsEqual(r1))

	releaseCmd, err := commands.NewReleaseAssignmentCommand(placed.OrderID)
	require.NoError(t, err)
	require.NoError(t, m.unassign.Handle(t.Context(), releaseCmd))
	require.ErrorIs(t, m.unassign.Handle(t.Context(), releaseCmd), errs.ErrObjectNotFound)

	_, err = m.assign.Handle(t.Context(), second)
	require.NoError(t, err)

	history, err := m.store.Create().AssignmentRepository().GetHistory(t.Context(), placed.OrderID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestScenario_RiderWithoutBindingIsUnauthorized(t *testing.T) {
	m := newMarketplace()
	cmd, placed := m.givenOrder(t, nil, 1)
	for _, target := range []order.Status{order.Accepted, order.Preparing, order.HandedOver} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), target, ""))
	}

	err := m.move(t, placed.OrderID, order.RoleRider, kernel.NewUUID(), order.PickedUp, "")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestScenario_FullDeliveryReleasesRider(t *testing.T) {
	m := newMarketplace()
	dealID := m.givenDeal(t, 5)
	cmd, placed := m.givenOrder(t, &dealID, 2)
	rider := kernel.NewUUID()

	commitCmd, err := commands.NewCommitReservationCommand(placed.ReservationTokens[0])
	require.NoError(t, err)
	require.NoError(t, m.commit.Handle(t.Context(), commitCmd))
	require.NoError(t, m.commit.Handle(t.Context(), commitCmd))

	assignCmd, err := commands.NewAssignRiderCommand(placed.OrderID, rider)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), assignCmd)
	require.NoError(t, err)

	for _, target := range []order.Status{order.Accepted, order.Preparing, order.HandedOver} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), target, ""))
	}
	for _, target := range []order.Status{order.PickedUp, order.OnTheWay, order.Delivered} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleRider, rider, target, ""))
	}

	err = m.move(t, placed.OrderID, order.RoleAdmin, kernel.NewUUID(), order.Cancelled, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	stored, err := m.store.Create().OrderRepository().Get(t.Context(), placed.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored.RiderID())
	assert.True(t, stored.RiderID().IsEqual(rider))
	assert.Len(t, stored.History(), 7)
	assert.Equal(t, 2, m.soldQuantity(t, dealID))

	_, err = m.store.Create().AssignmentRepository().GetActive(t.Context(), placed.OrderID)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	// the rider is free again
	_, next := m.givenOrder(t, nil, 1)
	nextCmd, err := commands.NewAssignRiderCommand(next.OrderID, rider)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), nextCmd)
	require.NoError(t, err)
}

func TestScenario_ReassignedRiderCompletesDelivery(t *testing.T) {
	m := newMarketplace()
	cmd, placed := m.givenOrder(t, nil, 1)
	first, second := kernel.NewUUID(), kernel.NewUUID()

	assignFirst, err := commands.NewAssignRiderCommand(placed.OrderID, first)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), assignFirst)
	require.NoError(t, err)

	for _, target := range []order.Status{order.Accepted, order.Preparing, order.HandedOver} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), target, ""))
	}
	require.NoError(t, m.move(t, placed.OrderID, order.RoleRider, first, order.PickedUp, ""))

	releaseCmd, err := commands.NewReleaseAssignmentCommand(placed.OrderID)
	require.NoError(t, err)
	require.NoError(t, m.unassign.Handle(t.Context(), releaseCmd))
	assignSecond, err := commands.NewAssignRiderCommand(placed.OrderID, second)
	require.NoError(t, err)
	_, err = m.assign.Handle(t.Context(), assignSecond)
	require.NoError(t, err)

	err = m.move(t, placed.OrderID, order.RoleRider, first, order.OnTheWay, "")
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	require.NoError(t, m.move(t, placed.OrderID, order.RoleRider, second, order.OnTheWay, ""))
	stored, err := m.store.Create().OrderRepository().Get(t.Context(), placed.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored.RiderID())
	assert.True(t, stored.RiderID().IsEqual(second))

	require.NoError(t, m.move(t, placed.OrderID, order.RoleRider, second, order.Delivered, ""))
	stored, err = m.store.Create().OrderRepository().Get(t.Context(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.Delivered, stored.Status())
	assert.True(t, stored.RiderID().IsEqual(second))
}

func TestScenario_CancelAfterHandoverIsForbidden(t *testing.T) {
	m := newMarketplace()
	cmd, placed := m.givenOrder(t, nil, 1)
	for _, target := range []order.Status{order.Accepted, order.Preparing, order.HandedOver} {
		require.NoError(t, m.move(t, placed.OrderID, order.RoleVendor, cmd.VendorID(), target, ""))
	}

	err := m.move(t, placed.OrderID, order.RoleCustomer, cmd.CustomerID(), order.Cancelled, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestScenario_ConcurrentTransitionsYieldOneWinner(t *testing.T) {
	m := newMarketplace()
	cmd, placed := m.givenOrder(t, nil, 1)

	var won, lost atomic.Int32
	g := new(errgroup.Group)
	for _, move := range []struct {
		role   order.Role
		id     kernel.UUID
		target order.Status
		reason string
	}{
		{order.RoleVendor, cmd.VendorID(), order.Accepted, ""},
		{order.RoleCustomer, cmd.CustomerID(), order.Cancelled, ""},
		{order.RoleVendor, cmd.VendorID(), order.Rejected, "closed today"},
	} {
		g.Go(func() error {
			err := m.move(t, placed.OrderID, move.role, move.id, move.target, move.reason)
			if err == nil {
				won.Add(1)
				return nil
			}
			lost.Add(1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stored, err := m.store.Create().OrderRepository().Get(t.Context(), placed.OrderID)
	require.NoError(t, err)
	assert.Len(t, stored.History(), 1+int(won.Load()))
	assert.GreaterOrEqual(t, won.Load(), int32(1))
}

func TestScenario_ExpireSweepKeepsQuantities(t *testing.T) {
	m := newMarketplace()
	dealID := m.givenDeal(t, 5)
	reserveCmd, err := commands.NewReserveDealCommand(dealID, 2)
	require.NoError(t, err)
	_, err = m.reserve.Handle(t.Context(), reserveCmd)
	require.NoError(t, err)

	expireCmd, err := commands.NewExpireDealsCommand(time.Now().Add(48 * time.Hour))
	require.NoError(t, err)
	retired, err := m.expire.Handle(t.Context(), expireCmd)
	require.NoError(t, err)
	assert.Equal(t, 1, retired)

	retired, err = m.expire.Handle(t.Context(), expireCmd)
	require.NoError(t, err)
	assert.Equal(t, 0, retired)

	assert.Equal(t, 2, m.soldQuantity(t, dealID))
	_, err = m.reserve.Handle(t.Context(), reserveCmd)
	require.ErrorIs(t, err, errs.ErrDealExpired)
}
