package commands_test

import (
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand_ValidInput(t *testing.T) {
	price, err := kernel.MoneyFromString("2.50")
	require.NoError(t, err)
	dealID := kernel.NewUUID()
	orderID, vendorID, customerID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	cmd, err := commands.NewPlaceOrderCommand(orderID, vendorID, customerID, []commands.PlaceOrderLine{
		{ProductID: kernel.NewUUID(), Quantity: 1, UnitPrice: price},
		{ProductID: kernel.NewUUID(), DealID: &dealID, Quantity: 3, UnitPrice: price},
	}, "  side door ")

	require.NoError(t, err)
	assert.Equal(t, orderID, cmd.OrderID())
	assert.Equal(t, vendorID, cmd.VendorID())
	assert.Equal(t, customerID, cmd.CustomerID())
	require.Len(t, cmd.Items(), 2)
	assert.Equal(t, 3, cmd.Items()[1].Quantity())
}

func TestNewPlaceOrderCommand_InvalidInput(t *testing.T) {
	price, err := kernel.MoneyFromString("2.50")
	require.NoError(t, err)

	tests := []struct {
		name    string
		orderID kernel.UUID
		lines   []commands.PlaceOrderLine
		wantErr error
	}{
		{"zero order id", kernel.UUID{}, []commands.PlaceOrderLine{{ProductID: kernel.NewUUID(), Quantity: 1, UnitPrice: price}}, kernel.ErrUUIDIsNotConstructed},
		{"no lines", kernel.NewUUID(), nil, errs.ErrValueIsRequired},
		{"zero quantity", kernel.NewUUID(), []commands.PlaceOrderLine{{ProductID: kernel.NewUUID(), Quantity: 0, UnitPrice: price}}, errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.NewPlaceOrderCommand(tt.orderID, kernel.NewUUID(), kernel.NewUUID(), tt.lines, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewReserveDealCommand_NonPositiveQuantity(t *testing.T) {
	_, err := commands.NewReserveDealCommand(kernel.NewUUID(), 0)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	cmd, err := commands.NewReserveDealCommand(kernel.NewUUID(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cmd.Quantity())
}

func TestNewCreateDealCommand_RejectsInvalidDeal(t *testing.T) {
	original, err := kernel.MoneyFromString("5.00")
	require.NoError(t, err)
	price, err := kernel.MoneyFromString("6.00")
	require.NoError(t, err)
	now := time.Now()

	_, err = commands.NewCreateDealCommand(deal.Params{
		ID:            kernel.NewUUID(),
		ProductRef:    kernel.NewUUID(),
		OriginalPrice: original,
		DealPrice:     price,
		Type:          deal.TypeFixed,
		StartDate:     now,
		EndDate:       now.Add(time.Hour),
		MaxQuantity:   1,
	})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewExpireDealsCommand_RequiresTime(t *testing.T) {
	_, err := commands.NewExpireDealsCommand(time.Time{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestTokenCommands_RequireToken(t *testing.T) {
	_, err := commands.NewCommitReservationCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewReleaseReservationCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewReleaseAssignmentCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewAssignRiderCommand(kernel.NewUUID(), kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}
