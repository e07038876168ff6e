package deal_test

import (
	"testing"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	midWindow   = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
)

func money(t *testing.T, s string) kernel.Money {
	t.Helper()
	m, err := kernel.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func validParams(t *testing.T, maxQuantity int) deal.Params {
	t.Helper()
	return deal.Params{
		ID:            kernel.NewUUID(),
		ProductRef:    kernel.NewUUID(),
		OriginalPrice: money(t, "20.00"),
		DealPrice:     money(t, "15.00"),
		Type:          deal.TypePercentage,
		StartDate:     windowStart,
		EndDate:       windowEnd,
		MaxQuantity:   maxQuantity,
		Category:      " snacks ",
		Tags:          []string{"Hot", "hot", " ", "weekend"},
	}
}

func TestNewDeal(t *testing.T) {
	t.Run("starts_active_with_nothing_sold", func(t *testing.T) {
		d, err := deal.NewDeal(validParams(t, 5))

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.True(t, d.IsActive())
		assert.Equal(t, 0, d.SoldQuantity())
		assert.Equal(t, 5, d.RemainingQuantity())
		assert.Equal(t, "snacks", d.Category())
		assert.Equal(t, []string{"hot", "weekend"}, d.Tags())
	})

	t.Run("computes_discount_from_prices", func(t *testing.T) {
		d, err := deal.NewDeal(validParams(t, 5))

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(25).Equal(d.DiscountPercentage()), d.DiscountPercentage().String())
	})

	t.Run("keeps_explicit_discount", func(t *testing.T) {
		p := validParams(t, 5)
		p.DiscountPercentage = decimal.NewFromInt(30)

		d, err := deal.NewDeal(p)

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(30).Equal(d.DiscountPercentage()))
	})

	t.Run("rejects_invalid_shapes", func(t *testing.T) {
		tests := map[string]struct {
			mutate func(p *deal.Params)
			target error
		}{
			"zero_max_quantity": {func(p *deal.Params) { p.MaxQuantity = 0 }, errs.ErrValueIsInvalid},
			"end_before_start":  {func(p *deal.Params) { p.EndDate = windowStart.Add(-time.Hour) }, errs.ErrValueIsInvalid},
			"missing_window":    {func(p *deal.Params) { p.StartDate = time.Time{} }, errs.ErrValueIsRequired},
			"deal_above_original": {func(p *deal.Params) {
				p.DealPrice = money(t, "25.00")
			}, errs.ErrValueIsInvalid},
			"discount_above_hundred": {func(p *deal.Params) {
				p.DiscountPercentage = decimal.NewFromInt(101)
			}, errs.ErrValueIsOutOfRange},
			"unknown_type":    {func(p *deal.Params) { p.Type = "flash" }, errs.ErrValueIsInvalid},
			"missing_product": {func(p *deal.Params) { p.ProductRef = kernel.UUID{} }, errs.ErrValueIsRequired},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				p := validParams(t, 5)
				tt.mutate(&p)

				_, err := deal.NewDeal(p)

				require.ErrorIs(t, err, tt.target)
			})
		}
	})
}

func TestRestoreDeal(t *testing.T) {
	t.Run("keeps_stored_counters", func(t *testing.T) {
		p := validParams(t, 5)
		p.SoldQuantity = 3
		p.IsActive = false

		d, err := deal.RestoreDeal(p)

		require.NoError(t, err)
		assert.Equal(t, 3, d.SoldQuantity())
		assert.False(t, d.IsActive())
	})

	t.Run("rejects_oversold", func(t *testing.T) {
		p := validParams(t, 5)
		p.SoldQuantity = 6

		_, err := deal.RestoreDeal(p)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestDeal_DerivedState(t *testing.T) {
	d, err := deal.NewDeal(validParams(t, 1))
	require.NoError(t, err)

	assert.False(t, d.IsExpired(windowEnd))
	assert.True(t, d.IsExpired(windowEnd.Add(time.Nanosecond)))
	assert.False(t, d.IsStarted(windowStart.Add(-time.Second)))
	assert.True(t, d.IsValid(midWindow))

	require.NoError(t, d.Reserve(1, midWindow))
	assert.False(t, d.IsValid(midWindow))
	assert.Equal(t, 0, d.RemainingQuantity())
}

func TestDeal_CheckReservable(t *testing.T) {
	tests := map[string]struct {
		sold     int
		inactive bool
		quantity int
		now      time.Time
		target   error
	}{
		"fits":                {sold: 3, quantity: 2, now: midWindow},
		"exactly_at_end":      {quantity: 1, now: windowEnd},
		"not_enough_stock":    {sold: 4, quantity: 2, now: midWindow, target: errs.ErrOutOfStock},
		"after_end":           {quantity: 1, now: windowEnd.Add(time.Second), target: errs.ErrDealExpired},
		"before_start":        {quantity: 1, now: windowStart.Add(-time.Second), target: errs.ErrDealNotStarted},
		"inactive":            {inactive: true, quantity: 1, now: midWindow, target: errs.ErrDealExpired},
		"zero_quantity":       {quantity: 0, now: midWindow, target: errs.ErrValueIsInvalid},
		"expired_and_soldout": {sold: 5, quantity: 1, now: windowEnd.Add(time.Hour), target: errs.ErrDealExpired},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := validParams(t, 5)
			p.SoldQuantity = tt.sold
			p.IsActive = !tt.inactive
			d, err := deal.RestoreDeal(p)
			require.NoError(t, err)

			err = d.CheckReservable(tt.quantity, tt.now)

			if tt.target == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestDeal_ReserveAndRestock(t *testing.T) {
	d, err := deal.NewDeal(validParams(t, 3))
	require.NoError(t, err)

	require.NoError(t, d.Reserve(2, midWindow))
	require.ErrorIs(t, d.Reserve(2, midWindow), errs.ErrOutOfStock)
	assert.Equal(t, 2, d.SoldQuantity(), "failed reserve must not mutate")

	require.NoError(t, d.Restock(2))
	assert.Equal(t, 0, d.SoldQuantity())
	require.ErrorIs(t, d.Restock(1), errs.ErrValueIsOutOfRange)
}

func TestDeal_Retire(t *testing.T) {
	d, err := deal.NewDeal(validParams(t, 3))
	require.NoError(t, err)
	require.NoError(t, d.Reserve(1, midWindow))

	assert.False(t, d.Retire(midWindow))
	assert.True(t, d.IsActive())

	assert.True(t, d.Retire(windowEnd.Add(time.Minute)))
	assert.False(t, d.IsActive())
	assert.Equal(t, 1, d.SoldQuantity(), "retiring leaves quantities alone")
	assert.False(t, d.Retire(windowEnd.Add(time.Hour)))
}
