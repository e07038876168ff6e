package deal_test

import (
	"testing"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation(t *testing.T) *deal.Reservation {
	t.Helper()
	r, err := deal.NewReservation(kernel.NewUUID(), kernel.NewUUID(), 2, midWindow)
	require.NoError(t, err)
	return r
}

func TestNewReservation(t *testing.T) {
	r := newReservation(t)

	require.NoError(t, r.Validate())
	assert.Equal(t, 2, r.Quantity())
	assert.False(t, r.IsCommitted())
	assert.False(t, r.IsReleased())
	assert.Nil(t, r.OrderID())

	_, err := deal.NewReservation(kernel.NewUUID(), kernel.NewUUID(), 0, midWindow)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestReservation_Commit(t *testing.T) {
	r := newReservation(t)

	require.NoError(t, r.Commit(midWindow))
	first := *r.CommittedAt()
	require.NoError(t, r.Commit(midWindow.Add(time.Hour)), "second commit is a no-op")
	assert.Equal(t, first, *r.CommittedAt())
}

func TestReservation_Release(t *testing.T) {
	r := newReservation(t)

	require.NoError(t, r.Release(midWindow))
	assert.True(t, r.IsReleased())

	require.ErrorIs(t, r.Release(midWindow), errs.ErrAlreadyReleased)
	require.ErrorIs(t, r.Commit(midWindow), errs.ErrAlreadyReleased)
}

func TestReservation_BindToOrder(t *testing.T) {
	r := newReservation(t)
	orderID := kernel.NewUUID()

	require.NoError(t, r.BindToOrder(orderID))
	require.NoError(t, r.BindToOrder(orderID))
	require.ErrorIs(t, r.BindToOrder(kernel.NewUUID()), errs.ErrValueIsInvalid)
	assert.True(t, r.OrderID().IsEqual(orderID))
}
