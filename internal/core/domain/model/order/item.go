package order

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned for Item values not built via NewItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is one order line. DealID is set when the line was bought through a deal and
// therefore holds a reservation against that deal's stock.
type Item struct {
	productID kernel.UUID
	dealID    *kernel.UUID
	quantity  int
	unitPrice kernel.Money
	guard     guard.ConstructorGuard
}

// NewItem validates and builds an order line.
func NewItem(productID kernel.UUID, dealID *kernel.UUID, quantity int, unitPrice kernel.Money) (Item, error) {
	var dealErr error
	if dealID != nil {
		dealErr = dealID.Validate()
	}

	var quantityErr error
	if quantity <= 0 {
		quantityErr = errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}

	if err := errors.Join(productID.Validate(), dealErr, quantityErr, unitPrice.Validate()); err != nil {
		return Item{}, err
	}

	return Item{
		productID: productID,
		dealID:    dealID,
		quantity:  quantity,
		unitPrice: unitPrice,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the line was built through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) ProductID() kernel.UUID { return i.productID }

// DealID returns the deal the line was bought through, or nil.
func (i Item) DealID() *kernel.UUID { return i.dealID }

func (i Item) Quantity() int { return i.quantity }

func (i Item) UnitPrice() kernel.Money { return i.unitPrice }

// Subtotal is unitPrice × quantity.
func (i Item) Subtotal() kernel.Money {
	return i.unitPrice.Times(i.quantity)
}
