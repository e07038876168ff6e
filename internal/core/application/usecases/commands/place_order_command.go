package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderLine is one requested order line. DealID is set when the line is bought
// through a deal and must reserve deal stock.
type PlaceOrderLine struct {
	ProductID kernel.UUID
	DealID    *kernel.UUID
	Quantity  int
	UnitPrice kernel.Money
}

// PlaceOrderCommand represents a customer checkout handed over by the external checkout flow.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(kernel.NewUUID(), vendorID, customerID, lines, "leave at the door")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrOutOfStock) {
//	    // a deal line could not be reserved, nothing was stored
//	}
type PlaceOrderCommand struct {
	orderID             kernel.UUID
	vendorID            kernel.UUID
	customerID          kernel.UUID
	items               []order.Item
	specialInstructions string

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the identities and converts every line into an order item.
func NewPlaceOrderCommand(
	orderID, vendorID, customerID kernel.UUID,
	lines []PlaceOrderLine,
	specialInstructions string,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		orderID:             orderID,
		vendorID:            vendorID,
		customerID:          customerID,
		specialInstructions: specialInstructions,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(orderID.Validate(), vendorID.Validate(), customerID.Validate(), cmd.setItems(lines)); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID        { return c.orderID }
func (c PlaceOrderCommand) VendorID() kernel.UUID       { return c.vendorID }
func (c PlaceOrderCommand) CustomerID() kernel.UUID     { return c.customerID }
func (c PlaceOrderCommand) Items() []order.Item         { return append([]order.Item(nil), c.items...) }
func (c PlaceOrderCommand) SpecialInstructions() string { return c.specialInstructions }

func (c *PlaceOrderCommand) setItems(lines []PlaceOrderLine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	items := make([]order.Item, 0, len(lines))
	for i, line := range lines {
		item, err := order.NewItem(line.ProductID, line.DealID, line.Quantity, line.UnitPrice)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	c.items = items
	return nil
}
