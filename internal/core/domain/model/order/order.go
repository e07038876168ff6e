package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// MinRejectionReasonLength is the shortest accepted rejection reason after trimming.
	MinRejectionReasonLength = 3
	// MaxRejectionReasonLength caps the stored rejection reason.
	MaxRejectionReasonLength = 500
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is a placed marketplace order. It is the aggregate root that owns the order lines,
// the current status, the rejection reason and the append-only status history.
//
// Order follows these invariants:
//   - status is always one of the nine lifecycle states
//   - rejectionReason is present if and only if status is Rejected
//   - history only ever appends, and each appended entry follows a table edge
//   - a rider is recorded exactly for picked_up, on_the_way and delivered
//   - once the status is terminal the order never changes
//
// Order does not decide who may act; that is the job of the authorization policy. It only
// guarantees that whatever is applied is a legal move of the state machine.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// vendorID is the store operator that owns the order
	vendorID kernel.UUID

	// customerID is the buyer who placed the order
	customerID kernel.UUID

	// riderID is the courier who picked the order up (nil before pickup)
	riderID *kernel.UUID

	// items are the order lines captured at placement
	items []Item

	// status is the current lifecycle state
	status Status

	// rejectionReason explains a vendor rejection (nil unless rejected)
	rejectionReason *string

	// specialInstructions are free-text notes from the customer
	specialInstructions string

	// total is derived from the items at placement
	total kernel.Money

	// history lists every status the order has been in, oldest first
	history []HistoryEntry

	guard guard.ConstructorGuard
}

// NewOrder places a new order in Pending status. The first history entry records the
// customer placing it at placedAt, and the total is derived from the items.
//
// Example:
//
//	price, _ := kernel.MoneyFromString("4.50")
//	item, _ := order.NewItem(productID, nil, 2, price)
//	o, err := order.NewOrder(kernel.NewUUID(), vendorID, customerID, []order.Item{item}, "no onions", time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(
	id, vendorID, customerID kernel.UUID,
	items []Item,
	specialInstructions string,
	placedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:              Pending,
		specialInstructions: strings.TrimSpace(specialInstructions),
		guard:               guard.NewConstructorGuard(),
	}

	var placedErr error
	if placedAt.IsZero() {
		placedErr = errs.NewValueIsRequiredError("placedAt")
	}

	if err := errors.Join(
		o.setID(id),
		o.setVendorID(vendorID),
		o.setCustomerID(customerID),
		o.setItems(items),
		placedErr,
	); err != nil {
		return nil, err
	}

	o.history = []HistoryEntry{{
		Status: Pending,
		Actor:  Actor{Role: RoleCustomer, ID: customerID},
		At:     placedAt.UTC(),
	}}

	return o, nil
}

// RestoreOrder rebuilds an order from persistence. Unlike NewOrder it accepts any
// status, provided the stored fields satisfy the aggregate invariants.
func RestoreOrder(
	id, vendorID, customerID kernel.UUID,
	riderID *kernel.UUID,
	items []Item,
	status Status,
	rejectionReason *string,
	specialInstructions string,
	history []HistoryEntry,
) (*Order, error) {
	o := &Order{
		riderID:             riderID,
		status:              status,
		rejectionReason:     rejectionReason,
		specialInstructions: specialInstructions,
		history:             slices.Clone(history),
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setVendorID(vendorID),
		o.setCustomerID(customerID),
		o.setItems(items),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if err := errors.Join(
		o.validateRejectionReason(),
		o.validateRider(),
		validateHistory(o.history),
	); err != nil {
		return nil, err
	}

	if last := o.history[len(o.history)-1]; last.Status != status {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"history",
			fmt.Errorf("last entry is %s but status is %s", last.Status, status),
		)
	}

	return o, nil
}

// Validate ensures the order was built through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID         { return o.id }
func (o *Order) VendorID() kernel.UUID   { return o.vendorID }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }

// RiderID returns the courier who picked the order up, or nil.
func (o *Order) RiderID() *kernel.UUID { return o.riderID }

// Items returns a copy of the order lines.
func (o *Order) Items() []Item { return slices.Clone(o.items) }

func (o *Order) Status() Status { return o.status }

// RejectionReason returns the vendor's reason, or nil unless rejected.
func (o *Order) RejectionReason() *string { return o.rejectionReason }

func (o *Order) SpecialInstructions() string { return o.specialInstructions }

func (o *Order) Total() kernel.Money { return o.total }

// History returns a copy of the status history, oldest first.
func (o *Order) History() []HistoryEntry { return slices.Clone(o.history) }

// LastHistoryEntry returns the most recent history entry.
func (o *Order) LastHistoryEntry() HistoryEntry { return o.history[len(o.history)-1] }

// DealIDs lists the deals the order bought through, without duplicates.
func (o *Order) DealIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0)
	for _, item := range o.items {
		if item.DealID() == nil {
			continue
		}
		if !slices.ContainsFunc(ids, item.DealID().IsEqual) {
			ids = append(ids, *item.DealID())
		}
	}
	return ids
}

// Transition moves the order to target on behalf of actor and appends one history entry.
//
// It fails with:
//   - ErrInvalidTransition when the order is terminal or no edge leads from the current status to target
//   - ErrMissingReason when target is Rejected and the trimmed reason is shorter than three characters
//
// On failure the order is left untouched. Every rider move records the acting rider on the
// order, so after a reassignment the order names the rider who carries it now.
func (o *Order) Transition(target Status, actor Actor, reason string, at time.Time) (HistoryEntry, error) {
	if err := errors.Join(target.Validate(), actor.Validate()); err != nil {
		return HistoryEntry{}, err
	}
	if at.IsZero() {
		return HistoryEntry{}, errs.NewValueIsRequiredError("transition timestamp")
	}

	if o.status.IsTerminal() {
		return HistoryEntry{}, errs.NewDomainError(errs.ErrInvalidTransition,
			fmt.Sprintf("order %s is already %s", o.id, o.status))
	}

	if _, ok := FindEdge(o.status, target); !ok {
		return HistoryEntry{}, errs.NewDomainError(errs.ErrInvalidTransition,
			fmt.Sprintf("no transition from %s to %s", o.status, target))
	}

	var rejectionReason *string
	if target == Rejected {
		trimmed := strings.TrimSpace(reason)
		if len([]rune(trimmed)) < MinRejectionReasonLength {
			return HistoryEntry{}, errs.NewDomainError(errs.ErrMissingReason,
				fmt.Sprintf("rejection requires a reason of at least %d characters", MinRejectionReasonLength))
		}
		if len([]rune(trimmed)) > MaxRejectionReasonLength {
			return HistoryEntry{}, errs.NewValueIsOutOfRangeError(
				"rejection reason length", len([]rune(trimmed)), MinRejectionReasonLength, MaxRejectionReasonLength)
		}
		rejectionReason = &trimmed
	}

	if target == PickedUp && actor.Role != RoleRider {
		return HistoryEntry{}, errs.NewDomainError(errs.ErrUnauthorized, "only a rider can pick an order up")
	}
	if actor.Role == RoleRider {
		riderID := actor.ID
		o.riderID = &riderID
	}

	entry := HistoryEntry{Status: target, Actor: actor, At: at.UTC()}
	o.status = target
	o.rejectionReason = rejectionReason
	o.history = append(o.history, entry)

	return entry, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setVendorID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("vendorID")
	}
	o.vendorID = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("customerID")
	}
	o.customerID = id
	return nil
}

// setItems validates the lines and derives the order total.
func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	total := kernel.ZeroMoney()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		total = total.Add(item.Subtotal())
	}
	o.items = slices.Clone(items)
	o.total = total
	return nil
}

func (o *Order) validateRejectionReason() error {
	if o.status == Rejected && o.rejectionReason == nil {
		return errs.NewValueIsRequiredError("rejectionReason")
	}
	if o.status != Rejected && o.rejectionReason != nil {
		return errs.NewValueIsInvalidErrorWithCause("rejectionReason",
			fmt.Errorf("%s orders carry no rejection reason", o.status))
	}
	return nil
}

func (o *Order) validateRider() error {
	if o.status.RequiresRider() && o.riderID == nil {
		return errs.NewValueIsRequiredError("riderID")
	}
	if !o.status.RequiresRider() && o.riderID != nil {
		return errs.NewValueIsInvalidErrorWithCause("riderID",
			fmt.Errorf("%s orders carry no rider", o.status))
	}
	return nil
}
