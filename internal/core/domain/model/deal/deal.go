package deal

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrDealIsNotConstructed is returned when a Deal was not built via NewDeal or RestoreDeal.
var ErrDealIsNotConstructed = errors.New("Deal must be created via NewDeal constructor")

var hundred = decimal.NewFromInt(100)

// Params carries the fields of a deal. NewDeal ignores SoldQuantity and IsActive;
// RestoreDeal takes them from storage.
type Params struct {
	ID                 kernel.UUID
	ProductRef         kernel.UUID
	OriginalPrice      kernel.Money
	DealPrice          kernel.Money
	DiscountPercentage decimal.Decimal
	Type               Type
	StartDate          time.Time
	EndDate            time.Time
	MaxQuantity        int
	SoldQuantity       int
	IsActive           bool
	Featured           bool
	Category           string
	Tags               []string
}

// Deal is a time-boxed, quantity-capped discounted offer on a product.
//
// Invariants:
//   - 0 <= soldQuantity <= maxQuantity
//   - endDate is after startDate
//   - dealPrice does not exceed originalPrice and the discount is within [0, 100]
//
// Remaining quantity, expiry and validity are derived on every call.
type Deal struct {
	id                 kernel.UUID
	productRef         kernel.UUID
	originalPrice      kernel.Money
	dealPrice          kernel.Money
	discountPercentage decimal.Decimal
	dealType           Type
	startDate          time.Time
	endDate            time.Time
	maxQuantity        int
	soldQuantity       int
	isActive           bool
	featured           bool
	category           string
	tags               []string

	guard guard.ConstructorGuard
}

// NewDeal creates an active deal with nothing sold. A zero DiscountPercentage is
// computed from the two prices.
func NewDeal(p Params) (*Deal, error) {
	p.SoldQuantity = 0
	p.IsActive = true
	if p.DiscountPercentage.IsZero() && p.OriginalPrice.Validate() == nil && !p.OriginalPrice.IsZero() {
		p.DiscountPercentage = p.OriginalPrice.Decimal().Sub(p.DealPrice.Decimal()).
			Div(p.OriginalPrice.Decimal()).Mul(hundred).Round(2)
	}
	return build(p)
}

// RestoreDeal rebuilds a deal from persistence.
func RestoreDeal(p Params) (*Deal, error) {
	return build(p)
}

func build(p Params) (*Deal, error) {
	d := &Deal{
		featured: p.Featured,
		isActive: p.IsActive,
		category: strings.TrimSpace(p.Category),
		tags:     normalizeTags(p.Tags),
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(p.ID),
		d.setProductRef(p.ProductRef),
		d.setPrices(p.OriginalPrice, p.DealPrice, p.DiscountPercentage),
		p.Type.Validate(),
		d.setWindow(p.StartDate, p.EndDate),
		d.setQuantities(p.MaxQuantity, p.SoldQuantity),
	); err != nil {
		return nil, err
	}
	d.dealType = p.Type

	return d, nil
}

// Validate ensures the deal was built through a constructor.
func (d *Deal) Validate() error {
	if d == nil {
		return ErrDealIsNotConstructed
	}
	return d.guard.Validate(ErrDealIsNotConstructed)
}

func (d *Deal) ID() kernel.UUID                     { return d.id }
func (d *Deal) ProductRef() kernel.UUID             { return d.productRef }
func (d *Deal) OriginalPrice() kernel.Money         { return d.originalPrice }
func (d *Deal) DealPrice() kernel.Money             { return d.dealPrice }
func (d *Deal) DiscountPercentage() decimal.Decimal { return d.discountPercentage }
func (d *Deal) Type() Type                          { return d.dealType }
func (d *Deal) StartDate() time.Time                { return d.startDate }
func (d *Deal) EndDate() time.Time                  { return d.endDate }
func (d *Deal) MaxQuantity() int                    { return d.maxQuantity }
func (d *Deal) SoldQuantity() int                   { return d.soldQuantity }
func (d *Deal) IsActive() bool                      { return d.isActive }
func (d *Deal) Featured() bool                      { return d.featured }
func (d *Deal) Category() string                    { return d.category }
func (d *Deal) Tags() []string                      { return slices.Clone(d.tags) }

// RemainingQuantity is maxQuantity - soldQuantity.
func (d *Deal) RemainingQuantity() int {
	return d.maxQuantity - d.soldQuantity
}

// IsExpired reports whether now is past the end of the deal window.
func (d *Deal) IsExpired(now time.Time) bool {
	return now.After(d.endDate)
}

// IsStarted reports whether the deal window has opened at now.
func (d *Deal) IsStarted(now time.Time) bool {
	return !now.Before(d.startDate)
}

// IsValid reports whether the deal is active, unexpired and has stock left at now.
func (d *Deal) IsValid(now time.Time) bool {
	return d.isActive && !d.IsExpired(now) && d.RemainingQuantity() > 0
}

// CheckReservable explains why quantity units cannot be reserved at now, or returns nil.
// Inactive and expired deals fail with ErrDealExpired, deals that have not started with
// ErrDealNotStarted (which also matches ErrDealExpired), and insufficient stock with
// ErrOutOfStock.
func (d *Deal) CheckReservable(quantity int, now time.Time) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	switch {
	case !d.isActive:
		return errs.NewDomainError(errs.ErrDealExpired, fmt.Sprintf("deal %s is no longer active", d.id))
	case d.IsExpired(now):
		return errs.NewDomainError(errs.ErrDealExpired, fmt.Sprintf("deal %s ended at %s", d.id, d.endDate.Format(time.RFC3339)))
	case !d.IsStarted(now):
		return errs.NewDomainError(errs.ErrDealNotStarted, fmt.Sprintf("deal %s starts at %s", d.id, d.startDate.Format(time.RFC3339)))
	case d.soldQuantity+quantity > d.maxQuantity:
		return errs.NewDomainError(errs.ErrOutOfStock,
			fmt.Sprintf("deal %s has %d left, %d requested", d.id, d.RemainingQuantity(), quantity))
	}
	return nil
}

// Reserve claims quantity units at now.
func (d *Deal) Reserve(quantity int, now time.Time) error {
	if err := d.CheckReservable(quantity, now); err != nil {
		return err
	}
	d.soldQuantity += quantity
	return nil
}

// Restock returns quantity previously reserved units.
func (d *Deal) Restock(quantity int) error {
	if quantity <= 0 || quantity > d.soldQuantity {
		return errs.NewValueIsOutOfRangeError("restock quantity", quantity, 1, d.soldQuantity)
	}
	d.soldQuantity -= quantity
	return nil
}

// Retire clears isActive when the deal has expired at now. It reports whether it changed anything.
func (d *Deal) Retire(now time.Time) bool {
	if !d.isActive || !d.IsExpired(now) {
		return false
	}
	d.isActive = false
	return true
}

func (d *Deal) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Deal) setProductRef(ref kernel.UUID) error {
	if ref.IsZero() {
		return errs.NewValueIsRequiredError("productRef")
	}
	d.productRef = ref
	return nil
}

func (d *Deal) setPrices(original, dealPrice kernel.Money, discount decimal.Decimal) error {
	if err := errors.Join(original.Validate(), dealPrice.Validate()); err != nil {
		return err
	}
	if dealPrice.GreaterThan(original) {
		return errs.NewValueIsInvalidErrorWithCause("dealPrice",
			fmt.Errorf("%s exceeds original price %s", dealPrice, original))
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return errs.NewValueIsOutOfRangeError("discountPercentage", discount.String(), 0, 100)
	}
	d.originalPrice = original
	d.dealPrice = dealPrice
	d.discountPercentage = discount
	return nil
}

func (d *Deal) setWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errs.NewValueIsRequiredError("deal window")
	}
	if !end.After(start) {
		return errs.NewValueIsInvalidErrorWithCause("endDate",
			fmt.Errorf("%s is not after %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	d.startDate = start.UTC()
	d.endDate = end.UTC()
	return nil
}

func (d *Deal) setQuantities(maxQuantity, sold int) error {
	if maxQuantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxQuantity", fmt.Errorf("%d is not greater than 0", maxQuantity))
	}
	if sold < 0 || sold > maxQuantity {
		return errs.NewValueIsOutOfRangeError("soldQuantity", sold, 0, maxQuantity)
	}
	d.maxQuantity = maxQuantity
	d.soldQuantity = sold
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
