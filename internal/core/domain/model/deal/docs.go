// Package deal models time-boxed, quantity-capped promotional offers and the reservations
// made against their stock.
//
// Stored fields are the source of truth; remaining quantity, expiry and validity are always
// computed from them at read time and never persisted.
//
// Key business rules:
//   - 0 <= soldQuantity <= maxQuantity, always
//   - a reservation succeeds only while the deal is active, started, not expired and has stock
//   - a reservation is released at most once; a second release reports ErrAlreadyReleased
//   - expiry retires a deal by clearing isActive, never by touching quantities
package deal
