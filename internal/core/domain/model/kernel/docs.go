// Package kernel provides the value objects shared by every aggregate of the marketplace
// order core:
//   - UUID: identity of orders, deals, reservations, assignments and actors
//   - Money: exact non-negative decimal amounts for prices and totals
//
// Both are immutable and safe for concurrent use.
package kernel
