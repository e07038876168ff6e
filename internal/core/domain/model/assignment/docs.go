// Package assignment models the binding of a rider to an order.
//
// A Record is created when a rider is assigned and closed when the rider is released.
// Closed records are kept, so the full assignment history of an order is preserved and
// a reassignment is simply a release followed by a fresh assignment.
//
// Policy caps how many open records a single rider may hold at once.
package assignment
