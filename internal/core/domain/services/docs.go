// Package services provides domain services that hold marketplace rules spanning more than
// one aggregate.
//
// The package includes:
//   - AuthorizationPolicy: decides whether an actor may move an order between two statuses,
//     given the order's parties and the rider currently assigned to it
//
// Services here are pure: they perform no I/O and keep no state, so application handlers
// can call them inside a unit of work without side effects.
package services
