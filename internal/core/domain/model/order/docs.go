// Package order holds the Order aggregate of the marketplace and its status state machine.
//
// The package includes:
//   - Order: aggregate root owning items, status, rejection reason and the append-only history
//   - Status: the nine lifecycle states and which of them are terminal
//   - Role and Actor: who performs a transition
//   - Edge: the (from, to, roles) transition table shared with the authorization policy
//
// Lifecycle:
//
//	pending ──> accepted ──> preparing ──> handed_over ──> picked_up ──> on_the_way ──> delivered
//	   │  │         │            │
//	   │  └─────────┴────────────┴──> cancelled   (admin, customer)
//	   └──> rejected                               (vendor, reason required)
//
// Key business rules:
//   - status is always one of the nine states
//   - rejectionReason is set if and only if status is rejected
//   - history only grows, and every consecutive pair of entries is an edge of the table
//   - terminal orders (delivered, cancelled, rejected) never change again
package order
