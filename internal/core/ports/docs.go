// Package ports defines the contracts between the marketplace domain and its infrastructure.
//
// Repositories persist the Order, Deal and assignment aggregates. Every operation whose
// correctness depends on the current stored state (reserving stock, releasing a reservation,
// moving an order between statuses, binding a rider) is expressed as a single conditional
// repository call, so that implementations can make it atomic in storage rather than relying
// on a read followed by a write in application code.
//
// StockCache and EventPublisher are best-effort collaborators: failures there never undo a
// committed change.
package ports
