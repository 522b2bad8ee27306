// Package order provides the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root; the single writer of order status
//   - Status: the lifecycle states and the transition table
//   - Item and Totals: priced order lines and the invariant-checked totals
//
// Key business rules:
//   - Orders are created Pending at checkout and end Delivered or Cancelled
//   - Cancelled is reachable from every non-terminal status
//   - Re-requesting the current status is a no-op, never an error
//   - A status behind the current one is rejected as stale, anything else
//     outside the table as illegal
package order
