// Package tracking implements the in-memory location and status broker.
//
// Each order has a topic. Consumer connections subscribe to a topic and
// receive a snapshot of the current status and last known location, followed
// by every status and location event published for that order. Exactly one
// delivery agent may publish locations for an order; the order aggregate is
// the only source of status events.
//
// Delivery to subscribers is independent: every subscriber owns a bounded
// queue drained by its own goroutine, and a subscriber that cannot keep up is
// dropped instead of stalling the publisher. Events are not persisted; a
// reconnecting subscriber only receives the current snapshot.
//
// Topics are opened from order reads. The broker remembers the terminal
// status of finished orders for a while, so a read taken before the order
// finished cannot open its topic again.
package tracking
