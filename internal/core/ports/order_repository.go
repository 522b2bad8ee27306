// Package ports defines the contracts between the order tracking core and its
// infrastructure: storage, catalog lookups, push delivery and event publishing.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order with its items and initial history.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status, delivery agent and newly appended history
	// entries. The write succeeds only if the stored version still equals
	// aggregate.Version(); otherwise it returns errs.VersionIsInvalidError and
	// nothing is written. Status and history are written together or not at all.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with items and full history.
	// Returns errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
