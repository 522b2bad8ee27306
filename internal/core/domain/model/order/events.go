package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// StatusChanged is emitted after a transition has been committed.
type StatusChanged struct {
	OrderID    kernel.UUID
	UserID     kernel.UUID
	Status     Status
	OccurredAt time.Time
}

// NewStatusChanged builds the event for the last recorded change of o.
func NewStatusChanged(o *Order) StatusChanged {
	last := o.LastChange()
	return StatusChanged{
		OrderID:    o.ID(),
		UserID:     o.UserID(),
		Status:     last.Status,
		OccurredAt: last.At,
	}
}
