package commands

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// agentStatuses are the statuses a delivery agent may move its order to.
var agentStatuses = map[order.Status]bool{
	order.DeliveryPickingUp: true,
	order.PickedUp:          true,
	order.OutForDelivery:    true,
	order.Delivered:         true,
}

// authorizeTransition decides whether actor may ask for next on o.
//
// Admins may request any status. Consumers may only cancel their own order
// while it is still pending. Delivery agents drive the delivery path of
// orders assigned to them. Re-requesting the current status is checked the
// same way so a retried request keeps the same answer.
func authorizeTransition(actor kernel.Actor, o *order.Order, next order.Status) error {
	switch {
	case actor.IsAdmin():
		return nil

	case actor.IsConsumer():
		if !o.UserID().IsEqual(actor.UserID) {
			return fmt.Errorf("%w: order %s belongs to another user", kernel.ErrForbidden, o.ID())
		}
		if next != order.Cancelled {
			return fmt.Errorf("%w: consumers may only cancel", kernel.ErrForbidden)
		}
		if s := o.Status(); s != order.Pending && s != order.Cancelled {
			return fmt.Errorf("%w: order is already %s", kernel.ErrForbidden, s)
		}
		return nil

	case actor.IsDelivery():
		if !o.IsAssignedTo(actor.UserID) {
			return fmt.Errorf("%w: order %s is not assigned to %s", kernel.ErrForbidden, o.ID(), actor.UserID)
		}
		if !agentStatuses[next] {
			return fmt.Errorf("%w: delivery agents cannot set %s", kernel.ErrForbidden, next)
		}
		return nil
	}

	return kernel.ErrForbidden
}
