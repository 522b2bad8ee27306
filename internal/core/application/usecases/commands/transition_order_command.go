package commands

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand requests a status change of one order on behalf of
// an authenticated actor. ETA is optional and only forwarded to live
// subscribers.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(actor, orderID, order.PickedUp, nil)
//	if err != nil {
//	    return err
//	}
//	updated, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	status  order.Status
	eta     *time.Time

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	status order.Status,
	eta *time.Time,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setOrderID(orderID),
		cmd.setStatus(status),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	if eta != nil {
		v := eta.UTC()
		cmd.eta = &v
	}

	return cmd, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status is the requested target status.
func (c TransitionOrderCommand) Status() order.Status {
	return c.status
}

// ETA returns nil when the caller did not estimate an arrival time.
func (c TransitionOrderCommand) ETA() *time.Time {
	return c.eta
}

func (c *TransitionOrderCommand) setActor(actor kernel.Actor) error {
	a, err := kernel.NewActor(actor.UserID, actor.Role)
	if err != nil {
		return err
	}
	c.actor = a
	return nil
}

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.status = status
	return nil
}
