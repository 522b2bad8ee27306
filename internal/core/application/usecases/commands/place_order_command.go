package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand is a consumer checkout: a set of lines and an optional
// coupon code. Prices are not part of the command; they are resolved from
// the catalog at checkout time.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(actor, kernel.NewUUID(), []pricing.Line{
//	    {ProductID: pizzaID, Quantity: 2},
//	}, "SAVE50")
//	if err != nil {
//	    return err
//	}
//	placed, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	actor      kernel.Actor
	orderID    kernel.UUID
	lines      []pricing.Line
	couponCode string

	guard guard.ConstructorGuard
}

func NewPlaceOrderCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	lines []pricing.Line,
	couponCode string,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard:      guard.NewConstructorGuard(),
		couponCode: promotion.NormalizeCode(couponCode),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setOrderID(orderID),
		cmd.setLines(lines),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Lines returns a copy of the requested lines.
func (c PlaceOrderCommand) Lines() []pricing.Line {
	out := make([]pricing.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// CouponCode is normalized; empty means no coupon.
func (c PlaceOrderCommand) CouponCode() string {
	return c.couponCode
}

func (c *PlaceOrderCommand) setActor(actor kernel.Actor) error {
	a, err := kernel.NewActor(actor.UserID, actor.Role)
	if err != nil {
		return err
	}
	if a.IsDelivery() {
		return fmt.Errorf("%w: delivery agents cannot place orders", kernel.ErrForbidden)
	}
	c.actor = a
	return nil
}

func (c *PlaceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *PlaceOrderCommand) setLines(lines []pricing.Line) error {
	if err := pricing.ValidateLines(lines); err != nil {
		return err
	}
	c.lines = make([]pricing.Line, len(lines))
	copy(c.lines, lines)
	return nil
}
