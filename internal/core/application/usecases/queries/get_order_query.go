// Package queries contains the read side: order views and the checkout price
// preview. Order queries read straight from the database into response
// structs and never load aggregates.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its items and status history on behalf
// of actor.
//
// Example:
//
//	query, err := NewGetOrderQuery(actor, orderID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, kernel.ErrForbidden) {
//	    // someone else's order
//	}
type GetOrderQuery struct {
	actor   kernel.Actor
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(actor kernel.Actor, orderID kernel.UUID) (GetOrderQuery, error) {
	a, err := kernel.NewActor(actor.UserID, actor.Role)
	if err != nil {
		return GetOrderQuery{}, err
	}
	if err = orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{actor: a, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Actor() kernel.Actor {
	return q.actor
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the full order view.
type GetOrderQueryResponse struct {
	ID              kernel.UUID
	UserID          kernel.UUID
	Status          order.Status
	Items           []OrderItemResponse
	Subtotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	Total           decimal.Decimal
	CouponID        *kernel.UUID
	DeliveryAgentID *kernel.UUID
	CreatedAt       time.Time
	StatusHistory   []StatusChangeResponse
}

type OrderItemResponse struct {
	ProductID kernel.UUID
	VariantID *kernel.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type StatusChangeResponse struct {
	Status  order.Status
	At      time.Time
	ActorID kernel.UUID
}

// canRead: admins read everything, consumers their own orders, agents the
// orders assigned to them.
func canRead(actor kernel.Actor, userID kernel.UUID, agentID *kernel.UUID) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsConsumer():
		return userID.IsEqual(actor.UserID)
	case actor.IsDelivery():
		return agentID != nil && agentID.IsEqual(actor.UserID)
	}
	return false
}
