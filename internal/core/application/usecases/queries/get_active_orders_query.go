package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists orders that are neither delivered nor
// cancelled, narrowed to what the actor may see: admins get every active
// order, consumers their own and delivery agents the ones assigned to them.
//
// Example:
//
//	query, _ := NewGetActiveOrdersQuery(actor)
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list active orders: %w", err)
//	}
type GetActiveOrdersQuery struct {
	actor kernel.Actor
	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(actor kernel.Actor) (GetActiveOrdersQuery, error) {
	a, err := kernel.NewActor(actor.UserID, actor.Role)
	if err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{actor: a, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

// GetActiveOrdersQueryResponse is one row of the active orders list.
type GetActiveOrdersQueryResponse struct {
	ID              kernel.UUID
	UserID          kernel.UUID
	Status          order.Status
	Total           decimal.Decimal
	DeliveryAgentID *kernel.UUID
	CreatedAt       time.Time
}
