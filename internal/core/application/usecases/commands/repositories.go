// Package commands contains business operations that modify system state.
// Every handler follows the same pattern: validate the command, open a unit
// of work, load and mutate aggregates, persist, commit. Side effects outside
// the database (broker fan-out, push, integration events) run only after a
// successful commit.
package commands

import (
	"context"
	"time"

	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// Unit of Work interfaces. Each handler depends on the narrowest one that
// covers the repositories it touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	CouponRepoFactory interface {
		CouponRepository() ports.CouponRepository
	}

	OfferRepoFactory interface {
		OfferRepository() ports.OfferRepository
	}

	PushTokenRepoFactory interface {
		PushTokenRepository() ports.PushTokenRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CheckoutUoW spans the order, its coupon consumption and the offers it
	// was priced with, so a failed coupon decrement rolls the order back.
	//
	// Example:
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	//
	//	offers, _ := uow.OfferRepository().ListActiveAt(ctx, now)
	//	// ... price, add the order, consume the coupon
	//
	//	err := uow.Commit(ctx)
	CheckoutUoW interface {
		TxManager
		OrderRepoFactory
		CouponRepoFactory
		OfferRepoFactory
	}

	CheckoutUoWFactory interface {
		Create() CheckoutUoW
	}

	PushTokenUoW interface {
		TxManager
		PushTokenRepoFactory
	}

	PushTokenUoWFactory interface {
		Create() PushTokenUoW
	}

	OfferUoW interface {
		TxManager
		OfferRepoFactory
	}

	OfferUoWFactory interface {
		Create() OfferUoW
	}
)

// Collaborators reached after commit.
type (
	// TrackingBroker is the part of the tracking broker that commands drive.
	TrackingBroker interface {
		Open(seed tracking.Seed) error
		PublishStatus(orderID kernel.UUID, status order.Status, eta *time.Time)
		PublishLocation(orderID kernel.UUID, pub tracking.Publisher, latitude, longitude float64) error
		AssignAgent(orderID, agentID kernel.UUID)
	}

	// StatusNotifier schedules a push for a committed status change. It must
	// not block the caller.
	StatusNotifier interface {
		NotifyAsync(ctx context.Context, userID, orderID kernel.UUID, status order.Status)
	}
)
