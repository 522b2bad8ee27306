package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/moby/locker"
)

// Transition result label values.
const (
	transitionApplied  = "applied"
	transitionNoop     = "noop"
	transitionRejected = "rejected"
	transitionFailed   = "failed"
)

// TransitionOrderCommandHandler is the single writer of order status.
//
// Transitions of one order are serialized by a per-order lock held from load
// until the status has been handed to the broker, so subscribers see statuses
// in commit order. The version check in storage covers writers in other
// processes.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(uowFactory, locks, broker, dispatcher, events, logger)
//	cmd, _ := NewTransitionOrderCommand(agent, orderID, order.OutForDelivery, &eta)
//	updated, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrStaleTransition) {
//	    // a newer status was already recorded
//	}
type TransitionOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *locker.Locker
	broker     TrackingBroker
	notifier   StatusNotifier
	events     ports.OrderEventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewTransitionOrderCommandHandler(
	uowFactory OrderUoWFactory,
	locks *locker.Locker,
	broker TrackingBroker,
	notifier StatusNotifier,
	events ports.OrderEventPublisher,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		broker:     broker,
		notifier:   notifier,
		events:     events,
		logger:     logger.With("component", "transition_order"),
		now:        time.Now,
	}
}

// Handle applies the transition and returns the order as stored.
//
// Requesting the current status succeeds without writing anything and
// without notifying anyone. Persistence failures are returned and nothing is
// published. Push and integration event failures never fail the transition.
func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := lockOrder(h.locks, cmd.OrderID())
	defer unlock()

	o, changed, err := h.apply(ctx, cmd)
	if err != nil {
		metrics.OrderTransitions.WithLabelValues(cmd.Status().String(), transitionResult(err)).Inc()
		return nil, err
	}
	if !changed {
		metrics.OrderTransitions.WithLabelValues(cmd.Status().String(), transitionNoop).Inc()
		return o, nil
	}
	metrics.OrderTransitions.WithLabelValues(cmd.Status().String(), transitionApplied).Inc()

	h.broker.PublishStatus(o.ID(), o.Status(), cmd.ETA())

	if notification.IsNotificationWorthy(o.Status()) {
		h.notifier.NotifyAsync(ctx, o.UserID(), o.ID(), o.Status())
	}

	if err = h.events.PublishStatusChanged(ctx, order.NewStatusChanged(o)); err != nil {
		h.logger.ErrorContext(ctx, "publish status changed event",
			"order_id", o.ID().String(), "status", o.Status().String(), "error", err)
	}

	return o, nil
}

func (h *TransitionOrderCommandHandler) apply(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, false, err
	}

	if err = authorizeTransition(cmd.Actor(), o, cmd.Status()); err != nil {
		return nil, false, err
	}

	changed, err := o.Transition(cmd.Status(), cmd.Actor().UserID, h.now())
	if err != nil || !changed {
		return o, false, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return o, true, nil
}

func transitionResult(err error) string {
	if errors.Is(err, order.ErrIllegalTransition) || errors.Is(err, order.ErrStaleTransition) {
		return transitionRejected
	}
	return transitionFailed
}
