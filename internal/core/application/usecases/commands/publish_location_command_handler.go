package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/application/tracking"

	"github.com/moby/locker"
)

// PublishLocationCommandHandler forwards agent pings to the broker.
//
// When no topic is open yet (no consumer has subscribed since the process
// started) the order is loaded and its topic opened from storage, so the
// last location is already known to the first subscriber. The load and the
// open happen under the per-order lock shared with
// TransitionOrderCommandHandler: a status committed before the read has
// already reached the broker, and one committed after it waits until the
// topic exists.
type PublishLocationCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *locker.Locker
	broker     TrackingBroker
}

func NewPublishLocationCommandHandler(
	uowFactory OrderUoWFactory,
	locks *locker.Locker,
	broker TrackingBroker,
) PublishLocationCommandHandler {
	return PublishLocationCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		broker:     broker,
	}
}

func (h *PublishLocationCommandHandler) Handle(ctx context.Context, cmd PublishLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	pub := tracking.Publisher{AgentID: cmd.AgentID(), ConnID: cmd.ConnID()}

	err := h.broker.PublishLocation(cmd.OrderID(), pub, cmd.Latitude(), cmd.Longitude())
	if !errors.Is(err, tracking.ErrTopicNotFound) {
		return err
	}

	unlock := lockOrder(h.locks, cmd.OrderID())
	defer unlock()

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = h.broker.Open(tracking.SeedFromOrder(o)); err != nil {
		return err
	}

	return h.broker.PublishLocation(cmd.OrderID(), pub, cmd.Latitude(), cmd.Longitude())
}
