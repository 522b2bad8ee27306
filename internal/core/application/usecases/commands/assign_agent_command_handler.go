package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"

	"github.com/moby/locker"
)

// AssignAgentCommandHandler persists the assignment and then swaps the
// authorized publisher of the live topic. The previous agent's connection
// loses publishing rights as soon as Handle returns.
//
// It shares the per-order lock with TransitionOrderCommandHandler so an
// assignment never interleaves with a status write.
type AssignAgentCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *locker.Locker
	broker     TrackingBroker
}

func NewAssignAgentCommandHandler(
	uowFactory OrderUoWFactory,
	locks *locker.Locker,
	broker TrackingBroker,
) AssignAgentCommandHandler {
	return AssignAgentCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		broker:     broker,
	}
}

func (h *AssignAgentCommandHandler) Handle(ctx context.Context, cmd AssignAgentCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := lockOrder(h.locks, cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if o.IsAssignedTo(cmd.AgentID()) {
		return o, nil
	}

	if err = o.AssignDeliveryAgent(cmd.AgentID()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.broker.AssignAgent(o.ID(), cmd.AgentID())

	return o, nil
}
