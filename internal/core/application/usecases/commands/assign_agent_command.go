package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrAssignAgentCommandIsNotConstructed = errors.New(
	"AssignAgentCommand must be created via NewAssignAgentCommand constructor",
)

// AssignAgentCommand assigns or reassigns the delivery agent of an order.
// Only admins may issue it.
type AssignAgentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignAgentCommand(actor kernel.Actor, orderID, agentID kernel.UUID) (AssignAgentCommand, error) {
	if !actor.IsAdmin() {
		return AssignAgentCommand{}, fmt.Errorf("%w: only admins assign delivery agents", kernel.ErrForbidden)
	}

	cmd := AssignAgentCommand{guard: guard.NewConstructorGuard()}
	if err := errors.Join(orderID.Validate(), agentID.Validate()); err != nil {
		return AssignAgentCommand{}, err
	}
	cmd.orderID = orderID
	cmd.agentID = agentID

	return cmd, nil
}

func (c AssignAgentCommand) Validate() error {
	return c.guard.Validate(ErrAssignAgentCommandIsNotConstructed)
}

func (c AssignAgentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignAgentCommand) AgentID() kernel.UUID {
	return c.agentID
}
