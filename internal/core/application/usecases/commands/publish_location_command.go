package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrPublishLocationCommandIsNotConstructed = errors.New(
	"PublishLocationCommand must be created via NewPublishLocationCommand constructor",
)

// PublishLocationCommand is a location ping of a delivery agent for one
// order. ConnID identifies the real-time connection the ping came through
// and is empty for pings sent over HTTP.
//
// Coordinates are validated by the broker so malformed pings are reported
// as kernel.ErrInvalidLocation, never forwarded.
type PublishLocationCommand struct { //nolint:recvcheck //using for validation
	agentID   kernel.UUID
	orderID   kernel.UUID
	connID    string
	latitude  float64
	longitude float64

	guard guard.ConstructorGuard
}

func NewPublishLocationCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	connID string,
	latitude, longitude float64,
) (PublishLocationCommand, error) {
	if !actor.IsDelivery() {
		return PublishLocationCommand{}, fmt.Errorf("%w: only delivery agents publish locations", kernel.ErrForbidden)
	}
	if err := errors.Join(actor.UserID.Validate(), orderID.Validate()); err != nil {
		return PublishLocationCommand{}, err
	}

	return PublishLocationCommand{
		agentID:   actor.UserID,
		orderID:   orderID,
		connID:    connID,
		latitude:  latitude,
		longitude: longitude,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PublishLocationCommand) Validate() error {
	return c.guard.Validate(ErrPublishLocationCommandIsNotConstructed)
}

func (c PublishLocationCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c PublishLocationCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PublishLocationCommand) ConnID() string {
	return c.connID
}

func (c PublishLocationCommand) Latitude() float64 {
	return c.latitude
}

func (c PublishLocationCommand) Longitude() float64 {
	return c.longitude
}
