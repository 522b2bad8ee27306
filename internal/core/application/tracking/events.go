package tracking

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// EventKind names an event on the real-time channel.
type EventKind string

const (
	EventOrderStatus    EventKind = "orderStatus"
	EventOrderLocation  EventKind = "orderLocation"
	EventTrackingClosed EventKind = "trackingClosed"
)

// Reasons carried by EventTrackingClosed.
const (
	ReasonDelivered    = "delivered"
	ReasonCancelled    = "cancelled"
	ReasonSlowConsumer = "slow_consumer"
	ReasonShutdown     = "shutdown"
)

// Event is one message fanned out to a subscriber. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind     EventKind
	OrderID  kernel.UUID
	Status   order.Status
	ETA      *time.Time
	Location *kernel.GeoLocation
	Reason   string
	At       time.Time
}

// Snapshot is the state a new subscriber starts from.
type Snapshot struct {
	OrderID  kernel.UUID
	Status   order.Status
	ETA      *time.Time
	Location *kernel.GeoLocation
}

// Seed opens a topic for an order that has none yet.
type Seed struct {
	OrderID kernel.UUID
	Status  order.Status
	AgentID *kernel.UUID
}

// SeedFromOrder builds the topic seed for a loaded order.
func SeedFromOrder(o *order.Order) Seed {
	return Seed{
		OrderID: o.ID(),
		Status:  o.Status(),
		AgentID: o.DeliveryAgentID(),
	}
}

func statusEvent(orderID kernel.UUID, status order.Status, eta *time.Time, at time.Time) Event {
	return Event{Kind: EventOrderStatus, OrderID: orderID, Status: status, ETA: eta, At: at}
}

func locationEvent(orderID kernel.UUID, loc kernel.GeoLocation, at time.Time) Event {
	return Event{Kind: EventOrderLocation, OrderID: orderID, Location: &loc, At: at}
}

func closedEvent(orderID kernel.UUID, reason string, at time.Time) Event {
	return Event{Kind: EventTrackingClosed, OrderID: orderID, Reason: reason, At: at}
}

func closeReason(status order.Status) string {
	if status == order.Cancelled {
		return ReasonCancelled
	}
	return ReasonDelivered
}
