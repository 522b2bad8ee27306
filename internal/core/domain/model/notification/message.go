package notification

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// ErrPushDeliveryFailed marks a notification that reached none of the
// user's devices. It is logged, never returned to the order flow.
var ErrPushDeliveryFailed = errors.New("push delivery failed")

// Message is the provider-independent push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

var statusBodies = map[order.Status]string{
	order.Confirmed:      "Your order has been confirmed.",
	order.OutForDelivery: "Your order is out for delivery.",
	order.Delivered:      "Your order has been delivered. Enjoy!",
	order.Cancelled:      "Your order has been cancelled.",
}

// NewStatusMessage builds the human-readable message for a status change.
func NewStatusMessage(orderID kernel.UUID, status order.Status) Message {
	body, ok := statusBodies[status]
	if !ok {
		body = "Your order is now " + status.String() + "."
	}
	return Message{
		Title: "Order update",
		Body:  body,
		Data: map[string]string{
			"orderId": orderID.String(),
			"status":  status.String(),
		},
	}
}

// IsNotificationWorthy reports whether a transition into status warrants a push.
func IsNotificationWorthy(status order.Status) bool {
	_, ok := statusBodies[status]
	return ok
}

var (
	// ErrTokenUnregistered is reported by a push provider for a token that no
	// longer addresses an installed app.
	ErrTokenUnregistered = errors.New("push token is not registered")

	// ErrProviderUnavailable is reported for transient provider failures
	// (timeouts, 5xx, throttling).
	ErrProviderUnavailable = errors.New("push provider unavailable")
)
