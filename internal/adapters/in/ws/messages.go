package ws

import (
	"time"

	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/tracking"
	"orderflow/internal/generated/servers"
)

// Client -> server message types.
const (
	TypeSubscribeOrder   = "subscribeOrder"
	TypeUnsubscribeOrder = "unsubscribeOrder"
	TypeAttachAgent      = "attachAgent"
	TypePublishLocation  = "publishLocation"
)

// TypeError is the server -> client error message. The other server
// messages use the tracking event kinds as their type.
const TypeError = "error"

// Inbound is a control message sent by the client.
type Inbound struct {
	Type      string  `json:"type"`
	OrderID   string  `json:"orderId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Outbound is every message the server sends. Only the fields relevant to
// Type are set.
type Outbound struct {
	Type      string     `json:"type"`
	OrderID   string     `json:"orderId,omitempty"`
	Status    string     `json:"status,omitempty"`
	ETA       *time.Time `json:"eta,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Code      string     `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
	At        *time.Time `json:"at,omitempty"`
}

func eventMessage(ev tracking.Event) Outbound {
	msg := Outbound{
		Type:    string(ev.Kind),
		OrderID: ev.OrderID.String(),
	}
	if !ev.At.IsZero() {
		at := ev.At.UTC()
		msg.At = &at
	}

	switch ev.Kind {
	case tracking.EventOrderStatus:
		msg.Status = ev.Status.String()
		msg.ETA = ev.ETA
	case tracking.EventOrderLocation:
		if ev.Location != nil {
			lat, lng := ev.Location.Latitude(), ev.Location.Longitude()
			msg.Latitude = &lat
			msg.Longitude = &lng
		}
	case tracking.EventTrackingClosed:
		msg.Reason = ev.Reason
	}

	return msg
}

// errorMessage uses the same codes as the HTTP API.
func errorMessage(orderID string, err error) Outbound {
	_, body := httpadapter.Classify(err)
	return Outbound{
		Type:    TypeError,
		OrderID: orderID,
		Code:    string(body.Code),
		Message: body.Message,
	}
}

func validationMessage(orderID, message string) Outbound {
	return Outbound{
		Type:    TypeError,
		OrderID: orderID,
		Code:    string(servers.ValidationFailed),
		Message: message,
	}
}
