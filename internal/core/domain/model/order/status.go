package order

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

var (
	// ErrIllegalTransition is returned when the requested status is not reachable
	// from the current one according to the transition table.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrStaleTransition is returned when the requested status lies behind the
	// current one on the delivery path, e.g. a retried "confirmed" arriving after
	// "picked_up" was recorded.
	ErrStaleTransition = errors.New("stale transition")
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Confirmed ──> DeliveryPickingUp ──> PickedUp ──> OutForDelivery ──> Delivered
//	   │            │                 │                 │               │
//	   └────────────┴─────────────────┴─────────────────┴───────────────┴──────> Cancelled
//
// Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota
	Pending
	Confirmed
	DeliveryPickingUp
	PickedUp
	OutForDelivery
	Delivered
	Cancelled
)

var statusNames = map[Status]string{
	Pending:           "pending",
	Confirmed:         "confirmed",
	DeliveryPickingUp: "delivery_picking_up",
	PickedUp:          "picked_up",
	OutForDelivery:    "out_for_delivery",
	Delivered:         "delivered",
	Cancelled:         "cancelled",
}

// allowedTransitions is the complete transition table. Anything missing is illegal.
var allowedTransitions = map[Status][]Status{
	Pending:           {Confirmed, Cancelled},
	Confirmed:         {DeliveryPickingUp, Cancelled},
	DeliveryPickingUp: {PickedUp, Cancelled},
	PickedUp:          {OutForDelivery, Cancelled},
	OutForDelivery:    {Delivered, Cancelled},
}

// ParseStatus converts the wire name ("out_for_delivery") into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the known statuses.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, or "unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the wire name.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes the wire name.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether next is listed for s in the transition table.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition decides what a request to move from s to next means:
//   - nil when next is a legal successor
//   - ErrStaleTransition when next lies behind s on the delivery path
//   - ErrIllegalTransition for anything else, including leaving a terminal status
//
// Requesting s itself is handled by the caller as a no-op.
func (s Status) ValidateTransition(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}

	if s.CanTransitionTo(next) {
		return nil
	}

	if next.isBehind(s) {
		return fmt.Errorf("%w: %s is behind %s", ErrStaleTransition, next, s)
	}

	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
}

// Supersedes reports whether s is newer information than other.
//
// A terminal status supersedes every non-terminal one and nothing supersedes
// a terminal status. Between non-terminal statuses the delivery path decides.
//
// Example:
//
//	order.Delivered.Supersedes(order.OutForDelivery) // true
//	order.Confirmed.Supersedes(order.PickedUp)       // false
func (s Status) Supersedes(other Status) bool {
	if other.IsTerminal() {
		return false
	}
	if s.IsTerminal() {
		return true
	}
	return other.isBehind(s)
}

// isBehind reports whether s precedes current on the delivery path. Cancelled
// is off the path and is never behind or ahead of anything.
func (s Status) isBehind(current Status) bool {
	if s == Cancelled || current == Cancelled {
		return false
	}
	return s < current
}
