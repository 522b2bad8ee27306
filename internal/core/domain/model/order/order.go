package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderIsClosed is returned for mutations of an order in a terminal status.
	ErrOrderIsClosed = errors.New("order is closed")
)

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	Status  Status
	At      time.Time
	ActorID kernel.UUID
}

// Order is the aggregate root of the order lifecycle, from checkout to
// delivery or cancellation. It is the only place where status changes are
// decided; persistence adapters only store what it produced.
//
// Order follows these invariants:
//   - At least one item, and totals that satisfy total = subtotal - discountTotal >= 0
//   - Status changes only through Transition, following the transition table
//   - statusHistory starts with Pending, is monotonic in time, and every
//     consecutive pair is a legal transition
//   - Orders are never deleted; Delivered and Cancelled are terminal
type Order struct {
	id              kernel.UUID
	userID          kernel.UUID
	status          Status
	items           []Item
	totals          Totals
	couponID        *kernel.UUID
	deliveryAgentID *kernel.UUID
	createdAt       time.Time
	history         []StatusChange

	// version is the optimistic-concurrency token checked on update.
	version int

	isConstructed bool
}

// NewOrder creates an order in Pending status with a single history entry.
//
// Example:
//
//	totals, _ := services.NewPricingEngine().ComputeOrderTotal(items, offers, coupon)
//	o, err := order.NewOrder(kernel.NewUUID(), userID, items, totals, couponID, time.Now())
func NewOrder(
	id kernel.UUID,
	userID kernel.UUID,
	items []Item,
	totals Totals,
	couponID *kernel.UUID,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setUserID(userID),
		o.setItems(items),
		o.setTotals(totals),
		o.setCouponID(couponID),
	); err != nil {
		return nil, err
	}

	o.createdAt = createdAt.UTC()
	o.history = []StatusChange{{Status: Pending, At: o.createdAt, ActorID: userID}}

	return o, nil
}

// RestoreOrder rebuilds an order from storage and re-checks every invariant,
// including the legality of the stored history.
func RestoreOrder(
	id kernel.UUID,
	userID kernel.UUID,
	status Status,
	items []Item,
	totals Totals,
	couponID *kernel.UUID,
	deliveryAgentID *kernel.UUID,
	createdAt time.Time,
	history []StatusChange,
	version int,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
		createdAt:     createdAt.UTC(),
		version:       version,
	}

	if err := errors.Join(
		o.setID(id),
		o.setUserID(userID),
		o.setItems(items),
		o.setTotals(totals),
		o.setCouponID(couponID),
		o.setDeliveryAgentID(deliveryAgentID),
		o.setHistory(status, history),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity.
//
// Parameters:
//   - other: the order to compare with, may be nil
//
// Returns:
//   - true if both orders have the same ID
//   - false if other is nil or the IDs differ
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// UserID is the consumer who placed the order.
func (o *Order) UserID() kernel.UUID {
	return o.userID
}

// Status returns the current status, the last entry of StatusHistory.
func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Totals returns the prices computed at checkout. They never change after
// the order is placed.
func (o *Order) Totals() Totals {
	return o.totals
}

// CouponID returns nil when no coupon was applied.
func (o *Order) CouponID() *kernel.UUID {
	return o.couponID
}

// DeliveryAgentID returns nil until an agent is assigned.
func (o *Order) DeliveryAgentID() *kernel.UUID {
	return o.deliveryAgentID
}

// CreatedAt returns when the order was placed, in UTC.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// StatusHistory returns a copy of the history, oldest first.
func (o *Order) StatusHistory() []StatusChange {
	out := make([]StatusChange, len(o.history))
	copy(out, o.history)
	return out
}

// Version is the optimistic-concurrency token the order was loaded with.
func (o *Order) Version() int {
	return o.version
}

// Transition moves the order to next on behalf of actorID.
//
// Returns:
//   - (false, nil) when next equals the current status; nothing is appended
//   - (true, nil) after a legal transition; the change is appended to the history
//   - ErrStaleTransition when next is behind the current status
//   - ErrIllegalTransition for any other status not in the transition table
//
// at is clamped to the last history timestamp so the history stays monotonic
// even if clocks disagree.
func (o *Order) Transition(next Status, actorID kernel.UUID, at time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	if next == o.status {
		return false, nil
	}

	if err := o.status.ValidateTransition(next); err != nil {
		return false, err
	}

	at = at.UTC()
	if last := o.history[len(o.history)-1].At; at.Before(last) {
		at = last
	}

	o.status = next
	o.history = append(o.history, StatusChange{Status: next, At: at, ActorID: actorID})
	return true, nil
}

// LastChange returns the most recent history entry. Every constructed order
// has at least one.
func (o *Order) LastChange() StatusChange {
	return o.history[len(o.history)-1]
}

// AssignDeliveryAgent sets or replaces the delivery agent.
//
// Parameters:
//   - agentID: the delivery agent taking over the order
//
// Returns:
//   - nil once the agent is recorded
//   - ErrOrderIsClosed for delivered or cancelled orders
//   - a validation error for an invalid agentID
//
// Example:
//
//	if err := o.AssignDeliveryAgent(agentID); err != nil {
//	    return nil, err
//	}
//	o.IsAssignedTo(agentID) // true
func (o *Order) AssignDeliveryAgent(agentID kernel.UUID) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := agentID.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: cannot assign a delivery agent to a %s order", ErrOrderIsClosed, o.status)
	}

	o.deliveryAgentID = &agentID
	return nil
}

// IsAssignedTo reports whether agentID is the current delivery agent.
func (o *Order) IsAssignedTo(agentID kernel.UUID) bool {
	return o.deliveryAgentID != nil && o.deliveryAgentID.IsEqual(agentID)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.userID = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setTotals(totals Totals) error {
	if err := totals.Validate(); err != nil {
		return err
	}
	o.totals = totals
	return nil
}

func (o *Order) setCouponID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	v := *id
	o.couponID = &v
	return nil
}

func (o *Order) setDeliveryAgentID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	v := *id
	o.deliveryAgentID = &v
	return nil
}

// setHistory checks that the stored history replays to status.
func (o *Order) setHistory(status Status, history []StatusChange) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if len(history) == 0 || history[0].Status != Pending {
		return errs.NewValueIsInvalidErrorWithCause("statusHistory", errors.New("must start with pending"))
	}

	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if !prev.Status.CanTransitionTo(cur.Status) {
			return errs.NewValueIsInvalidErrorWithCause("statusHistory",
				fmt.Errorf("entry %d: %w: %s -> %s", i, ErrIllegalTransition, prev.Status, cur.Status))
		}
		if cur.At.Before(prev.At) {
			return errs.NewValueIsInvalidErrorWithCause("statusHistory",
				fmt.Errorf("entry %d is earlier than entry %d", i, i-1))
		}
	}

	if last := history[len(history)-1].Status; last != status {
		return errs.NewValueIsInvalidErrorWithCause("statusHistory",
			fmt.Errorf("ends with %s but status is %s", last, status))
	}

	o.status = status
	o.history = make([]StatusChange, len(history))
	copy(o.history, history)
	return nil
}
