package tracking

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// subscriber is one connection registered on one topic. Events are queued by
// the publisher and written by run, so a slow connection never blocks the
// topic.
type subscriber struct {
	orderID kernel.UUID
	conn    Connection
	queue   chan Event

	// Guarded by the owning topic's mutex.
	closed     bool
	dropReason string
}

func newSubscriber(orderID kernel.UUID, conn Connection, buffer int) *subscriber {
	return &subscriber{
		orderID: orderID,
		conn:    conn,
		queue:   make(chan Event, buffer),
	}
}

// offer queues ev without blocking. It reports false when the queue is full.
// Callers hold the topic mutex.
func (s *subscriber) offer(ev Event) bool {
	select {
	case s.queue <- ev:
		return true
	default:
		return false
	}
}

// close stops the queue after the events already in it. Callers hold the
// topic mutex.
func (s *subscriber) close(reason string) {
	if s.closed {
		return
	}
	s.closed = true
	s.dropReason = reason
	close(s.queue)
}

// run delivers queued events in order until the queue is closed or a write
// fails. onFailure is called once, outside of any broker lock, when a write
// fails or times out.
func (s *subscriber) run(sendTimeout time.Duration, logger *slog.Logger, onFailure func(*subscriber)) {
	for ev := range s.queue {
		if err := s.deliver(ev, sendTimeout); err != nil {
			logger.Warn("dropping subscriber",
				"connection", s.conn.ID(),
				"order_id", s.orderID.String(),
				"error", err)
			onFailure(s)
			return
		}
	}

	// dropReason is written before close(queue), so reading it after the
	// range loop observes it.
	if s.dropReason != "" {
		_ = s.deliver(closedEvent(s.orderID, s.dropReason, time.Now()), sendTimeout)
	}
}

func (s *subscriber) deliver(ev Event, sendTimeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return s.conn.Deliver(ctx, ev)
}
