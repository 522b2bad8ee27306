package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
)

var errConnectionClosed = errors.New("connection closed")

// client is one websocket connection. It implements tracking.Connection;
// the broker's pumps hand events to Deliver and writePump is the only
// goroutine writing to the socket.
type client struct {
	id     string
	actor  kernel.Actor
	conn   *websocket.Conn
	cfg    Config
	logger *slog.Logger

	send      chan Outbound
	done      chan struct{}
	closeOnce sync.Once

	mu            sync.Mutex
	subscriptions map[kernel.UUID]struct{}
	attached      map[kernel.UUID]struct{}
}

func newClient(conn *websocket.Conn, actor kernel.Actor, cfg Config, logger *slog.Logger) *client {
	id := kernel.NewUUID().String()
	return &client{
		id:            id,
		actor:         actor,
		conn:          conn,
		cfg:           cfg,
		logger:        logger.With("connection", id, "user_id", actor.UserID.String()),
		send:          make(chan Outbound, cfg.SendBuffer),
		done:          make(chan struct{}),
		subscriptions: make(map[kernel.UUID]struct{}),
		attached:      make(map[kernel.UUID]struct{}),
	}
}

func (c *client) ID() string {
	return c.id
}

// Deliver queues ev for writePump. It gives up when ctx ends, which makes
// the broker drop this subscriber.
func (c *client) Deliver(ctx context.Context, ev tracking.Event) error {
	if ev.Kind == tracking.EventTrackingClosed {
		c.forget(ev.OrderID)
	}
	return c.enqueue(ctx, eventMessage(ev))
}

func (c *client) enqueue(ctx context.Context, msg Outbound) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return errConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reply queues a direct answer to a client message.
func (c *client) reply(msg Outbound) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteWait)
	defer cancel()
	if err := c.enqueue(ctx, msg); err != nil {
		c.logger.Warn("failed to queue reply", "type", msg.Type, "error", err)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		}
	}
}

// readPump reads control messages until the connection fails, passing each
// to dispatch. It returns after the connection is gone.
func (c *client) readPump(dispatch func(*client, Inbound)) {
	defer c.shutdown()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		var msg Inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection closed unexpectedly", "error", err)
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.reply(validationMessage("", "message is not valid JSON"))
				continue
			}
			return
		}
		dispatch(c, msg)
	}
}

// shutdown tells writePump to send a close frame and close the socket,
// which also ends readPump. Safe to call any number of times.
func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *client) remember(orderID kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[orderID] = struct{}{}
}

func (c *client) forget(orderID kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, orderID)
}

func (c *client) rememberAttached(orderID kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached[orderID] = struct{}{}
}

// release returns the orders this connection subscribed to and attached to,
// clearing both sets.
func (c *client) release() (subscribed, attached []kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.subscriptions {
		subscribed = append(subscribed, id)
	}
	for id := range c.attached {
		attached = append(attached, id)
	}
	c.subscriptions = make(map[kernel.UUID]struct{})
	c.attached = make(map[kernel.UUID]struct{})
	return subscribed, attached
}
