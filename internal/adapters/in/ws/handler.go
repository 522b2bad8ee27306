// Package ws serves the real-time tracking channel. One websocket carries
// any number of order subscriptions, multiplexed by order id, and is also
// the channel delivery agents publish their location through.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"orderflow/internal/adapters/in/auth"
	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/moby/locker"
)

// Tracker is the part of tracking.Broker the channel uses.
type Tracker interface {
	Open(seed tracking.Seed) error
	Subscribe(seed tracking.Seed, conn tracking.Connection) (tracking.Snapshot, error)
	Unsubscribe(orderID kernel.UUID, connID string)
	AttachAgent(orderID, agentID kernel.UUID, conn tracking.Connection) error
	DetachAgent(orderID kernel.UUID, connID string)
}

type OrderReader interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
}

type LocationPublisher interface {
	Handle(ctx context.Context, cmd commands.PublishLocationCommand) error
}

type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int

	// RequestTimeout bounds the work done for one client message.
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     64,
		RequestTimeout: 10 * time.Second,
	}
}

// Handler upgrades authenticated requests and runs the connections.
type Handler struct {
	cfg       Config
	verifier  *auth.Verifier
	tracker   Tracker
	locks     *locker.Locker
	orders    OrderReader
	locations LocationPublisher
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

func NewHandler(
	cfg Config,
	verifier *auth.Verifier,
	tracker Tracker,
	locks *locker.Locker,
	orders OrderReader,
	locations LocationPublisher,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		verifier:  verifier,
		tracker:   tracker,
		locks:     locks,
		orders:    orders,
		locations: locations,
		logger:    logger.With("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: cfg.WriteWait,
			// Identity comes from the bearer token, not cookies, so any
			// origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Serve handles GET /ws. The token is read from the Authorization header or,
// for browsers, from the access_token query parameter.
func (h *Handler) Serve(c echo.Context) error {
	actor, err := h.authenticate(c.Request())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the request.
		h.logger.Debug("upgrade failed", "error", err)
		return nil
	}

	cl := newClient(conn, actor, h.cfg, h.logger)
	if !h.register(cl) {
		cl.shutdown()
		_ = conn.Close()
		return nil
	}
	cl.logger.Info("connected", "role", string(actor.Role))

	go cl.writePump()
	cl.readPump(h.dispatch)

	h.release(cl)
	cl.logger.Info("disconnected")
	return nil
}

// Close disconnects every client. New connections are refused afterwards.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	h.logger.Info("closing realtime connections", "count", len(clients))
	for _, cl := range clients {
		cl.shutdown()
	}
}

func (h *Handler) authenticate(r *http.Request) (kernel.Actor, error) {
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		return h.verifier.VerifyHeader(header)
	}
	if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
		return h.verifier.Verify(token)
	}
	return kernel.Actor{}, fmt.Errorf("%w: missing token", auth.ErrUnauthenticated)
}

func (h *Handler) register(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl.id] = cl
	return true
}

// release drops every broker reference the connection holds.
func (h *Handler) release(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl.id)
	h.mu.Unlock()

	subscribed, attached := cl.release()
	for _, orderID := range subscribed {
		h.tracker.Unsubscribe(orderID, cl.id)
	}
	for _, orderID := range attached {
		h.tracker.DetachAgent(orderID, cl.id)
	}
}

func (h *Handler) dispatch(cl *client, msg Inbound) {
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		cl.reply(validationMessage(msg.OrderID, "orderId must be a UUID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.RequestTimeout)
	defer cancel()

	switch msg.Type {
	case TypeSubscribeOrder:
		err = h.subscribe(ctx, cl, orderID)
	case TypeUnsubscribeOrder:
		h.tracker.Unsubscribe(orderID, cl.id)
		cl.forget(orderID)
	case TypeAttachAgent:
		err = h.attach(ctx, cl, orderID)
	case TypePublishLocation:
		err = h.publish(ctx, cl, orderID, msg.Latitude, msg.Longitude)
	default:
		cl.reply(validationMessage(msg.OrderID, fmt.Sprintf("unknown message type %q", msg.Type)))
		return
	}

	if err != nil {
		cl.logger.Debug("message rejected", "type", msg.Type, "order_id", msg.OrderID, "error", err)
		cl.reply(errorMessage(msg.OrderID, err))
	}
}

// subscribe checks the caller may read the order, then registers the
// connection on its topic. The snapshot arrives as the first events.
//
// The read and the subscription happen under the order's lock, the one
// status transitions hold until the broker has the new status, so the seed
// is never older than what the broker was told.
func (h *Handler) subscribe(ctx context.Context, cl *client, orderID kernel.UUID) error {
	unlock := h.lockOrder(orderID)
	defer unlock()

	view, err := h.readOrder(ctx, cl.actor, orderID)
	if err != nil {
		return err
	}

	cl.remember(orderID)
	seed := tracking.Seed{OrderID: view.ID, Status: view.Status, AgentID: view.DeliveryAgentID}
	if _, err = h.tracker.Subscribe(seed, cl); err != nil {
		cl.forget(orderID)
		return err
	}
	return nil
}

// attach binds the connection as the publishing connection of an order
// assigned to the calling agent.
func (h *Handler) attach(ctx context.Context, cl *client, orderID kernel.UUID) error {
	if !cl.actor.IsDelivery() {
		return fmt.Errorf("%w: only delivery agents attach to orders", kernel.ErrForbidden)
	}

	unlock := h.lockOrder(orderID)
	defer unlock()

	view, err := h.readOrder(ctx, cl.actor, orderID)
	if errors.Is(err, kernel.ErrForbidden) {
		return fmt.Errorf("%w: %s is not assigned to order %s",
			tracking.ErrUnauthorizedPublisher, cl.actor.UserID, orderID)
	}
	if err != nil {
		return err
	}

	seed := tracking.Seed{OrderID: view.ID, Status: view.Status, AgentID: view.DeliveryAgentID}
	if err = h.tracker.Open(seed); err != nil {
		return err
	}
	if err = h.tracker.AttachAgent(orderID, cl.actor.UserID, cl); err != nil {
		return err
	}

	cl.rememberAttached(orderID)
	return nil
}

func (h *Handler) publish(ctx context.Context, cl *client, orderID kernel.UUID, latitude, longitude float64) error {
	cmd, err := commands.NewPublishLocationCommand(cl.actor, orderID, cl.id, latitude, longitude)
	if err != nil {
		return err
	}
	return h.locations.Handle(ctx, cmd)
}

func (h *Handler) lockOrder(orderID kernel.UUID) func() {
	key := orderID.String()
	h.locks.Lock(key)
	return func() {
		_ = h.locks.Unlock(key)
	}
}

func (h *Handler) readOrder(
	ctx context.Context,
	actor kernel.Actor,
	orderID kernel.UUID,
) (queries.GetOrderQueryResponse, error) {
	query, err := queries.NewGetOrderQuery(actor, orderID)
	if err != nil {
		return queries.GetOrderQueryResponse{}, err
	}
	return h.orders.Handle(ctx, query)
}
