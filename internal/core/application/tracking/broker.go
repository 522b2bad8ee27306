package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/metrics"
)

var (
	// ErrUnauthorizedPublisher is returned for location pings from anyone but
	// the connection bound as the order's delivery agent.
	ErrUnauthorizedPublisher = errors.New("unauthorized publisher")

	// ErrTopicNotFound is returned when an operation needs an open topic and
	// none exists. Callers load the order and Open it.
	ErrTopicNotFound = errors.New("tracking topic not found")

	// ErrBrokerStopped is returned once Shutdown has been called.
	ErrBrokerStopped = errors.New("tracking broker stopped")
)

// Config tunes the broker.
type Config struct {
	// SendTimeout bounds a single write to a subscriber connection.
	SendTimeout time.Duration
	// Buffer is the per-subscriber queue length.
	Buffer int
	// IdleTTL is how long a topic without subscribers or attached agent is kept,
	// and how long a finished order is remembered.
	IdleTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		SendTimeout: 2 * time.Second,
		Buffer:      32,
		IdleTTL:     10 * time.Minute,
	}
}

// Publisher identifies who sends a location ping. ConnID is empty for pings
// arriving over the synchronous API.
type Publisher struct {
	AgentID kernel.UUID
	ConnID  string
}

// Broker fans status and location events out to the subscribers of each
// order topic.
//
// Locking: b.mu guards the topic and finished maps and is always taken
// before a topic's mutex, never after it. Work on one topic never blocks
// another.
type Broker struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	topics   map[kernel.UUID]*topic
	finished map[kernel.UUID]finalStatus
	stopped  bool

	pumps sync.WaitGroup
}

type topic struct {
	orderID kernel.UUID

	mu           sync.Mutex
	status       order.Status
	eta          *time.Time
	location     *kernel.GeoLocation
	agentID      *kernel.UUID
	agentConn    string
	subs         map[string]*subscriber
	lastActivity time.Time

	// closed is set by a terminal status, removed once the topic has left
	// the broker map. A caller holding a removed topic looks it up again.
	closed  bool
	removed bool
}

// finalStatus is the terminal status an order reached. While it is kept, seeds
// read before the order finished cannot open a topic for it again.
type finalStatus struct {
	status order.Status
	eta    *time.Time
	at     time.Time
}

// NewBroker creates an empty broker.
func NewBroker(cfg Config, logger *slog.Logger) *Broker {
	if cfg.Buffer < 2 {
		cfg.Buffer = 2
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultConfig().SendTimeout
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultConfig().IdleTTL
	}

	return &Broker{
		cfg:      cfg,
		logger:   logger.With("component", "tracking_broker"),
		topics:   make(map[kernel.UUID]*topic),
		finished: make(map[kernel.UUID]finalStatus),
	}
}

// Open creates the topic for seed.OrderID unless it already exists. An open
// topic lagging behind seed is moved forward to seed.Status.
//
// Topics are not opened for terminal orders: a terminal seed closes the
// topic if one is open, and Open returns order.ErrOrderIsClosed. The same
// error is returned for an order the broker has seen finish, whatever the
// seed says.
func (b *Broker) Open(seed Seed) error {
	if err := seed.validate(); err != nil {
		return err
	}
	if seed.Status.IsTerminal() {
		b.finish(seed.OrderID, seed.Status, nil)
		return fmt.Errorf("%w: %s", order.ErrOrderIsClosed, seed.Status)
	}

	t, err := b.ensureTopic(seed)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.removed && seed.Status.Supersedes(t.status) {
		b.applyStatus(t, seed.Status, nil)
	}
	return nil
}

// Subscribe registers conn on the order's topic, opening it from seed when
// needed. The current snapshot is returned and also queued as the first
// events the connection receives.
//
// Subscribing to a terminal order does not register anything: the
// connection gets the final status followed by trackingClosed. An open topic
// lagging behind seed is moved forward first, and closed for everyone when
// seed is terminal.
func (b *Broker) Subscribe(seed Seed, conn Connection) (Snapshot, error) {
	if err := seed.validate(); err != nil {
		return Snapshot{}, err
	}

	var t *topic
	for {
		var ok bool
		if t, ok = b.lookup(seed.OrderID); !ok {
			if snap, done := b.finalSnapshot(seed.OrderID); done {
				b.deliverFinal(conn, snap)
				return snap, nil
			}
			if seed.Status.IsTerminal() {
				b.finish(seed.OrderID, seed.Status, nil)
				snap := Snapshot{OrderID: seed.OrderID, Status: seed.Status}
				b.deliverFinal(conn, snap)
				return snap, nil
			}

			var err error
			if t, err = b.ensureTopic(seed); errors.Is(err, order.ErrOrderIsClosed) {
				// Finished between the lookup and the insert.
				continue
			} else if err != nil {
				return Snapshot{}, err
			}
		}

		t.mu.Lock()
		if t.removed {
			t.mu.Unlock()
			continue
		}
		if seed.Status.IsTerminal() && seed.Status.Supersedes(t.status) {
			t.mu.Unlock()
			b.finish(seed.OrderID, seed.Status, nil)
			continue
		}
		break
	}
	defer t.mu.Unlock()

	if seed.Status.Supersedes(t.status) {
		b.applyStatus(t, seed.Status, nil)
	}

	snap := t.snapshot()
	t.lastActivity = time.Now()

	if existing, ok := t.subs[conn.ID()]; ok {
		b.offerSnapshot(t, existing, snap)
		return snap, nil
	}

	sub := newSubscriber(t.orderID, conn, b.cfg.Buffer)
	t.subs[conn.ID()] = sub
	metrics.BrokerSubscribers.Inc()
	b.offerSnapshot(t, sub, snap)
	b.startPump(sub)

	return snap, nil
}

// Unsubscribe removes conn from the topic. Unknown orders or connections are
// ignored.
func (b *Broker) Unsubscribe(orderID kernel.UUID, connID string) {
	t, ok := b.lookup(orderID)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if sub, ok := t.subs[connID]; ok {
		delete(t.subs, connID)
		sub.close("")
		metrics.BrokerSubscribers.Dec()
	}
	t.lastActivity = time.Now()
}

// AttachAgent binds conn as the publishing connection of the order. agentID
// must be the assigned delivery agent. A later attach by the same agent
// replaces the earlier connection.
func (b *Broker) AttachAgent(orderID, agentID kernel.UUID, conn Connection) error {
	t, ok := b.lookup(orderID)
	if !ok {
		return ErrTopicNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removed && !t.closed {
		return ErrTopicNotFound
	}
	if t.closed {
		return fmt.Errorf("%w: %s", order.ErrOrderIsClosed, t.status)
	}
	if t.agentID == nil || !t.agentID.IsEqual(agentID) {
		return fmt.Errorf("%w: %s is not assigned to order %s", ErrUnauthorizedPublisher, agentID, orderID)
	}

	t.agentConn = conn.ID()
	t.lastActivity = time.Now()
	return nil
}

// DetachAgent releases the publishing binding if it is held by connID.
func (b *Broker) DetachAgent(orderID kernel.UUID, connID string) {
	t, ok := b.lookup(orderID)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.agentConn == connID {
		t.agentConn = ""
	}
	t.lastActivity = time.Now()
}

// AssignAgent swaps the authorized publisher of an open topic. Any attached
// connection of the previous agent loses its rights immediately. It is a
// no-op when no topic is open; the next Open picks the agent up from storage.
func (b *Broker) AssignAgent(orderID, agentID kernel.UUID) {
	t, ok := b.lookup(orderID)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := agentID
	t.agentID = &id
	t.agentConn = ""
	t.lastActivity = time.Now()
}

// PublishLocation stores the last location of the order and fans it out.
//
// Errors:
//   - ErrTopicNotFound when no topic is open
//   - order.ErrOrderIsClosed when the order reached a terminal status
//   - ErrUnauthorizedPublisher when pub is not the bound agent
//   - kernel.ErrInvalidLocation for malformed coordinates; nothing is forwarded
func (b *Broker) PublishLocation(orderID kernel.UUID, pub Publisher, latitude, longitude float64) error {
	t, ok := b.lookup(orderID)
	if !ok {
		return ErrTopicNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removed && !t.closed {
		return ErrTopicNotFound
	}
	if t.closed {
		return fmt.Errorf("%w: %s", order.ErrOrderIsClosed, t.status)
	}
	if !t.isPublisher(pub) {
		return fmt.Errorf("%w: %s for order %s", ErrUnauthorizedPublisher, pub.AgentID, orderID)
	}

	loc, err := kernel.NewGeoLocation(latitude, longitude)
	if err != nil {
		return err
	}

	now := time.Now()
	t.location = &loc
	t.lastActivity = now
	b.fanOut(t, locationEvent(orderID, loc, now))
	return nil
}

// PublishStatus forwards a committed status to the subscribers of the order.
// A terminal status closes the topic: every subscriber receives the status
// and then trackingClosed, and is unsubscribed. The terminal status is
// remembered even when no topic is open, so a later Open or Subscribe with
// an older seed cannot bring the topic back.
func (b *Broker) PublishStatus(orderID kernel.UUID, status order.Status, eta *time.Time) {
	if status.IsTerminal() {
		b.finish(orderID, status, eta)
		return
	}

	t, ok := b.lookup(orderID)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.removed {
		b.applyStatus(t, status, eta)
	}
}

// SweepIdle removes topics that have no subscribers, no attached agent and
// no activity since now - IdleTTL. It returns how many were removed.
// Finished orders older than IdleTTL are forgotten as well.
func (b *Broker) SweepIdle(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, fin := range b.finished {
		if now.Sub(fin.at) > b.cfg.IdleTTL {
			delete(b.finished, id)
		}
	}

	removed := 0
	for id, t := range b.topics {
		t.mu.Lock()
		idle := len(t.subs) == 0 && t.agentConn == "" && now.Sub(t.lastActivity) > b.cfg.IdleTTL
		if idle {
			t.removed = true
		}
		t.mu.Unlock()

		if idle {
			delete(b.topics, id)
			metrics.BrokerTopics.Dec()
			removed++
		}
	}
	return removed
}

// TopicCount returns the number of open topics.
func (b *Broker) TopicCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics)
}

// SubscriberCount returns the number of subscribers of an order.
func (b *Broker) SubscriberCount(orderID kernel.UUID) int {
	t, ok := b.lookup(orderID)
	if !ok {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Shutdown closes every topic, telling subscribers tracking is unavailable,
// and waits for queued events to drain or ctx to end.
func (b *Broker) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	for id, t := range b.topics {
		t.mu.Lock()
		t.removed = true
		for connID, sub := range t.subs {
			delete(t.subs, connID)
			sub.close(ReasonShutdown)
			metrics.BrokerSubscribers.Dec()
		}
		t.mu.Unlock()

		delete(b.topics, id)
		metrics.BrokerTopics.Dec()
	}
	clear(b.finished)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.pumps.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Broker) lookup(orderID kernel.UUID) (*topic, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[orderID]
	return t, ok
}

func (b *Broker) ensureTopic(seed Seed) (*topic, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return nil, ErrBrokerStopped
	}
	if t, ok := b.topics[seed.OrderID]; ok {
		return t, nil
	}
	if fin, ok := b.finished[seed.OrderID]; ok {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderIsClosed, fin.status)
	}

	t := &topic{
		orderID:      seed.OrderID,
		status:       seed.Status,
		subs:         make(map[string]*subscriber),
		lastActivity: time.Now(),
	}
	if seed.AgentID != nil {
		id := *seed.AgentID
		t.agentID = &id
	}

	b.topics[seed.OrderID] = t
	metrics.BrokerTopics.Inc()
	return t, nil
}

// finish records the terminal status of an order and closes its topic if one
// is open. The first terminal status recorded wins.
func (b *Broker) finish(orderID kernel.UUID, status order.Status, eta *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	if _, ok := b.finished[orderID]; !ok {
		b.finished[orderID] = finalStatus{status: status, eta: eta, at: time.Now()}
	}

	t, ok := b.topics[orderID]
	if !ok {
		return
	}
	delete(b.topics, orderID)
	metrics.BrokerTopics.Dec()

	t.mu.Lock()
	defer t.mu.Unlock()
	b.applyStatus(t, status, eta)
	t.removed = true
}

func (b *Broker) finalSnapshot(orderID kernel.UUID) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fin, ok := b.finished[orderID]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{OrderID: orderID, Status: fin.status, ETA: fin.eta}, true
}

// applyStatus moves the topic to status and fans it out. A terminal status
// also closes every subscriber. Callers hold t.mu.
func (b *Broker) applyStatus(t *topic, status order.Status, eta *time.Time) {
	if t.closed {
		return
	}

	now := time.Now()
	t.status = status
	t.eta = eta
	t.lastActivity = now
	b.fanOut(t, statusEvent(t.orderID, status, eta, now))

	if !status.IsTerminal() {
		return
	}

	t.closed = true
	reason := closeReason(status)
	for id, sub := range t.subs {
		delete(t.subs, id)
		sub.close(reason)
		metrics.BrokerSubscribers.Dec()
	}
	t.agentConn = ""
}

// fanOut queues ev for every subscriber. Callers hold t.mu, which keeps
// events FIFO per subscriber.
func (b *Broker) fanOut(t *topic, ev Event) {
	metrics.BrokerEvents.WithLabelValues(string(ev.Kind)).Inc()

	for id, sub := range t.subs {
		if sub.offer(ev) {
			continue
		}

		b.logger.Warn("subscriber queue full",
			"connection", id,
			"order_id", t.orderID.String())
		delete(t.subs, id)
		sub.close(ReasonSlowConsumer)
		metrics.BrokerSubscribers.Dec()
		metrics.BrokerDroppedSubscribers.Inc()
	}
}

func (b *Broker) offerSnapshot(t *topic, sub *subscriber, snap Snapshot) {
	now := time.Now()
	sub.offer(statusEvent(t.orderID, snap.Status, snap.ETA, now))
	if snap.Location != nil {
		sub.offer(locationEvent(t.orderID, *snap.Location, now))
	}
}

// deliverFinal sends the final status and trackingClosed to a connection that
// is not registered anywhere.
func (b *Broker) deliverFinal(conn Connection, snap Snapshot) {
	sub := newSubscriber(snap.OrderID, conn, 2)
	sub.offer(statusEvent(snap.OrderID, snap.Status, snap.ETA, time.Now()))
	if snap.Location != nil {
		sub.offer(locationEvent(snap.OrderID, *snap.Location, time.Now()))
	}
	sub.closed = true
	sub.dropReason = closeReason(snap.Status)
	close(sub.queue)
	b.startPump(sub)
}

func (b *Broker) startPump(sub *subscriber) {
	b.pumps.Add(1)
	go func() {
		defer b.pumps.Done()
		sub.run(b.cfg.SendTimeout, b.logger, b.onDeliveryFailure)
	}()
}

// onDeliveryFailure unregisters a subscriber whose connection failed a write.
func (b *Broker) onDeliveryFailure(sub *subscriber) {
	metrics.BrokerDroppedSubscribers.Inc()

	t, ok := b.lookup(sub.orderID)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.subs[sub.conn.ID()]; ok && cur == sub {
		delete(t.subs, sub.conn.ID())
		sub.close("")
		metrics.BrokerSubscribers.Dec()
	}
}

func (t *topic) snapshot() Snapshot {
	snap := Snapshot{
		OrderID: t.orderID,
		Status:  t.status,
		ETA:     t.eta,
	}
	if t.location != nil {
		loc := *t.location
		snap.Location = &loc
	}
	return snap
}

func (t *topic) isPublisher(pub Publisher) bool {
	if t.agentID == nil || !t.agentID.IsEqual(pub.AgentID) {
		return false
	}
	return t.agentConn == "" || pub.ConnID == "" || pub.ConnID == t.agentConn
}

func (s Seed) validate() error {
	return errors.Join(s.OrderID.Validate(), s.Status.Validate())
}
