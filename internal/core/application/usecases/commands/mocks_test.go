package commands_test

import (
	"context"
	"sync"
	"time"

	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockCouponRepository struct{ mock.Mock }

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Consume(ctx context.Context, usage promotion.CouponUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

type MockOfferRepository struct{ mock.Mock }

func (m *MockOfferRepository) ListActiveAt(ctx context.Context, now time.Time) ([]*promotion.Offer, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*promotion.Offer), args.Error(1)
}

func (m *MockOfferRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPushTokenRepository struct{ mock.Mock }

func (m *MockPushTokenRepository) Upsert(ctx context.Context, token notification.PushToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPushTokenRepository) ListByUser(ctx context.Context, userID kernel.UUID) ([]notification.PushToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.PushToken), args.Error(1)
}

func (m *MockPushTokenRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPushTokenRepository) DeleteForUser(ctx context.Context, userID kernel.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

// MockUoW implements every unit of work flavor used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CouponRepository() ports.CouponRepository {
	args := m.Called()
	return args.Get(0).(ports.CouponRepository)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	args := m.Called()
	return args.Get(0).(ports.OfferRepository)
}

func (m *MockUoW) PushTokenRepository() ports.PushTokenRepository {
	args := m.Called()
	return args.Get(0).(ports.PushTokenRepository)
}

// uowFactory hands out the same unit of work for every flavor.
type uowFactory struct {
	uow func() *MockUoW
}

func singleUoW(uow *MockUoW) uowFactory {
	return uowFactory{uow: func() *MockUoW { return uow }}
}

type orderUoWFactory uowFactory

func (f orderUoWFactory) Create() commands.OrderUoW { return f.uow() }

type checkoutUoWFactory uowFactory

func (f checkoutUoWFactory) Create() commands.CheckoutUoW { return f.uow() }

type pushTokenUoWFactory uowFactory

func (f pushTokenUoWFactory) Create() commands.PushTokenUoW { return f.uow() }

type offerUoWFactory uowFactory

func (f offerUoWFactory) Create() commands.OfferUoW { return f.uow() }

type MockTrackingBroker struct{ mock.Mock }

func (m *MockTrackingBroker) Open(seed tracking.Seed) error {
	args := m.Called(seed)
	return args.Error(0)
}

func (m *MockTrackingBroker) PublishStatus(orderID kernel.UUID, status order.Status, eta *time.Time) {
	m.Called(orderID, status, eta)
}

func (m *MockTrackingBroker) PublishLocation(orderID kernel.UUID, pub tracking.Publisher, lat, lng float64) error {
	args := m.Called(orderID, pub, lat, lng)
	return args.Error(0)
}

func (m *MockTrackingBroker) AssignAgent(orderID, agentID kernel.UUID) {
	m.Called(orderID, agentID)
}

type MockStatusNotifier struct{ mock.Mock }

func (m *MockStatusNotifier) NotifyAsync(ctx context.Context, userID, orderID kernel.UUID, status order.Status) {
	m.Called(ctx, userID, orderID, status)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishStatusChanged(ctx context.Context, ev order.StatusChanged) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) UnitPrice(ctx context.Context, productID kernel.UUID, variantID *kernel.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, variantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// memoryOrders is an order store with the same version semantics as the
// database: Get returns a fresh copy and Update fails on a stale version.
type memoryOrders struct {
	mu     sync.Mutex
	orders map[kernel.UUID]*order.Order
}

func newMemoryOrders(orders ...*order.Order) *memoryOrders {
	m := &memoryOrders{orders: make(map[kernel.UUID]*order.Order)}
	for _, o := range orders {
		m.orders[o.ID()] = o
	}
	return m
}

func (m *memoryOrders) Add(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID()] = o
	return nil
}

func (m *memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return copyOrder(o, o.Version())
}

func (m *memoryOrders) Update(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[o.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("orderID", o.ID())
	}
	if stored.Version() != o.Version() {
		return errs.NewVersionIsInvalidError("order")
	}

	next, err := copyOrder(o, o.Version()+1)
	if err != nil {
		return err
	}
	m.orders[o.ID()] = next
	return nil
}

func (m *memoryOrders) stored(id kernel.UUID) *order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func copyOrder(o *order.Order, version int) (*order.Order, error) {
	return order.RestoreOrder(o.ID(), o.UserID(), o.Status(), o.Items(), o.Totals(),
		o.CouponID(), o.DeliveryAgentID(), o.CreatedAt(), o.StatusHistory(), version)
}

// memoryUoW runs against memoryOrders and records what the handler did.
type memoryUoW struct {
	orders    *memoryOrders
	committed bool
}

func (u *memoryUoW) Begin(context.Context) error    { return nil }
func (u *memoryUoW) Commit(context.Context) error   { u.committed = true; return nil }
func (u *memoryUoW) Rollback(context.Context) error { return nil }

func (u *memoryUoW) OrderRepository() ports.OrderRepository { return u.orders }

type memoryUoWFactory struct{ orders *memoryOrders }

func (f memoryUoWFactory) Create() commands.OrderUoW { return &memoryUoW{orders: f.orders} }
