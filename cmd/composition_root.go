package cmd

import (
	"log/slog"

	"orderflow/internal/adapters/in/auth"
	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/in/ws"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/couponrepo"
	"orderflow/internal/adapters/out/postgres/offerrepo"
	"orderflow/internal/adapters/out/postgres/pushtokenrepo"
	"orderflow/internal/adapters/out/push"
	"orderflow/internal/core/application/notifier"
	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"github.com/moby/locker"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived services and builds the handlers that
// share them.
type CompositionRoot struct {
	cfg        Config
	db         *gorm.DB
	logger     *slog.Logger
	uowFactory *postgres.GormUnitOfWorkFactory

	verifier   *auth.Verifier
	locks      *locker.Locker
	quoter     pricing.Quoter
	events     ports.OrderEventPublisher
	broker     *tracking.Broker
	dispatcher *notifier.Dispatcher
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	events ports.OrderEventPublisher,
	logger *slog.Logger,
) *CompositionRoot {
	provider := push.NewExpoClient(push.Config{
		Endpoint:    cfg.PushEndpoint,
		AccessToken: cfg.PushAccessToken,
		Timeout:     cfg.PushTimeout,
	})

	return &CompositionRoot{
		cfg:        cfg,
		db:         gormDB,
		logger:     logger,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		verifier:   auth.NewVerifier(cfg.JWTSecret),
		locks:      locker.New(),
		quoter:     pricing.NewQuoter(catalogrepo.NewGormCatalog(gormDB), services.NewPricingEngine()),
		events:     events,
		broker: tracking.NewBroker(tracking.Config{
			SendTimeout: cfg.SubscriberSendTimeout,
			Buffer:      cfg.SubscriberBuffer,
			IdleTTL:     cfg.TopicIdleTTL,
		}, logger),
		dispatcher: notifier.NewDispatcher(
			pushtokenrepo.NewGormPushTokenRepository(gormDB),
			provider,
			notifier.Config{
				MaxRetries:     cfg.PushMaxRetries,
				InitialBackoff: cfg.PushInitialBackoff,
				MaxConcurrency: notifier.DefaultConfig().MaxConcurrency,
			},
			logger,
		),
	}
}

func (c *CompositionRoot) Verifier() *auth.Verifier {
	return c.verifier
}

func (c *CompositionRoot) Broker() *tracking.Broker {
	return c.broker
}

func (c *CompositionRoot) Dispatcher() *notifier.Dispatcher {
	return c.dispatcher
}

// Commands

func (c *CompositionRoot) NewPlaceOrderCommandHandler() *commands.PlaceOrderCommandHandler {
	var f commands.CheckoutUoWFactory = FuncCheckoutUoWFactory(func() commands.CheckoutUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewPlaceOrderCommandHandler(f, c.quoter)
	return &h
}

func (c *CompositionRoot) NewTransitionOrderCommandHandler() *commands.TransitionOrderCommandHandler {
	h := commands.NewTransitionOrderCommandHandler(c.orderUoWFactory(), c.locks, c.broker, c.dispatcher, c.events, c.logger)
	return &h
}

func (c *CompositionRoot) NewAssignAgentCommandHandler() *commands.AssignAgentCommandHandler {
	h := commands.NewAssignAgentCommandHandler(c.orderUoWFactory(), c.locks, c.broker)
	return &h
}

func (c *CompositionRoot) NewPublishLocationCommandHandler() *commands.PublishLocationCommandHandler {
	h := commands.NewPublishLocationCommandHandler(c.orderUoWFactory(), c.locks, c.broker)
	return &h
}

func (c *CompositionRoot) NewRegisterPushTokenCommandHandler() *commands.RegisterPushTokenCommandHandler {
	h := commands.NewRegisterPushTokenCommandHandler(c.pushTokenUoWFactory())
	return &h
}

func (c *CompositionRoot) NewRemovePushTokenCommandHandler() *commands.RemovePushTokenCommandHandler {
	h := commands.NewRemovePushTokenCommandHandler(c.pushTokenUoWFactory())
	return &h
}

func (c *CompositionRoot) NewDeactivateExpiredOffersCommandHandler() *commands.DeactivateExpiredOffersCommandHandler {
	var f commands.OfferUoWFactory = FuncOfferUoWFactory(func() commands.OfferUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewDeactivateExpiredOffersCommandHandler(f)
	return &h
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) pushTokenUoWFactory() commands.PushTokenUoWFactory {
	return FuncPushTokenUoWFactory(func() commands.PushTokenUoW {
		return c.uowFactory.Create()
	})
}

// Queries

func (c *CompositionRoot) NewGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.db)
}

func (c *CompositionRoot) NewGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.db)
}

func (c *CompositionRoot) NewPricePreviewQueryHandler() queries.PricePreviewQueryHandler {
	return queries.NewPricePreviewQueryHandler(
		c.quoter,
		offerrepo.NewGormOfferRepository(c.db),
		couponrepo.NewGormCouponRepository(c.db),
	)
}

// Adapters

func (c *CompositionRoot) NewHTTPHandlers() httpadapter.Handlers {
	return httpadapter.Handlers{
		PlaceOrder:        c.NewPlaceOrderCommandHandler(),
		TransitionOrder:   c.NewTransitionOrderCommandHandler(),
		AssignAgent:       c.NewAssignAgentCommandHandler(),
		PublishLocation:   c.NewPublishLocationCommandHandler(),
		RegisterPushToken: c.NewRegisterPushTokenCommandHandler(),
		RemovePushToken:   c.NewRemovePushTokenCommandHandler(),
		GetOrder:          c.NewGetOrderQueryHandler(),
		GetActiveOrders:   c.NewGetActiveOrdersQueryHandler(),
		PricePreview:      c.NewPricePreviewQueryHandler(),
	}
}

func (c *CompositionRoot) NewRealtimeHandler() *ws.Handler {
	return ws.NewHandler(
		ws.DefaultConfig(),
		c.verifier,
		c.broker,
		c.locks,
		c.NewGetOrderQueryHandler(),
		c.NewPublishLocationCommandHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.broker, c.NewDeactivateExpiredOffersCommandHandler(), c.logger)
}

// Func*UoWFactory adapt the shared GORM factory to the narrow interfaces the
// handlers depend on.

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncCheckoutUoWFactory func() commands.CheckoutUoW

func (f FuncCheckoutUoWFactory) Create() commands.CheckoutUoW {
	return f()
}

type FuncPushTokenUoWFactory func() commands.PushTokenUoW

func (f FuncPushTokenUoWFactory) Create() commands.PushTokenUoW {
	return f()
}

type FuncOfferUoWFactory func() commands.OfferUoW

func (f FuncOfferUoWFactory) Create() commands.OfferUoW {
	return f()
}
