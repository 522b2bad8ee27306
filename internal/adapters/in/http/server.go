package http

import (
	"context"
	"net/http"

	"orderflow/internal/adapters/in/auth"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

type (
	PlaceOrderHandler interface {
		Handle(ctx context.Context, cmd commands.PlaceOrderCommand) (*order.Order, error)
	}
	TransitionOrderHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (*order.Order, error)
	}
	AssignAgentHandler interface {
		Handle(ctx context.Context, cmd commands.AssignAgentCommand) (*order.Order, error)
	}
	PublishLocationHandler interface {
		Handle(ctx context.Context, cmd commands.PublishLocationCommand) error
	}
	RegisterPushTokenHandler interface {
		Handle(ctx context.Context, cmd commands.RegisterPushTokenCommand) error
	}
	RemovePushTokenHandler interface {
		Handle(ctx context.Context, cmd commands.RemovePushTokenCommand) error
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}
	GetActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}
	PricePreviewHandler interface {
		Handle(ctx context.Context, query queries.PricePreviewQuery) (order.Totals, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	PlaceOrder        PlaceOrderHandler
	TransitionOrder   TransitionOrderHandler
	AssignAgent       AssignAgentHandler
	PublishLocation   PublishLocationHandler
	RegisterPushToken RegisterPushTokenHandler
	RemovePushToken   RemovePushTokenHandler

	GetOrder        GetOrderHandler
	GetActiveOrders GetActiveOrdersHandler
	PricePreview    PricePreviewHandler
}

// Server implements servers.ServerInterface on top of the command and query
// handlers. Every route expects auth.Middleware to have stored the actor.
type Server struct {
	h Handlers
}

var _ servers.ServerInterface = (*Server)(nil)

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// PreviewPrice handles POST /checkout/price-preview.
func (s *Server) PreviewPrice(ctx echo.Context) error {
	var body servers.PreviewPriceJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	lines, err := linesFromCart(body)
	if err != nil {
		return err
	}

	query, err := queries.NewPricePreviewQuery(lines, deref(body.CouponCode))
	if err != nil {
		return err
	}

	totals, err := s.h.PricePreview.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, servers.PriceQuote{
		Subtotal:      totals.Subtotal().StringFixed(moneyPlaces),
		DiscountTotal: totals.DiscountTotal().StringFixed(moneyPlaces),
		Total:         totals.Total().StringFixed(moneyPlaces),
	})
}

// ListActiveOrders handles GET /orders.
func (s *Server) ListActiveOrders(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveOrdersQuery(actor)
	if err != nil {
		return err
	}

	rows, err := s.h.GetActiveOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]servers.OrderSummary, len(rows))
	for i, row := range rows {
		response[i] = servers.OrderSummary{
			Id:              row.ID.Bytes(),
			UserId:          row.UserID.Bytes(),
			Status:          servers.OrderStatus(row.Status.String()),
			Total:           row.Total.StringFixed(moneyPlaces),
			DeliveryAgentId: optionalID(row.DeliveryAgentID),
			CreatedAt:       row.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// PlaceOrder handles POST /orders.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var body servers.PlaceOrderJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return err
	}

	lines, err := linesFromCart(body)
	if err != nil {
		return err
	}

	cmd, err := commands.NewPlaceOrderCommand(actor, kernel.NewUUID(), lines, deref(body.CouponCode))
	if err != nil {
		return err
	}

	placed, err := s.h.PlaceOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, orderFromDomain(placed))
}

// GetOrder handles GET /orders/{id}.
func (s *Server) GetOrder(ctx echo.Context, id servers.OrderID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(actor, orderID)
	if err != nil {
		return err
	}

	view, err := s.h.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, orderFromView(view))
}

// AssignAgent handles POST /orders/{id}/agent.
func (s *Server) AssignAgent(ctx echo.Context, id servers.OrderID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var body servers.AssignAgentJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return err
	}
	agentID, err := kernel.UUIDFromBytes(body.AgentId[:])
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignAgentCommand(actor, orderID, agentID)
	if err != nil {
		return err
	}

	updated, err := s.h.AssignAgent.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// PublishLocation handles POST /orders/{id}/location.
func (s *Server) PublishLocation(ctx echo.Context, id servers.OrderID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var body servers.PublishLocationJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return err
	}

	cmd, err := commands.NewPublishLocationCommand(actor, orderID, "", body.Latitude, body.Longitude)
	if err != nil {
		return err
	}

	if err = s.h.PublishLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// TransitionOrder handles POST /orders/{id}/transition.
func (s *Server) TransitionOrder(ctx echo.Context, id servers.OrderID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var body servers.TransitionOrderJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return err
	}
	status, err := order.ParseStatus(string(body.Status))
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionOrderCommand(actor, orderID, status, body.Eta)
	if err != nil {
		return err
	}

	updated, err := s.h.TransitionOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// RegisterPushToken handles POST /push-tokens.
func (s *Server) RegisterPushToken(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var body servers.RegisterPushTokenJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterPushTokenCommand(actor, body.Token, string(body.Platform), deref(body.DeviceId))
	if err != nil {
		return err
	}

	if err = s.h.RegisterPushToken.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RemovePushToken handles DELETE /push-tokens/{token}.
func (s *Server) RemovePushToken(ctx echo.Context, token string) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRemovePushTokenCommand(actor, token)
	if err != nil {
		return err
	}

	if err = s.h.RemovePushToken.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func actorFrom(ctx echo.Context) (kernel.Actor, error) {
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		return kernel.Actor{}, auth.ErrUnauthenticated
	}
	return actor, nil
}

func linesFromCart(cart servers.Cart) ([]pricing.Line, error) {
	lines := make([]pricing.Line, len(cart.Items))
	for i, item := range cart.Items {
		productID, err := kernel.UUIDFromBytes(item.ProductId[:])
		if err != nil {
			return nil, err
		}
		lines[i] = pricing.Line{ProductID: productID, Quantity: item.Quantity}

		if item.VariantId != nil {
			variantID, err := kernel.UUIDFromBytes(item.VariantId[:])
			if err != nil {
				return nil, err
			}
			lines[i].VariantID = &variantID
		}
	}
	return lines, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
