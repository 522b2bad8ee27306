package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderflow/internal/adapters/in/auth"
	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite

	verifier *auth.Verifier
	e        *echo.Echo

	placeOrder      *MockPlaceOrderHandler
	transition      *MockTransitionOrderHandler
	assignAgent     *MockAssignAgentHandler
	publishLocation *MockPublishLocationHandler
	registerToken   *MockRegisterPushTokenHandler
	removeToken     *MockRemovePushTokenHandler
	getOrder        *MockGetOrderHandler
	activeOrders    *MockGetActiveOrdersHandler
	pricePreview    *MockPricePreviewHandler

	consumer kernel.Actor
	agent    kernel.Actor
	admin    kernel.Actor
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.verifier = auth.NewVerifier("router-test-secret")

	s.placeOrder = &MockPlaceOrderHandler{}
	s.transition = &MockTransitionOrderHandler{}
	s.assignAgent = &MockAssignAgentHandler{}
	s.publishLocation = &MockPublishLocationHandler{}
	s.registerToken = &MockRegisterPushTokenHandler{}
	s.removeToken = &MockRemovePushTokenHandler{}
	s.getOrder = &MockGetOrderHandler{}
	s.activeOrders = &MockGetActiveOrdersHandler{}
	s.pricePreview = &MockPricePreviewHandler{}

	e, err := httpadapter.NewRouter(httpadapter.RouterConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier: s.verifier,
		Handlers: httpadapter.Handlers{
			PlaceOrder:        s.placeOrder,
			TransitionOrder:   s.transition,
			AssignAgent:       s.assignAgent,
			PublishLocation:   s.publishLocation,
			RegisterPushToken: s.registerToken,
			RemovePushToken:   s.removeToken,
			GetOrder:          s.getOrder,
			GetActiveOrders:   s.activeOrders,
			PricePreview:      s.pricePreview,
		},
	})
	s.Require().NoError(err)
	s.e = e

	s.consumer = s.actor(kernel.RoleConsumer)
	s.agent = s.actor(kernel.RoleDelivery)
	s.admin = s.actor(kernel.RoleAdmin)
}

func (s *RouterTestSuite) TearDownTest() {
	for _, m := range []interface{ AssertExpectations(mock.TestingT) bool }{
		s.placeOrder, s.transition, s.assignAgent, s.publishLocation,
		s.registerToken, s.removeToken, s.getOrder, s.activeOrders, s.pricePreview,
	} {
		m.AssertExpectations(s.T())
	}
}

func (s *RouterTestSuite) actor(role kernel.Role) kernel.Actor {
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	s.Require().NoError(err)
	return a
}

func (s *RouterTestSuite) do(method, path string, actor *kernel.Actor, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != nil {
		token, err := s.verifier.Issue(*actor, time.Minute)
		s.Require().NoError(err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) decodeError(rec *httptest.ResponseRecorder) servers.Error {
	var body servers.Error
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (s *RouterTestSuite) pendingOrder(userID kernel.UUID) *order.Order {
	item, err := order.NewItem(kernel.NewUUID(), nil, 2, decimal.NewFromInt(250))
	s.Require().NoError(err)
	totals, err := order.NewTotals(decimal.NewFromInt(500), decimal.NewFromInt(70))
	s.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), userID, []order.Item{item}, totals, nil, time.Now())
	s.Require().NoError(err)
	return o
}

func (s *RouterTestSuite) TestHealth_IsPublic() {
	rec := s.do(http.MethodGet, "/health", nil, "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *RouterTestSuite) TestMetrics_ExposesHTTPCounters() {
	s.do(http.MethodGet, "/health", nil, "")

	rec := s.do(http.MethodGet, "/metrics", nil, "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "orderflow_http_requests_total")
}

func (s *RouterTestSuite) TestRequiresToken() {
	rec := s.do(http.MethodGet, "/orders", nil, "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(servers.Unauthorized, s.decodeError(rec).Code)
}

func (s *RouterTestSuite) TestPlaceOrder() {
	placed := s.pendingOrder(s.consumer.UserID)
	productID := kernel.NewUUID()
	s.placeOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.PlaceOrderCommand) bool {
		return cmd.Actor().UserID.IsEqual(s.consumer.UserID) &&
			cmd.CouponCode() == "SAVE50" &&
			len(cmd.Lines()) == 1 &&
			cmd.Lines()[0].ProductID.IsEqual(productID) &&
			cmd.Lines()[0].Quantity == 2
	})).Return(placed, nil).Once()

	rec := s.do(http.MethodPost, "/orders", &s.consumer,
		fmt.Sprintf(`{"items":[{"productId":%q,"quantity":2}],"couponCode":"save50"}`, productID))

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var body servers.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(servers.Pending, body.Status)
	s.Equal("500.00", body.Subtotal)
	s.Equal("70.00", body.DiscountTotal)
	s.Equal("430.00", body.Total)
	s.Require().Len(body.StatusHistory, 1)
	s.Equal(servers.Pending, body.StatusHistory[0].Status)
}

func (s *RouterTestSuite) TestPlaceOrder_RejectsEmptyCart() {
	rec := s.do(http.MethodPost, "/orders", &s.consumer, `{"items":[]}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(servers.ValidationFailed, s.decodeError(rec).Code)
}

func (s *RouterTestSuite) TestPlaceOrder_CouponInvalid() {
	s.placeOrder.On("Handle", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: exhausted", promotion.ErrCouponInvalid)).Once()

	rec := s.do(http.MethodPost, "/orders", &s.consumer,
		fmt.Sprintf(`{"items":[{"productId":%q,"quantity":1}],"couponCode":"GONE"}`, kernel.NewUUID()))

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(servers.CouponInvalid, s.decodeError(rec).Code)
}

func (s *RouterTestSuite) TestPreviewPrice() {
	totals, err := order.NewTotals(decimal.NewFromInt(500), decimal.NewFromInt(70))
	s.Require().NoError(err)
	s.pricePreview.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.PricePreviewQuery) bool {
		return q.CouponCode() == "SAVE50"
	})).Return(totals, nil).Once()

	rec := s.do(http.MethodPost, "/checkout/price-preview", &s.consumer,
		fmt.Sprintf(`{"items":[{"productId":%q,"quantity":1}],"couponCode":"SAVE50"}`, kernel.NewUUID()))

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var quote servers.PriceQuote
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &quote))
	s.Equal(servers.PriceQuote{Subtotal: "500.00", DiscountTotal: "70.00", Total: "430.00"}, quote)
}

func (s *RouterTestSuite) TestTransitionOrder() {
	updated := s.pendingOrder(kernel.NewUUID())
	_, err := updated.Transition(order.Confirmed, s.admin.UserID, time.Now())
	s.Require().NoError(err)

	s.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionOrderCommand) bool {
		return cmd.OrderID().IsEqual(updated.ID()) && cmd.Status() == order.Confirmed && cmd.ETA() == nil
	})).Return(updated, nil).Once()

	rec := s.do(http.MethodPost, "/orders/"+updated.ID().String()+"/transition", &s.admin, `{"status":"confirmed"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body servers.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(servers.Confirmed, body.Status)
	s.Len(body.StatusHistory, 2)
}

func (s *RouterTestSuite) TestTransitionOrder_Errors() {
	tests := []struct {
		name   string
		err    error
		status int
		code   servers.ErrorCode
	}{
		{"illegal", fmt.Errorf("%w: pending -> delivered", order.ErrIllegalTransition),
			http.StatusConflict, servers.IllegalTransition},
		{"stale", fmt.Errorf("%w: confirmed is behind picked_up", order.ErrStaleTransition),
			http.StatusConflict, servers.StaleTransition},
		{"not found", errs.NewObjectNotFoundError("orderID", "x"), http.StatusNotFound, servers.NotFound},
		{"concurrent update", errs.NewVersionIsInvalidError("order"), http.StatusConflict, servers.Conflict},
		{"forbidden", kernel.ErrForbidden, http.StatusForbidden, servers.Forbidden},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, servers.Internal},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.transition.On("Handle", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := s.do(http.MethodPost, "/orders/"+kernel.NewUUID().String()+"/transition", &s.agent,
				`{"status":"delivered"}`)

			s.Equal(tt.status, rec.Code)
			body := s.decodeError(rec)
			s.Equal(tt.code, body.Code)
			if tt.code == servers.Internal {
				s.NotContains(body.Message, "connection reset")
			}
		})
	}
}

func (s *RouterTestSuite) TestTransitionOrder_RejectsUnknownStatus() {
	rec := s.do(http.MethodPost, "/orders/"+kernel.NewUUID().String()+"/transition", &s.admin, `{"status":"flying"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(servers.ValidationFailed, s.decodeError(rec).Code)
}

func (s *RouterTestSuite) TestTransitionOrder_RejectsMalformedID() {
	rec := s.do(http.MethodPost, "/orders/not-a-uuid/transition", &s.admin, `{"status":"confirmed"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(servers.ValidationFailed, s.decodeError(rec).Code)
}

func (s *RouterTestSuite) TestPublishLocation() {
	orderID := kernel.NewUUID()
	s.publishLocation.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.PublishLocationCommand) bool {
		return cmd.OrderID().IsEqual(orderID) &&
			cmd.AgentID().IsEqual(s.agent.UserID) &&
			cmd.ConnID() == "" &&
			cmd.Latitude() == 12.97 && cmd.Longitude() == 77.59
	})).Return(nil).Once()

	rec := s.do(http.MethodPost, "/orders/"+orderID.String()+"/location", &s.agent,
		`{"latitude":12.97,"longitude":77.59}`)

	s.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
}

func (s *RouterTestSuite) TestPublishLocation_Errors() {
	s.Run("unassigned agent", func() {
		s.publishLocation.On("Handle", mock.Anything, mock.Anything).
			Return(tracking.ErrUnauthorizedPublisher).Once()

		rec := s.do(http.MethodPost, "/orders/"+kernel.NewUUID().String()+"/location", &s.agent,
			`{"latitude":1,"longitude":2}`)

		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal(servers.UnauthorizedPublisher, s.decodeError(rec).Code)
	})

	s.Run("out of range coordinates", func() {
		s.publishLocation.On("Handle", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: latitude 91", kernel.ErrInvalidLocation)).Once()

		rec := s.do(http.MethodPost, "/orders/"+kernel.NewUUID().String()+"/location", &s.agent,
			`{"latitude":91,"longitude":2}`)

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal(servers.InvalidLocation, s.decodeError(rec).Code)
	})

	s.Run("consumer cannot publish", func() {
		rec := s.do(http.MethodPost, "/orders/"+kernel.NewUUID().String()+"/location", &s.consumer,
			`{"latitude":1,"longitude":2}`)

		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal(servers.Forbidden, s.decodeError(rec).Code)
	})
}

func (s *RouterTestSuite) TestAssignAgent() {
	o := s.pendingOrder(kernel.NewUUID())
	agentID := kernel.NewUUID()
	s.Require().NoError(o.AssignDeliveryAgent(agentID))
	s.assignAgent.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignAgentCommand) bool {
		return cmd.OrderID().IsEqual(o.ID()) && cmd.AgentID().IsEqual(agentID)
	})).Return(o, nil).Once()

	rec := s.do(http.MethodPost, "/orders/"+o.ID().String()+"/agent", &s.admin,
		fmt.Sprintf(`{"agentId":%q}`, agentID))

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body servers.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().NotNil(body.DeliveryAgentId)
	s.Equal(agentID.String(), body.DeliveryAgentId.String())
}

func (s *RouterTestSuite) TestGetOrder() {
	orderID := kernel.NewUUID()
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	view := queries.GetOrderQueryResponse{
		ID:            orderID,
		UserID:        s.consumer.UserID,
		Status:        order.Pending,
		Subtotal:      decimal.NewFromInt(100),
		DiscountTotal: decimal.Zero,
		Total:         decimal.NewFromInt(100),
		CreatedAt:     createdAt,
		Items: []queries.OrderItemResponse{{
			ProductID: kernel.NewUUID(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(100),
			LineTotal: decimal.NewFromInt(100),
		}},
		StatusHistory: []queries.StatusChangeResponse{{
			Status: order.Pending, At: createdAt, ActorID: s.consumer.UserID,
		}},
	}
	s.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID().IsEqual(orderID) && q.Actor().UserID.IsEqual(s.consumer.UserID)
	})).Return(view, nil).Once()

	rec := s.do(http.MethodGet, "/orders/"+orderID.String(), &s.consumer, "")

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body servers.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(orderID.String(), body.Id.String())
	s.Equal("100.00", body.Total)
	s.Require().Len(body.Items, 1)
	s.Equal("100.00", body.Items[0].LineTotal)
	s.True(createdAt.Equal(body.CreatedAt))
}

func (s *RouterTestSuite) TestListActiveOrders() {
	agentID := kernel.NewUUID()
	rows := []queries.GetActiveOrdersQueryResponse{{
		ID:              kernel.NewUUID(),
		UserID:          kernel.NewUUID(),
		Status:          order.OutForDelivery,
		Total:           decimal.RequireFromString("19.9"),
		DeliveryAgentID: &agentID,
		CreatedAt:       time.Now().UTC(),
	}}
	s.activeOrders.On("Handle", mock.Anything, mock.Anything).Return(rows, nil).Once()

	rec := s.do(http.MethodGet, "/orders", &s.admin, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	var body []servers.OrderSummary
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body, 1)
	s.Equal(servers.OutForDelivery, body[0].Status)
	s.Equal("19.90", body[0].Total)
	s.Equal(agentID.String(), body[0].DeliveryAgentId.String())
}

func (s *RouterTestSuite) TestPushTokens() {
	s.registerToken.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RegisterPushTokenCommand) bool {
		return cmd.Token().Token() == "ExponentPushToken[abc]" && cmd.Token().UserID().IsEqual(s.consumer.UserID)
	})).Return(nil).Once()
	s.removeToken.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RemovePushTokenCommand) bool {
		return cmd.Token() == "ExponentPushToken[abc]"
	})).Return(nil).Once()

	rec := s.do(http.MethodPost, "/push-tokens", &s.consumer,
		`{"token":"ExponentPushToken[abc]","platform":"ios","deviceId":"iphone"}`)
	s.Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, "/push-tokens/ExponentPushToken%5Babc%5D", &s.consumer, "")
	s.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
}

func (s *RouterTestSuite) TestPushTokens_RejectsUnknownPlatform() {
	rec := s.do(http.MethodPost, "/push-tokens", &s.consumer, `{"token":"t","platform":"symbian"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   servers.ErrorCode
	}{
		{auth.ErrUnauthenticated, http.StatusUnauthorized, servers.Unauthorized},
		{fmt.Errorf("wrapped: %w", tracking.ErrUnauthorizedPublisher), http.StatusForbidden, servers.UnauthorizedPublisher},
		{order.ErrOrderIsClosed, http.StatusConflict, servers.Conflict},
		{errs.NewValueIsRequiredError("items"), http.StatusBadRequest, servers.ValidationFailed},
		{errs.NewValueIsOutOfRangeError("quantity", 0, 1, "unbounded"), http.StatusBadRequest, servers.ValidationFailed},
		{tracking.ErrBrokerStopped, http.StatusServiceUnavailable, servers.Internal},
		{echo.NewHTTPError(http.StatusNotFound, "Not Found"), http.StatusNotFound, servers.NotFound},
		{echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest, servers.ValidationFailed},
	}

	for _, tt := range tests {
		status, body := httpadapter.Classify(tt.err)

		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, body.Code, tt.err.Error())
	}

	_, body := httpadapter.Classify(fmt.Errorf("%w: 42", kernel.ErrInvalidLocation))
	require.Equal(t, servers.InvalidLocation, body.Code)
}
