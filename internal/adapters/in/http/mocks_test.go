package http_test

import (
	"context"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
)

type MockPlaceOrderHandler struct{ mock.Mock }

func (m *MockPlaceOrderHandler) Handle(ctx context.Context, cmd commands.PlaceOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockTransitionOrderHandler struct{ mock.Mock }

func (m *MockTransitionOrderHandler) Handle(
	ctx context.Context,
	cmd commands.TransitionOrderCommand,
) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockAssignAgentHandler struct{ mock.Mock }

func (m *MockAssignAgentHandler) Handle(ctx context.Context, cmd commands.AssignAgentCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockPublishLocationHandler struct{ mock.Mock }

func (m *MockPublishLocationHandler) Handle(ctx context.Context, cmd commands.PublishLocationCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockRegisterPushTokenHandler struct{ mock.Mock }

func (m *MockRegisterPushTokenHandler) Handle(ctx context.Context, cmd commands.RegisterPushTokenCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockRemovePushTokenHandler struct{ mock.Mock }

func (m *MockRemovePushTokenHandler) Handle(ctx context.Context, cmd commands.RemovePushTokenCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockGetOrderHandler struct{ mock.Mock }

func (m *MockGetOrderHandler) Handle(
	ctx context.Context,
	query queries.GetOrderQuery,
) (queries.GetOrderQueryResponse, error) {
	args := m.Called(ctx, query)
	view, _ := args.Get(0).(queries.GetOrderQueryResponse)
	return view, args.Error(1)
}

type MockGetActiveOrdersHandler struct{ mock.Mock }

func (m *MockGetActiveOrdersHandler) Handle(
	ctx context.Context,
	query queries.GetActiveOrdersQuery,
) ([]queries.GetActiveOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]queries.GetActiveOrdersQueryResponse)
	return rows, args.Error(1)
}

type MockPricePreviewHandler struct{ mock.Mock }

func (m *MockPricePreviewHandler) Handle(ctx context.Context, query queries.PricePreviewQuery) (order.Totals, error) {
	args := m.Called(ctx, query)
	totals, _ := args.Get(0).(order.Totals)
	return totals, args.Error(1)
}
