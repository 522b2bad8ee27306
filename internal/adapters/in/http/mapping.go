package http

import (
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Money is rendered with two decimals, the precision prices are stored with.
const moneyPlaces = 2

func orderFromDomain(o *order.Order) servers.Order {
	items := o.Items()
	history := o.StatusHistory()
	totals := o.Totals()

	response := servers.Order{
		Id:              o.ID().Bytes(),
		UserId:          o.UserID().Bytes(),
		Status:          servers.OrderStatus(o.Status().String()),
		Items:           make([]servers.OrderItem, len(items)),
		Subtotal:        totals.Subtotal().StringFixed(moneyPlaces),
		DiscountTotal:   totals.DiscountTotal().StringFixed(moneyPlaces),
		Total:           totals.Total().StringFixed(moneyPlaces),
		CouponId:        optionalID(o.CouponID()),
		DeliveryAgentId: optionalID(o.DeliveryAgentID()),
		CreatedAt:       o.CreatedAt(),
		StatusHistory:   make([]servers.StatusChange, len(history)),
	}

	for i, item := range items {
		response.Items[i] = servers.OrderItem{
			ProductId: item.ProductID().Bytes(),
			VariantId: optionalID(item.VariantID()),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().StringFixed(moneyPlaces),
			LineTotal: item.LineTotal().StringFixed(moneyPlaces),
		}
	}
	for i, change := range history {
		response.StatusHistory[i] = servers.StatusChange{
			Status:  servers.OrderStatus(change.Status.String()),
			At:      change.At,
			ActorId: change.ActorID.Bytes(),
		}
	}

	return response
}

func orderFromView(v queries.GetOrderQueryResponse) servers.Order {
	response := servers.Order{
		Id:              v.ID.Bytes(),
		UserId:          v.UserID.Bytes(),
		Status:          servers.OrderStatus(v.Status.String()),
		Items:           make([]servers.OrderItem, len(v.Items)),
		Subtotal:        v.Subtotal.StringFixed(moneyPlaces),
		DiscountTotal:   v.DiscountTotal.StringFixed(moneyPlaces),
		Total:           v.Total.StringFixed(moneyPlaces),
		CouponId:        optionalID(v.CouponID),
		DeliveryAgentId: optionalID(v.DeliveryAgentID),
		CreatedAt:       v.CreatedAt,
		StatusHistory:   make([]servers.StatusChange, len(v.StatusHistory)),
	}

	for i, item := range v.Items {
		response.Items[i] = servers.OrderItem{
			ProductId: item.ProductID.Bytes(),
			VariantId: optionalID(item.VariantID),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(moneyPlaces),
			LineTotal: item.LineTotal.StringFixed(moneyPlaces),
		}
	}
	for i, change := range v.StatusHistory {
		response.StatusHistory[i] = servers.StatusChange{
			Status:  servers.OrderStatus(change.Status.String()),
			At:      change.At,
			ActorId: change.ActorID.Bytes(),
		}
	}

	return response
}

func optionalID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	v := id.Bytes()
	return &v
}
