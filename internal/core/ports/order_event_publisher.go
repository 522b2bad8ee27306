package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderEventPublisher forwards committed order events to other services.
type OrderEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event order.StatusChanged) error
}
