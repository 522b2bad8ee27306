package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler lists non-terminal orders, oldest first.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			user_id,
			status,
			total,
			delivery_agent_id,
			created_at
		FROM orders
		WHERE status NOT IN (?, ?)`
	args := []any{order.Delivered.String(), order.Cancelled.String()}

	actor := query.Actor()
	switch {
	case actor.IsConsumer():
		sql += ` AND user_id = ?`
		args = append(args, actor.UserID.Bytes())
	case actor.IsDelivery():
		sql += ` AND delivery_agent_id = ?`
		args = append(args, actor.UserID.Bytes())
	}
	sql += ` ORDER BY created_at, id`

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetActiveOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			resp       GetActiveOrdersQueryResponse
			id, userID uuid.UUID
			status     string
			agent      uuid.NullUUID
			createdAt  time.Time
		)

		if err = rows.Scan(&id, &userID, &status, &resp.Total, &agent, &createdAt); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.UserID, err = kernel.UUIDFromBytes(userID[:]); err != nil {
			return nil, err
		}
		if resp.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if resp.DeliveryAgentID, err = nullableID(agent); err != nil {
			return nil, err
		}
		resp.CreatedAt = createdAt.UTC()

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
