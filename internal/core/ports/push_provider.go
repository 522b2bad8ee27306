package ports

import (
	"context"

	"orderflow/internal/core/domain/model/notification"
)

// PushProvider sends one push message to one device token.
//
// Error contract:
//   - errors wrapping notification.ErrTokenUnregistered mean the token is dead
//     and must be pruned
//   - errors wrapping notification.ErrProviderUnavailable are transient and
//     may be retried
//   - any other error is permanent for this message
type PushProvider interface {
	Send(ctx context.Context, token string, msg notification.Message) error
}
