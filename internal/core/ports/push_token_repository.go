package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
)

// PushTokenRepository is the registry of device tokens.
type PushTokenRepository interface {
	// Upsert stores the token for its user. A token already registered to
	// another user is moved to the new one.
	Upsert(ctx context.Context, token notification.PushToken) error

	// ListByUser returns every live token of userID.
	ListByUser(ctx context.Context, userID kernel.UUID) ([]notification.PushToken, error)

	// Delete removes a token regardless of owner. Deleting an unknown token is
	// not an error.
	Delete(ctx context.Context, token string) error

	// DeleteForUser removes token only if it belongs to userID.
	// Returns errs.ObjectNotFoundError otherwise.
	DeleteForUser(ctx context.Context, userID kernel.UUID, token string) error
}
