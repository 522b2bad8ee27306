package commands

import (
	"context"
)

// RemovePushTokenCommandHandler deletes a token only when it belongs to the
// caller. Unknown tokens surface as errs.ObjectNotFoundError.
type RemovePushTokenCommandHandler struct {
	uowFactory PushTokenUoWFactory
}

func NewRemovePushTokenCommandHandler(uowFactory PushTokenUoWFactory) RemovePushTokenCommandHandler {
	return RemovePushTokenCommandHandler{uowFactory: uowFactory}
}

func (h *RemovePushTokenCommandHandler) Handle(ctx context.Context, cmd RemovePushTokenCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.PushTokenRepository().DeleteForUser(ctx, cmd.UserID(), cmd.Token()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
