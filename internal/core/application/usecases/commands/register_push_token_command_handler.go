package commands

import (
	"context"
)

// RegisterPushTokenCommandHandler upserts device tokens. A token that was
// registered to another user moves to the caller.
type RegisterPushTokenCommandHandler struct {
	uowFactory PushTokenUoWFactory
}

func NewRegisterPushTokenCommandHandler(uowFactory PushTokenUoWFactory) RegisterPushTokenCommandHandler {
	return RegisterPushTokenCommandHandler{uowFactory: uowFactory}
}

func (h *RegisterPushTokenCommandHandler) Handle(ctx context.Context, cmd RegisterPushTokenCommand) error {
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

	if err := uow.PushTokenRepository().Upsert(ctx, cmd.Token()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
