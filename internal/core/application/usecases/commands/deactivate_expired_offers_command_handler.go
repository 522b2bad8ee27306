package commands

import (
	"context"
)

type DeactivateExpiredOffersCommandHandler struct {
	uowFactory OfferUoWFactory
}

func NewDeactivateExpiredOffersCommandHandler(uowFactory OfferUoWFactory) DeactivateExpiredOffersCommandHandler {
	return DeactivateExpiredOffersCommandHandler{uowFactory: uowFactory}
}

// Handle returns how many offers were switched off.
func (h *DeactivateExpiredOffersCommandHandler) Handle(
	ctx context.Context,
	cmd DeactivateExpiredOffersCommand,
) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	n, err := uow.OfferRepository().DeactivateExpired(ctx, cmd.Now())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return n, nil
}
