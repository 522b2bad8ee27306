package commands

import (
	"errors"
	"time"

	"orderflow/internal/pkg/guard"
)

var ErrDeactivateExpiredOffersCommandIsNotConstructed = errors.New(
	"DeactivateExpiredOffersCommand must be created via NewDeactivateExpiredOffersCommand constructor",
)

// DeactivateExpiredOffersCommand switches off every offer whose window ended
// before Now. It is issued by the offer expiry job.
type DeactivateExpiredOffersCommand struct {
	now time.Time

	guard guard.ConstructorGuard
}

func NewDeactivateExpiredOffersCommand(now time.Time) DeactivateExpiredOffersCommand {
	return DeactivateExpiredOffersCommand{
		now:   now.UTC(),
		guard: guard.NewConstructorGuard(),
	}
}

func (c DeactivateExpiredOffersCommand) Validate() error {
	return c.guard.Validate(ErrDeactivateExpiredOffersCommandIsNotConstructed)
}

func (c DeactivateExpiredOffersCommand) Now() time.Time {
	return c.now
}
