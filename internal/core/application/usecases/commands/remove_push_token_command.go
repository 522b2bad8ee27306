package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRemovePushTokenCommandIsNotConstructed = errors.New(
	"RemovePushTokenCommand must be created via NewRemovePushTokenCommand constructor",
)

// RemovePushTokenCommand unregisters one device of the calling user, e.g. on
// logout.
type RemovePushTokenCommand struct { //nolint:recvcheck //using for validation
	userID kernel.UUID
	token  string

	guard guard.ConstructorGuard
}

func NewRemovePushTokenCommand(actor kernel.Actor, token string) (RemovePushTokenCommand, error) {
	if err := actor.UserID.Validate(); err != nil {
		return RemovePushTokenCommand{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return RemovePushTokenCommand{}, errs.NewValueIsRequiredError("token")
	}

	return RemovePushTokenCommand{
		userID: actor.UserID,
		token:  token,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RemovePushTokenCommand) Validate() error {
	return c.guard.Validate(ErrRemovePushTokenCommandIsNotConstructed)
}

func (c RemovePushTokenCommand) UserID() kernel.UUID {
	return c.userID
}

func (c RemovePushTokenCommand) Token() string {
	return c.token
}
