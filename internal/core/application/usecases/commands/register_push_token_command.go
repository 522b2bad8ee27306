package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/pkg/guard"
)

var ErrRegisterPushTokenCommandIsNotConstructed = errors.New(
	"RegisterPushTokenCommand must be created via NewRegisterPushTokenCommand constructor",
)

// RegisterPushTokenCommand registers a device of the calling user for push.
//
// Example:
//
//	cmd, err := NewRegisterPushTokenCommand(actor, "ExponentPushToken[xyz]", "ios", "iphone-15")
type RegisterPushTokenCommand struct { //nolint:recvcheck //using for validation
	token notification.PushToken

	guard guard.ConstructorGuard
}

func NewRegisterPushTokenCommand(
	actor kernel.Actor,
	token string,
	platform string,
	deviceID string,
) (RegisterPushTokenCommand, error) {
	p, err := notification.ParsePlatform(platform)
	if err != nil {
		return RegisterPushTokenCommand{}, err
	}

	pt, err := notification.NewPushToken(actor.UserID, token, p, deviceID)
	if err != nil {
		return RegisterPushTokenCommand{}, err
	}

	return RegisterPushTokenCommand{
		token: pt,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterPushTokenCommand) Validate() error {
	return c.guard.Validate(ErrRegisterPushTokenCommandIsNotConstructed)
}

func (c RegisterPushTokenCommand) Token() notification.PushToken {
	return c.token
}
