package notification

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrPushTokenIsNotConstructed = errors.New("PushToken must be created via NewPushToken constructor")

// Platform is the device family a token belongs to.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return p, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("platform", fmt.Errorf("%q is not a valid platform", s))
	}
}

// PushToken addresses one installed app instance. A user may hold several.
type PushToken struct { //nolint:recvcheck //using for validation
	userID   kernel.UUID
	token    string
	platform Platform
	deviceID string
	guard    guard.ConstructorGuard
}

func NewPushToken(userID kernel.UUID, token string, platform Platform, deviceID string) (PushToken, error) {
	pt := PushToken{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		pt.setUserID(userID),
		pt.setToken(token),
		pt.setPlatform(platform),
	); err != nil {
		return PushToken{}, err
	}
	pt.deviceID = strings.TrimSpace(deviceID)

	return pt, nil
}

func (p PushToken) Validate() error {
	return p.guard.Validate(ErrPushTokenIsNotConstructed)
}

func (p PushToken) UserID() kernel.UUID {
	return p.userID
}

func (p PushToken) Token() string {
	return p.token
}

func (p PushToken) Platform() Platform {
	return p.platform
}

func (p PushToken) DeviceID() string {
	return p.deviceID
}

func (p *PushToken) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.userID = id
	return nil
}

func (p *PushToken) setToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errs.NewValueIsRequiredError("token")
	}
	p.token = token
	return nil
}

func (p *PushToken) setPlatform(platform Platform) error {
	parsed, err := ParsePlatform(string(platform))
	if err != nil {
		return err
	}
	p.platform = parsed
	return nil
}
