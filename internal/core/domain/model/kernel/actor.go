package kernel

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Role is the platform role of an authenticated principal, as issued by the
// auth collaborator.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleConsumer Role = "consumer"
	RoleDelivery Role = "delivery"
)

// ParseRole validates a role claim.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleConsumer, RoleDelivery:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
	}
}

// Actor is the verified identity behind a request or connection.
type Actor struct {
	UserID UUID
	Role   Role
}

// NewActor validates both parts of an identity.
func NewActor(userID UUID, role Role) (Actor, error) {
	if err := userID.Validate(); err != nil {
		return Actor{}, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Role: role}, nil
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsDelivery() bool {
	return a.Role == RoleDelivery
}

func (a Actor) IsConsumer() bool {
	return a.Role == RoleConsumer
}

// ErrForbidden is returned when an authenticated actor may not perform an
// operation on a resource.
var ErrForbidden = errors.New("forbidden")
