package auth

import (
	"net/http"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const actorKey = "orderflow.actor"

// Skipper reports whether a request may pass without a token.
type Skipper func(c echo.Context) bool

// Middleware verifies the Authorization header and stores the actor on the
// echo context. Unauthenticated requests are answered by onError.
func Middleware(verifier *Verifier, skip Skipper, onError func(c echo.Context, err error) error) echo.MiddlewareFunc {
	if onError == nil {
		onError = func(echo.Context, error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			actor, err := verifier.VerifyHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return onError(c, err)
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by Middleware.
func ActorFrom(c echo.Context) (kernel.Actor, bool) {
	actor, ok := c.Get(actorKey).(kernel.Actor)
	return actor, ok
}

// WithActor stores actor on c. Tests use it to bypass token handling.
func WithActor(c echo.Context, actor kernel.Actor) {
	c.Set(actorKey, actor)
}
