package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"orderflow/internal/adapters/in/auth"
	"orderflow/internal/core/application/tracking"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Classify maps an application error to its HTTP status and wire error.
// The order of checks matters: domain sentinels are matched before the
// generic validation sentinels they may also wrap.
func Classify(err error) (int, servers.Error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, apiError(servers.Unauthorized, "authentication required")
	case errors.Is(err, tracking.ErrUnauthorizedPublisher):
		return http.StatusForbidden, apiError(servers.UnauthorizedPublisher, err.Error())
	case errors.Is(err, kernel.ErrForbidden):
		return http.StatusForbidden, apiError(servers.Forbidden, err.Error())
	case errors.Is(err, order.ErrStaleTransition):
		return http.StatusConflict, apiError(servers.StaleTransition, err.Error())
	case errors.Is(err, order.ErrIllegalTransition):
		return http.StatusConflict, apiError(servers.IllegalTransition, err.Error())
	case errors.Is(err, order.ErrOrderIsClosed), errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict, apiError(servers.Conflict, err.Error())
	case errors.Is(err, kernel.ErrInvalidLocation):
		return http.StatusUnprocessableEntity, apiError(servers.InvalidLocation, err.Error())
	case errors.Is(err, promotion.ErrCouponInvalid):
		return http.StatusUnprocessableEntity, apiError(servers.CouponInvalid, err.Error())
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, apiError(servers.NotFound, err.Error())
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, kernel.ErrUUIDIsNotConstructed):
		return http.StatusBadRequest, apiError(servers.ValidationFailed, err.Error())
	case errors.Is(err, tracking.ErrBrokerStopped):
		return http.StatusServiceUnavailable, apiError(servers.Internal, "service is shutting down")
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, apiError(codeForStatus(he.Code), fmt.Sprint(he.Message))
	}

	return http.StatusInternalServerError, apiError(servers.Internal, "internal error")
}

// NewErrorHandler renders every error that reaches echo as servers.Error.
// Unclassified failures are logged; their details never reach the client.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := Classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}

func apiError(code servers.ErrorCode, message string) servers.Error {
	return servers.Error{Code: code, Message: message}
}

func codeForStatus(status int) servers.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return servers.Unauthorized
	case http.StatusForbidden:
		return servers.Forbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return servers.NotFound
	case http.StatusConflict:
		return servers.Conflict
	}
	if status >= http.StatusInternalServerError {
		return servers.Internal
	}
	return servers.ValidationFailed
}
