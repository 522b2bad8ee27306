package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"orderflow/internal/adapters/in/auth"
	"orderflow/internal/adapters/in/http/apidocs"
	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	HealthPath   = "/health"
	MetricsPath  = "/metrics"
	RealtimePath = "/ws"
	docsPrefix   = "/swagger"
)

type RouterConfig struct {
	Logger   *slog.Logger
	Verifier *auth.Verifier
	Handlers Handlers

	// Realtime serves the websocket endpoint. It authenticates on its own
	// since browsers cannot set headers on the upgrade request.
	Realtime echo.HandlerFunc
}

// NewRouter builds the echo instance serving the public API.
func NewRouter(cfg RouterConfig) (*echo.Echo, error) {
	doc, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	if err = apidocs.Register(doc); err != nil {
		return nil, fmt.Errorf("failed to register api docs: %w", err)
	}

	validator, err := requestValidator(doc, isPublic)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(cfg.Logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(cfg.Logger))
	e.Use(metricsMiddleware())
	e.Use(auth.Middleware(cfg.Verifier, isPublic, func(c echo.Context, err error) error {
		return err
	}))
	e.Use(validator)

	e.GET(HealthPath, func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET(MetricsPath, echo.WrapHandler(promhttp.Handler()))
	e.GET(docsPrefix+"/*", apidocs.Handler())
	if cfg.Realtime != nil {
		e.GET(RealtimePath, cfg.Realtime)
	}

	servers.RegisterHandlers(e, NewServer(cfg.Handlers))

	return e, nil
}

func isPublic(c echo.Context) bool {
	switch path := c.Path(); path {
	case HealthPath, MetricsPath, RealtimePath:
		return true
	default:
		return strings.HasPrefix(path, docsPrefix+"/")
	}
}
