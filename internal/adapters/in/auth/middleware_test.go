package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderflow/internal/adapters/in/auth"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	actor, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleConsumer)
	require.NoError(t, err)

	e := echo.New()
	e.Use(auth.Middleware(verifier, func(c echo.Context) bool {
		return c.Path() == "/health"
	}, nil))
	e.GET("/me", func(c echo.Context) error {
		got, ok := auth.ActorFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, got.UserID.String())
	})
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	t.Run("should expose the actor to handlers", func(t *testing.T) {
		token, err := verifier.Issue(actor, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, actor.UserID.String(), rec.Body.String())
	})

	t.Run("should answer 401 without a token", func(t *testing.T) {
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should let skipped routes through", func(t *testing.T) {
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
