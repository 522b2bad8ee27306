package apidocs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"orderflow/internal/adapters/in/http/apidocs"
	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ServesDocument(t *testing.T) {
	doc, err := servers.GetSwagger()
	require.NoError(t, err)
	require.NoError(t, apidocs.Register(doc))
	require.NoError(t, apidocs.Register(doc))

	e := echo.New()
	e.GET("/swagger/*", apidocs.Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/orders/{id}/transition")
}
