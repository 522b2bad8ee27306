// Package apidocs serves the OpenAPI document through swagger-ui.
package apidocs

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

const instanceName = "orderflow"

type document struct {
	json string
}

func (d document) ReadDoc() string {
	return d.json
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register publishes doc for the swagger handler. swag panics on duplicate
// registration, so only the first call has an effect.
func Register(doc *openapi3.T) error {
	registerOnce.Do(func() {
		data, err := doc.MarshalJSON()
		if err != nil {
			registerErr = err
			return
		}
		swag.Register(instanceName, document{json: string(data)})
	})
	return registerErr
}

// Handler serves swagger-ui and doc.json.
func Handler() echo.HandlerFunc {
	return echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(instanceName))
}
