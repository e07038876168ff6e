package http

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

//go:embed openapi.json
var openAPIDocument []byte

// SwaggerInfo serves openapi.json to the Swagger UI under /swagger/.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Title:            "Marketplace order core",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(openAPIDocument),
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Options configures the router.
type Options struct {
	ServiceName    string
	TracingEnabled bool
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewEcho builds the router: health and metrics endpoints, the Swagger UI, request validation
// against openapi.json and the API routes of server.
func NewEcho(server ServerInterface, opts Options) (*echo.Echo, error) {
	l := logger.OrNop(opts.Logger).With(zap.String("component", "http"))

	validator, err := newRequestValidator(openAPIDocument)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		l.Debug("http request failed", zap.String("path", c.Path()), zap.Error(err))
		errorHandler(err, c)
	}

	if opts.TracingEnabled {
		e.Use(otelecho.Middleware(opts.ServiceName))
	}
	e.Use(metricsMiddleware(opts.Metrics))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("", validator.middleware)
	RegisterHandlers(api, server)

	return e, nil
}

func metricsMiddleware(m *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			m.ObserveRequest(c.Path(), status, time.Since(start))
			return err
		}
	}
}

type requestValidator struct {
	router routers.Router
}

func newRequestValidator(document []byte) (*requestValidator, error) {
	doc, err := openapi3.NewLoader().LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &requestValidator{router: router}, nil
}

// middleware rejects requests whose body or parameters do not match openapi.json.
// Requests for paths the document does not describe pass through untouched.
func (v *requestValidator) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		route, pathParams, err := v.router.FindRoute(req)
		if err != nil {
			return next(c)
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
			return c.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Kind:    kindBadRequest,
				Message: err.Error(),
			})
		}
		return next(c)
	}
}
