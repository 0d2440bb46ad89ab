package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/providex/supplier-registry/docs"
	"github.com/providex/supplier-registry/internal/api/handler"
	"github.com/providex/supplier-registry/internal/api/middleware"
	"github.com/providex/supplier-registry/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Registry ports.SupplierRegistry
	Logger   zerolog.Logger

	// AuthSecret enables the bearer-token guard on /v1 when non-empty.
	AuthSecret string
	// UserID returns the signed-in user; tokens must carry it as subject.
	UserID func() string
	// Ready reports whether the session is signed in.
	Ready func() bool
	// Checks are the readiness probes for configured backends.
	Checks map[string]handler.DependencyCheck

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "supplier_registry",
		Registerer: registerer,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Ready, deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – signed in and backends up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- v1 ---
	v1 := e.Group("/v1")
	if deps.AuthSecret != "" {
		v1.Use(middleware.Auth(deps.AuthSecret, deps.UserID))
	}

	supplierHandler := handler.NewSupplierHandler(deps.Registry, deps.Logger)
	v1.POST("/suppliers", supplierHandler.Create)
	v1.GET("/suppliers", supplierHandler.List)
	v1.GET("/suppliers/stream", supplierHandler.Stream)
	v1.GET("/suppliers/:identifier", supplierHandler.Get)

	cnpjHandler := handler.NewCNPJHandler()
	v1.GET("/cnpj/format", cnpjHandler.Format)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
