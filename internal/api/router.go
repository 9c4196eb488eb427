package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/accounts-service/docs"
	"github.com/99minutos/accounts-service/internal/api/handler"
	"github.com/99minutos/accounts-service/internal/api/middleware"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Zero-valued metrics fields
// fall back to the default Prometheus registry.
type Deps struct {
	Log         zerolog.Logger
	AuthService ports.AuthService
	UserService ports.UserService
	Tokens      ports.TokenManager

	// Readiness checks keyed by dependency name, e.g. "postgres", "redis".
	Readiness map[string]handler.PingFunc

	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
	EnableSwagger     bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
// API routes are served both at the root and under /api.
func NewRouter(d Deps) *echo.Echo {
	if d.MetricsRegisterer == nil {
		d.MetricsRegisterer = prometheus.DefaultRegisterer
	}
	if d.MetricsGatherer == nil {
		d.MetricsGatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "accounts_http",
		Registerer: d.MetricsRegisterer,
	}))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Readiness)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: d.MetricsGatherer,
	}))
	if d.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	authHandler := handler.NewAuthHandler(d.AuthService)
	userHandler := handler.NewUserHandler(d.UserService)
	authenticate := middleware.Authenticate(d.Tokens, d.UserService)

	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		auth := g.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		users := g.Group("/users", authenticate)
		users.GET("/me", userHandler.Me)
		users.GET("", userHandler.List, middleware.RequireAdmin())
		users.GET("/:id", userHandler.Get, middleware.RequireOwnerOrAdmin("id"))
		users.PATCH("/:id/status", userHandler.SetStatus, middleware.RequireOwnerOrAdmin("id"))
	}

	return e
}
