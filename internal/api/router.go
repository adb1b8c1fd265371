package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carsale/marketplace-api/docs"
	"github.com/carsale/marketplace-api/internal/api/handler"
	"github.com/carsale/marketplace-api/internal/api/middleware"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/policy"
	"github.com/carsale/marketplace-api/internal/core/ports"
	"github.com/carsale/marketplace-api/internal/infrastructure/config"
	"github.com/carsale/marketplace-api/internal/infrastructure/http/handlers"
)

const apiVersion = "1.0.0"

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Brands     ports.BrandService
	Categories ports.CategoryService
	Cars       ports.CarService
	Favorites  ports.FavoriteService
	Sales      ports.SaleService
}

// Dependencies holds everything NewRouter wires together.
type Dependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Services Services

	// Views counts car views off the request path. Nil records them inline.
	Views handler.ViewQueue
	// RateLimitStore backs the per-client limiter. Nil disables it.
	RateLimitStore echomiddleware.RateLimiterStore
	// Checks are the readiness probes by dependency name.
	Checks map[string]handlers.Check
	// Registry receives the HTTP metrics. Nil uses the prometheus default.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	cfg := d.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(cfg)))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.Gzip())
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.BodyLimit))

	promCfg := echoprometheus.MiddlewareConfig{Namespace: "marketplace"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		handlerCfg.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Probes, metrics and docs (no auth required) ---
	health := handlers.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")
	if d.RateLimitStore != nil {
		v1.Use(rateLimiter(d.RateLimitStore))
	}
	v1.Use(middleware.Authenticate(d.Services.Auth))
	v1.GET("", banner)

	svc := d.Services
	authed := middleware.RequireAuth()

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Auth, svc.Users, handler.CookieConfig{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Auth.RefreshTTL,
	})
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authed)
	auth.GET("/profile", authHandler.Profile, authed)
	auth.PUT("/profile", authHandler.UpdateProfile, authed)

	// --- Users ---
	userHandler := handler.NewUserHandler(svc.Users)
	users := v1.Group("/users")
	users.GET("", userHandler.List, middleware.Authorize(policy.ResourceUser, policy.ActionList))
	users.PATCH("/:id/status", userHandler.SetStatus, middleware.Authorize(policy.ResourceUser, policy.ActionUpdate))

	// --- Catalog ---
	crud(v1.Group("/brands"), policy.ResourceBrand, handler.NewBrandHandler(svc.Brands))
	crud(v1.Group("/categories"), policy.ResourceCategory, handler.NewCategoryHandler(svc.Categories))
	crud(v1.Group("/cars"), policy.ResourceCar, handler.NewCarHandler(svc.Cars, d.Views, d.Logger))

	// --- Favorites ---
	favHandler := handler.NewFavoriteHandler(svc.Favorites)
	favorites := v1.Group("/favorites")
	favorites.GET("", favHandler.List, middleware.Authorize(policy.ResourceFavorite, policy.ActionList))
	favorites.POST("", favHandler.Create, middleware.Authorize(policy.ResourceFavorite, policy.ActionCreate))
	favorites.DELETE("/:id", favHandler.Delete, middleware.Authorize(policy.ResourceFavorite, policy.ActionDelete))

	// --- Sales ---
	crud(v1.Group("/sales"), policy.ResourceSale, handler.NewSaleHandler(svc.Sales))

	return e
}

type crudHandler interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// crud registers the five resource routes, each behind its policy rule.
func crud(g *echo.Group, resource policy.Resource, h crudHandler) {
	g.GET("", h.List, middleware.Authorize(resource, policy.ActionList))
	g.GET("/:id", h.Get, middleware.Authorize(resource, policy.ActionRead))
	g.POST("", h.Create, middleware.Authorize(resource, policy.ActionCreate))
	g.PUT("/:id", h.Update, middleware.Authorize(resource, policy.ActionUpdate))
	g.DELETE("/:id", h.Delete, middleware.Authorize(resource, policy.ActionDelete))
}

func corsConfig(cfg *config.Config) echomiddleware.CORSConfig {
	cc := echomiddleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
	}
	if cfg.IsDevelopment() {
		cc.AllowOrigins = nil
		cc.AllowOriginFunc = func(string) (bool, error) { return true, nil }
	}
	return cc
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func rateLimiter(store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	})
}

// banner describes the API.
//
// @Summary      API information
// @Tags         meta
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       / [get]
func banner(c echo.Context) error {
	return response.Success(c, http.StatusOK, "Car Marketplace API", map[string]any{
		"version": apiVersion,
		"docs":    "/swagger/index.html",
		"time":    time.Now().UTC(),
	})
}
