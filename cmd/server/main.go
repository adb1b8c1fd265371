// @title                       Car Marketplace API
// @version                     1.0
// @description                 Listings, catalog, favorites and sales for a car marketplace.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carsale/marketplace-api/internal/api"
	"github.com/carsale/marketplace-api/internal/api/handler"
	"github.com/carsale/marketplace-api/internal/core/service"
	"github.com/carsale/marketplace-api/internal/infrastructure/config"
	"github.com/carsale/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/carsale/marketplace-api/internal/infrastructure/db/redis"
	"github.com/carsale/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/carsale/marketplace-api/internal/infrastructure/queue"
	"github.com/carsale/marketplace-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "car-marketplace-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	repos := mongo.NewRepositories(db)
	if err := repos.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Redis is optional: without it the rate limiter counts per instance.
	window := time.Minute
	var rdb *goredis.Client
	var limiter echomiddleware.RateLimiterStore
	if cfg.HTTP.RateLimitPerMinute > 0 {
		limiter = redis.NewMemoryRateLimitStore(cfg.HTTP.RateLimitPerMinute, window)
	}
	if rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiting")
	} else {
		defer rdb.Close()
		if cfg.HTTP.RateLimitPerMinute > 0 {
			limiter = redis.NewRateLimitStore(rdb, cfg.HTTP.RateLimitPerMinute, window, log)
		}
	}

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	cars := service.NewCarService(service.CarRepos{
		Cars:       repos.Cars,
		Brands:     repos.Brands,
		Categories: repos.Categories,
		Users:      repos.Users,
		Favorites:  repos.Favorites,
	}, cfg.Cars.RecordViews, log)

	var views handler.ViewQueue
	if cfg.Cars.RecordViews {
		// Workers outlive the request context so queued views drain on shutdown.
		dispatcher := queue.NewViewDispatcher(0, cars, log)
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Stop()
		views = dispatcher
	}

	checks := map[string]handlers.Check{
		"mongo": handlers.MongoCheck(db),
		"redis": handlers.RedisCheck(rdb),
	}

	e := api.NewRouter(api.Dependencies{
		Config: cfg,
		Logger: log,
		Services: api.Services{
			Auth:       service.NewAuthService(repos.Users, tokens, cfg.Auth.BcryptCost, log),
			Users:      service.NewUserService(repos.Users, log),
			Brands:     service.NewBrandService(repos.Brands, log),
			Categories: service.NewCategoryService(repos.Categories, log),
			Cars:       cars,
			Favorites:  service.NewFavoriteService(repos.Favorites, repos.Cars, log),
			Sales:      service.NewSaleService(repos.Sales, repos.Cars, repos.Users, log),
		},
		Views:          views,
		RateLimitStore: limiter,
		Checks:         checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
