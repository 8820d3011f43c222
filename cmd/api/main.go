package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/dataranlabs/storefront-backend/api/controllers"
	"github.com/dataranlabs/storefront-backend/api/routes"
	cartsvc "github.com/dataranlabs/storefront-backend/internal/cart"
	"github.com/dataranlabs/storefront-backend/internal/catalog"
	"github.com/dataranlabs/storefront-backend/internal/digest"
	eventsvc "github.com/dataranlabs/storefront-backend/internal/events"
	"github.com/dataranlabs/storefront-backend/internal/inventory"
	ordersvc "github.com/dataranlabs/storefront-backend/internal/orders"
	"github.com/dataranlabs/storefront-backend/pkg/cache"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/config"
	"github.com/dataranlabs/storefront-backend/pkg/eventsapi"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store := cache.New(cfg.Cache.MaxEntries, cfg.Cache.DefaultTTL)

	commerceClient, err := commerce.NewClient(cfg.Commerce, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commerce client", err)
		os.Exit(1)
	}
	eventsClient, err := eventsapi.NewClient(cfg.Events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create events client", err)
		os.Exit(1)
	}

	// Redis is optional: without it carts persist in process memory for
	// the lifetime of the instance.
	var redisClient *redis.Client
	var sessions cartsvc.SessionStore = cartsvc.NewMemorySessionStore()
	var readiness controllers.ReadinessProbe
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		redisSessions, err := cartsvc.NewRedisSessionStore(redisClient, cfg.Session.IdleTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create redis session store", err)
			os.Exit(1)
		}
		sessions = redisSessions
		readiness = redisClient
	}

	catalogService, err := catalog.NewService(commerceClient, store.Namespace("products", cfg.Cache.ProductsTTL), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	inventoryService, err := inventory.NewService(commerceClient, store.Namespace("inventory", cfg.Cache.InventoryTTL), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}
	eventsService, err := eventsvc.NewService(eventsClient, store.Namespace("events", cfg.Cache.EventsTTL), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(commerceClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	digestService, err := digest.NewService(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create digest service", err)
		os.Exit(1)
	}

	cartManager := cartsvc.NewManager(cartsvc.StoreDeps{
		Sessions:        sessions,
		Checker:         inventoryService,
		Checkout:        commerceClient,
		Config:          cfg.Cart,
		DefaultCurrency: cfg.Commerce.DefaultCurrency,
		Logger:          logg,
	}, cfg.Session.IdleTTL)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, readiness, cartManager,
			catalogService, inventoryService, eventsService, ordersService, digestService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		err := multierr.Combine(
			server.Shutdown(shutdownCtx),
			cartManager.Close(),
		)
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
