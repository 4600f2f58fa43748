package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/cramsheets/cramsheets-backend/api/routes"
	authsvc "github.com/cramsheets/cramsheets-backend/internal/auth"
	cartsvc "github.com/cramsheets/cramsheets-backend/internal/cart"
	catalogsvc "github.com/cramsheets/cramsheets-backend/internal/catalog"
	checkoutsvc "github.com/cramsheets/cramsheets-backend/internal/checkout"
	entsvc "github.com/cramsheets/cramsheets-backend/internal/entitlements"
	ordersvc "github.com/cramsheets/cramsheets-backend/internal/orders"
	paymentsvc "github.com/cramsheets/cramsheets-backend/internal/payments"
	"github.com/cramsheets/cramsheets-backend/internal/users"
	"github.com/cramsheets/cramsheets-backend/pkg/config"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
	"github.com/cramsheets/cramsheets-backend/pkg/metrics"
	"github.com/cramsheets/cramsheets-backend/pkg/migrate"
	pkgredis "github.com/cramsheets/cramsheets-backend/pkg/redis"
	"github.com/cramsheets/cramsheets-backend/pkg/storage"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		if err := closeAll(dbClient, redisClient); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	signer, err := storage.NewSigner(cfg.Download)
	if err != nil {
		logg.Error(context.Background(), "failed to build download signer", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	purchasesRepo := entsvc.NewRepository(dbClient.DB())
	requestsRepo := paymentsvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(usersRepo, cfg.JWT, cfg.Password)
	exitOnError(logg, "auth service", err)

	catalogService, err := catalogsvc.NewService(catalogRepo)
	exitOnError(logg, "catalog service", err)

	entitlementsService, err := entsvc.NewService(purchasesRepo, catalogRepo, signer)
	exitOnError(logg, "entitlements service", err)

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, entitlementsService, cfg.Pricing.BundleDiscountPercent)
	exitOnError(logg, "cart service", err)

	checkoutService, err := checkoutsvc.NewService(dbClient, cartRepo, ordersRepo, purchasesRepo, cfg.Pricing.BundleDiscountPercent)
	exitOnError(logg, "checkout service", err)

	ordersService, err := ordersvc.NewService(ordersRepo)
	exitOnError(logg, "orders service", err)

	paymentsService, err := paymentsvc.NewService(dbClient, ordersRepo, requestsRepo, purchasesRepo, cfg.Payment)
	exitOnError(logg, "payments service", err)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			metrics.Handler(registry),
			authService,
			catalogService,
			cartService,
			checkoutService,
			ordersService,
			paymentsService,
			entitlementsService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func closeAll(dbClient *db.Client, redisClient *pkgredis.Client) error {
	var err error
	if dbClient != nil {
		err = multierr.Append(err, dbClient.Close())
	}
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	return err
}

func exitOnError(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
