package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/insany/shop/internal"
	"github.com/insany/shop/internal/billing"
	"github.com/insany/shop/internal/cart"
	"github.com/insany/shop/internal/events"
	"github.com/insany/shop/internal/handler/admin"
	"github.com/insany/shop/internal/handler/storefront"
	"github.com/insany/shop/internal/handler/webhook"
	"github.com/insany/shop/internal/middleware"
	"github.com/insany/shop/internal/postgres"
	"github.com/insany/shop/internal/price"
	"github.com/insany/shop/internal/router"
	"github.com/insany/shop/internal/routes"
	"github.com/insany/shop/internal/service"
	"github.com/insany/shop/internal/shipping"
	"github.com/insany/shop/internal/wishlist"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	secure := cfg.Env == "prod"

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)
	logger.Info().Msg("database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer redisClient.Close()
	cartPersister := cart.NewRedisPersister(redisClient)
	wishlistPersister := wishlist.NewRedisPersister(redisClient)
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connection established")

	var publisher events.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info().Str("url", cfg.NATS.URL).Msg("nats connection established")
	} else {
		logger.Warn().Msg("nats url not configured, order events disabled")
	}

	billingProvider, err := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("stripe initialization failed: %w", err)
	}
	shippingProvider := shipping.NewFlatRateProvider(cfg.Shipping.Rates)

	currency := price.CurrencyForLocale(cfg.DefaultLocale)
	productService := service.NewProductService(store, logger)
	orderService := service.NewOrderService(store, publisher, cartPersister, logger)
	wishlistService := service.NewWishlistService(store, logger)
	checkoutService := service.NewCheckoutService(
		billingProvider,
		shippingProvider,
		cfg.Coupons,
		cfg.BaseURL,
		currency,
		logger,
	)

	r := router.New(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recover,
		middleware.Metrics,
		middleware.MaxBodySize(1<<20),
	)
	routes.Register(r, routes.Deps{
		Products:      storefront.NewProductHandler(productService, cfg.DefaultLocale),
		Cart:          storefront.NewCartHandler(cartPersister, productService, cfg.DefaultLocale, secure, logger),
		Checkout:      storefront.NewCheckoutHandler(checkoutService, cartPersister, logger),
		Wishlist:      storefront.NewWishlistHandler(wishlistPersister, wishlistService, secure, logger),
		Orders:        storefront.NewOrderHandler(orderService, cfg.DefaultLocale),
		Webhook:       webhook.NewStripeHandler(billingProvider, orderService),
		AdminProducts: admin.NewProductHandler(productService),
		AdminOrders:   admin.NewOrderHandler(orderService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
