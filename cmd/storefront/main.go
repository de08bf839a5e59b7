package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load config", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logging.Error("Failed to init logger", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()

	logger := logging.NewLoggerV2("storefront-service")
	logging.Infof("Starting storefront-service on port %d", cfg.Server.Port)
	policy := cfg.Pricing.Policy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.NewSample()

	seed, err := repository.SampleOrders(policy)
	if err != nil {
		logger.Fatal("Failed to build sample orders", logging.Fields{"error": err.Error()})
	}
	orderRepo := repository.NewMemoryOrderRepository(logging.NewLoggerV2("order-repository"), seed...)

	carts := repository.NewCartStore(cfg.Cart.QuantityStep, cfg.Cart.IdleTTL)
	go carts.RunSweeper(ctx, cfg.Cart.SweepInterval, logging.NewLoggerV2("cart-sweeper"))

	checks := map[string]handlers.ReadinessCheck{}

	var idem repository.IdempotencyStore
	if cfg.Features.EnableRedisIdempotency {
		rdb := repository.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not reachable at startup", logging.Fields{"error": err.Error()})
		}
		idem = repository.NewRedisIdempotencyStore(rdb, cfg.Redis.TTL, logging.NewLoggerV2("idempotency"))
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	} else {
		idem = repository.NewMemoryIdempotencyStore(cfg.Redis.TTL)
	}

	var publisher events.Publisher
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logging.NewLoggerV2("event-publisher"))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		publisher = events.NewLogPublisher(logging.NewLoggerV2("event-publisher"))
	}

	pricingService := service.NewPricingService(cat, policy)
	cartService := service.NewCartService(cat, carts, policy)
	checkoutService := service.NewCheckoutService(cartService, cat, orderRepo, idem, publisher, policy)
	orderService := service.NewOrderService(orderRepo, cartService, cat, publisher)

	h := handlers.NewHandlers(cat, pricingService, cartService, checkoutService, orderService, cfg, checks)
	srv := server.New(h, cfg, logging.NewLoggerV2("http"))

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                     cfg.Server.Port,
			"version":                  cfg.Version,
			"enable_order_events":      cfg.Features.EnableOrderEvents,
			"enable_status_consumer":   cfg.Features.EnableStatusConsumer,
			"enable_redis_idempotency": cfg.Features.EnableRedisIdempotency,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var consumer *events.KafkaConsumer
	if cfg.Features.EnableStatusConsumer {
		consumer = events.NewKafkaConsumer(cfg.Kafka, orderService, logging.NewLoggerV2("event-consumer"))
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if consumer != nil {
		consumer.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}
