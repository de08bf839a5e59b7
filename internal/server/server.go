package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	http     *http.Server
	logger   *logging.LoggerV2
}

func New(h *handlers.Handlers, cfg *config.Config, logger *logging.LoggerV2) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Session(),
		middleware.Metrics(),
		middleware.Logging(logger),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}

	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Router exposes the engine for in-process tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/categories", s.handlers.ListCategories)
		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)
		v1.GET("/products/:id/quote", s.handlers.QuoteProduct)

		v1.POST("/pricing/quote", s.handlers.Quote)

		cart := v1.Group("/cart")
		{
			cart.GET("", s.handlers.GetCart)
			cart.DELETE("", s.handlers.ClearCart)
			cart.POST("/items", s.handlers.AddCartItem)
			cart.PATCH("/items/:sku", s.handlers.UpdateCartItem)
			cart.DELETE("/items/:sku", s.handlers.RemoveCartItem)
			cart.POST("/items/:sku/increment", s.handlers.IncrementCartItem)
			cart.POST("/items/:sku/decrement", s.handlers.DecrementCartItem)
			cart.PUT("/promo", s.handlers.ApplyPromoCode)
		}

		checkout := v1.Group("/checkout")
		{
			checkout.GET("/payment-methods", s.handlers.PaymentMethods)
			checkout.POST("/review", s.handlers.ReviewCheckout)
			checkout.POST("/orders", s.handlers.PlaceOrder)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", s.handlers.ListOrders)
			orders.GET("/:id", s.handlers.GetOrder)
			orders.POST("/:id/status", s.handlers.UpdateOrderStatus)
			orders.POST("/:id/cancel", s.handlers.CancelOrder)
			orders.POST("/:id/reorder", s.handlers.ReorderOrder)
		}
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.http.Addr})
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
