package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/events"
	"github.com/saif87211/SkFoodDelight/internal/handler"
	"github.com/saif87211/SkFoodDelight/internal/payment"
	"github.com/saif87211/SkFoodDelight/internal/repository"
	"github.com/saif87211/SkFoodDelight/internal/service"
	"github.com/saif87211/SkFoodDelight/pkg/config"
	"github.com/saif87211/SkFoodDelight/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	deliveryFee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil {
		logger.Fatal("Invalid DELIVERY_FEE", zap.String("value", cfg.DeliveryFee), zap.Error(err))
	}
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		logger.Fatal("Invalid TAX_RATE", zap.String("value", cfg.TaxRate), zap.Error(err))
	}

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("currency", cfg.Currency),
		zap.Duration("gateway_timeout", cfg.GatewayTimeout))

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	gateway := payment.NewRazorpayGateway(
		cfg.RazorpayKeyID,
		cfg.RazorpaySecret,
		cfg.RazorpayWebhookSecret,
		cfg.GatewayTimeout,
		logger,
	)

	hub := events.NewHub(cfg.StreamBuffer, logger)
	defer hub.Close()

	var producer *events.Producer
	var publisher service.IntegrationPublisher
	if cfg.KafkaBrokers != "" {
		producer = events.NewProducer(cfg.KafkaBrokers, logger)
		publisher = producer
		defer producer.Close()
	}

	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	orderService := service.NewOrderService(orderRepo, cartRepo, statsRepo, gateway, hub, publisher, logger, service.Config{
		DeliveryFee: deliveryFee,
		TaxRate:     taxRate,
		Currency:    cfg.Currency,
	})

	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(orderService, logger)
	adminHandler := handler.NewAdminHandler(orderService, logger)
	streamHandler := handler.NewStreamHandler(hub, logger)
	cartHandler := handler.NewCartHandler(cartRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			status := gin.H{
				"status":           "healthy",
				"service":          "sk-food-delight",
				"subscribers":      hub.SubscriberCount(),
				"dropped_sessions": hub.Dropped(),
			}
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				status["database"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "healthy"
			if producer != nil {
				if err := producer.HealthCheck(); err != nil {
					status["kafka"] = "unhealthy"
					c.JSON(http.StatusServiceUnavailable, status)
					return
				}
				status["kafka"] = "healthy"
			}
			c.JSON(http.StatusOK, status)
		})

		user := v1.Group("")
		user.Use(middleware.Identity())
		{
			user.GET("/cart", cartHandler.List)
			user.POST("/cart", cartHandler.Add)
			user.DELETE("/cart", cartHandler.Clear)
			user.DELETE("/cart/:id", cartHandler.Remove)

			user.POST("/payments", paymentHandler.CreateIntent)
			user.POST("/payments/verify", paymentHandler.Verify)

			user.POST("/orders", orderHandler.Checkout)
			user.GET("/orders", orderHandler.ListOrders)
			user.GET("/orders/:id", orderHandler.GetOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.Identity(), middleware.RequireAdmin())
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.OrderDetail)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateStatus)
			admin.GET("/stream", streamHandler.Orders)
			admin.GET("/dashboard", adminHandler.Dashboard)
		}
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
