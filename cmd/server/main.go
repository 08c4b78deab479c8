package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"shopmall_app_echo/internal/config"
	"shopmall_app_echo/internal/events"
	"shopmall_app_echo/internal/handlers"
	"shopmall_app_echo/internal/kafka"
	"shopmall_app_echo/internal/logging"
	appMiddleware "shopmall_app_echo/internal/middleware"
	"shopmall_app_echo/internal/services"
	"shopmall_app_echo/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.ServiceName)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	// Amount quote cache
	cache, err := services.NewAmountCache(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	// Kafka producer for post-payment events
	producer := kafka.NewProducer(cfg.KafkaBrokers, events.TopicPaymentCompleted, logger)
	defer producer.Close()

	gateway := services.NewGatewayClient()
	st := store.NewGormStore(db)
	paymentService := services.NewPaymentService(st, gateway, producer, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Middleware
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentService, st, cache)

	// Protected routes
	api := e.Group("/api", appMiddleware.RequireIdentity())
	api.POST("/purchases/:id/payment/prepare", paymentHandler.PreparePayment)
	api.POST("/purchases/:id/payment/confirm", paymentHandler.ConfirmPayment)
	api.POST("/payments/:id/cancel", paymentHandler.CancelPayment)
	api.GET("/purchases/:id", paymentHandler.GetPurchase)

	logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}
