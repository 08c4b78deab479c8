package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"shopmall_app_echo/internal/config"
	"shopmall_app_echo/internal/events"
	"shopmall_app_echo/internal/kafka"
	"shopmall_app_echo/internal/logging"
	"shopmall_app_echo/internal/services"
)

const consumerGroup = "payment-cache-evictor"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()
	logger, err := logging.New("payment-worker")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	cache, err := services.NewAmountCache(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down worker")
		cancel()
	}()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, events.TopicPaymentCompleted, logger)

	logger.Info("worker started",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", events.TopicPaymentCompleted),
	)

	handler := func(ctx context.Context, m kafkago.Message) error {
		var env events.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			// Malformed messages are dropped, redelivery will not fix them.
			logger.Error("dropping malformed event",
				zap.Int64("offset", m.Offset), zap.Error(err))
			return nil
		}
		if env.EventType != events.EventPaymentCompleted {
			return nil
		}

		payload, err := events.UnwrapPayload[events.PaymentCompletedPayload](env.Payload)
		if err != nil {
			logger.Error("dropping event with malformed payload",
				zap.String("event_id", env.EventID), zap.Error(err))
			return nil
		}

		if err := cache.Delete(ctx, payload.PurchaseID); err != nil {
			return err
		}
		logger.Info("evicted payment quote",
			zap.Uint("purchase_id", payload.PurchaseID),
			zap.Uint("payment_id", payload.PaymentID),
			zap.String("event_id", env.EventID),
		)
		return nil
	}

	if err := consumer.Start(ctx, handler); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
