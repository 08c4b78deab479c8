package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler must return nil only when the message was fully processed and its
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r      *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        group,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0, // manual commit
		}),
		logger: logger,
	}
}

// Start consumes until ctx is cancelled. Handler errors are logged and the
// offset stays uncommitted, so the message comes back after a restart or
// rebalance; the running session moves on to the next one.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if err := h(ctx, m); err != nil {
			c.logger.Warn("message handling failed, offset left uncommitted",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			time.Sleep(200 * time.Millisecond)
			continue
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			c.logger.Warn("offset commit failed", zap.Error(err))
		}
	}
}
