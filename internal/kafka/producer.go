// Package kafka adapts segmentio/kafka-go to the payment core's event ports.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"shopmall_app_echo/internal/events"
)

// Producer publishes event envelopes to one topic. Writes are asynchronous:
// the payment service treats post-commit events as fire-and-forget, so Publish
// only fails on enqueue, never on broker acknowledgement.
type Producer struct {
	w      *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Producer{logger: logger}
	p.w = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("kafka write failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return p
}

func (p *Producer) Publish(ctx context.Context, key []byte, env events.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.w.Close()
}
