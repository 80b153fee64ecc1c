package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher hands a batch of outbox records to the message broker. The
// batch is accepted or rejected as a whole.
type Publisher interface {
	Publish(ctx context.Context, recs ...domain.OutboxRecord) error
}

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes outbox records to the orders topic, keyed by
// order id so that events of one order stay in one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, recs ...domain.OutboxRecord) error {
	if len(recs) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, lo.Map(recs, toMessage)...); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	p.logger.Debug("events published",
		zap.Int("count", len(recs)),
		zap.Int64("first_id", recs[0].ID),
		zap.Int64("last_id", recs[len(recs)-1].ID),
	)

	return nil
}

func toMessage(rec domain.OutboxRecord, _ int) kafka.Message {
	return kafka.Message{
		Key:   []byte(rec.Key),
		Value: rec.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(domain.EventTypeOrderCreated)},
			{Key: "event_id", Value: []byte(rec.EventID.String())},
		},
		Time: rec.CreatedAt,
	}
}

func (p *KafkaPublisher) Close() error {
	p.logger.Info("closing kafka publisher")
	return p.writer.Close()
}
