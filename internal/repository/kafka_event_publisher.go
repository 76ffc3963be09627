package repository

import (
	"context"
	"fmt"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	pkgkafka "SignalHub/pkg/kafka"
)

// KafkaEventPublisher puts lifecycle events on the bus. Messages are
// keyed by signal id so one signal's events land on one partition and
// stay ordered for the audit consumer.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ drepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.SignalID), ev); err != nil {
		return fmt.Errorf("publish signal event: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}
