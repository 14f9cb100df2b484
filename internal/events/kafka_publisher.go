package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/config"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaEventPublisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Retry.Max = cfg.KafkaRetries
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Net.MaxOpenRequests = 1

	switch cfg.KafkaAcks {
	case "0":
		saramaCfg.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	}

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer: producer,
		topic:    cfg.KafkaTopic,
		logger:   logger,
	}, nil
}

// Publish publishes an event to the change topic
func (p *KafkaEventPublisher) Publish(ctx context.Context, event interface{}) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(eventJSON),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event-type"),
				Value: []byte(eventType(event)),
			},
			{
				Key:   []byte("event-id"),
				Value: []byte(uuid.New().String()),
			},
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().UTC().Format(time.RFC3339)),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("Event published to Kafka",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("event_type", eventType(event)),
	)
	return nil
}

// Close closes the underlying producer
func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

func eventType(event interface{}) string {
	switch event.(type) {
	case LocationCreatedEvent:
		return "location.created"
	case LocationDeletedEvent:
		return "location.deleted"
	case PartCreatedEvent:
		return "part.created"
	case PartDeletedEvent:
		return "part.deleted"
	case BoxCreatedEvent:
		return "box.created"
	case BoxDeletedEvent:
		return "box.deleted"
	case InventoryItemCreatedEvent:
		return "inventory.created"
	case InventoryItemUpdatedEvent:
		return "inventory.updated"
	case InventoryItemDeletedEvent:
		return "inventory.deleted"
	default:
		return "unknown"
	}
}
