package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventPublisher defines the interface for publishing change events
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// Change events emitted by the resolution engine. Natural keys are
// included so consumers do not need to dereference surrogate ids.
type LocationCreatedEvent struct {
	LocationID  int64     `json:"location_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type PartCreatedEvent struct {
	PartID      int64     `json:"part_id"`
	PartNumber  string    `json:"part_number"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type BoxCreatedEvent struct {
	BoxID        int64     `json:"box_id"`
	Code         string    `json:"code"`
	LocationName string    `json:"location_name"`
	// Implicit reports a box created as a side effect of an
	// inventory add rather than an explicit add-box request.
	Implicit   bool      `json:"implicit"`
	OccurredAt time.Time `json:"occurred_at"`
}

type InventoryItemCreatedEvent struct {
	ItemID     int64     `json:"item_id"`
	BoxCode    string    `json:"box_code"`
	PartNumber string    `json:"part_number"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

type InventoryItemUpdatedEvent struct {
	ItemID     int64     `json:"item_id"`
	PartNumber string    `json:"part_number"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

type InventoryItemDeletedEvent struct {
	ItemID     int64     `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BoxDeletedEvent struct {
	BoxID int64  `json:"box_id"`
	Code  string `json:"code"`
	// ItemsDeleted is the number of inventory items removed by the cascade
	ItemsDeleted int       `json:"items_deleted"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type LocationDeletedEvent struct {
	LocationID int64     `json:"location_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PartDeletedEvent struct {
	PartID     int64     `json:"part_id"`
	PartNumber string    `json:"part_number"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InMemoryEventPublisher keeps events in process. Used when Kafka is
// disabled or unreachable, and by tests.
type InMemoryEventPublisher struct {
	logger *zap.Logger
	mu     sync.Mutex
	events []interface{}
}

func NewEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventPublisher{
		logger: logger,
		events: make([]interface{}, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.logger.Debug("Event published (in-memory)", zap.Any("event", event))
	return nil
}

// Events returns a snapshot of everything published so far
func (p *InMemoryEventPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]interface{}, len(p.events))
	copy(out, p.events)
	return out
}
