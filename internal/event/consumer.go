package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/catalog-search/pkg/kafka"
)

// Kafka topics whose events change what a search would return.
var (
	TopicProductCreated        = pkgkafka.Topic("product", "created")
	TopicProductUpdated        = pkgkafka.Topic("product", "updated")
	TopicProductDeleted        = pkgkafka.Topic("product", "deleted")
	TopicInventoryStockUpdated = pkgkafka.Topic("inventory", "stock_updated")
)

// Topics lists every topic the consumer subscribes to.
func Topics() []string {
	return []string{
		TopicProductCreated,
		TopicProductUpdated,
		TopicProductDeleted,
		TopicInventoryStockUpdated,
	}
}

// ProductDeletedData represents the payload from a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// Invalidator is the part of the search service driven by catalog events.
type Invalidator interface {
	InvalidateCatalog(ctx context.Context, reason string)
	RemoveItem(ctx context.Context, id string) error
}

// Consumer turns catalog change events into result cache invalidations.
type Consumer struct {
	invalidator Invalidator
	logger      *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(invalidator Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated, TopicInventoryStockUpdated:
		c.invalidator.InvalidateCatalog(ctx, event.EventType)
		return nil
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if len(event.Data) > 0 {
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal product.deleted data: %w", err)
		}
	}
	if data.ID == "" {
		data.ID = event.AggregateID
	}
	if data.ID == "" {
		c.logger.WarnContext(ctx, "product.deleted event without product id",
			slog.String("event_id", event.EventID),
		)
		c.invalidator.InvalidateCatalog(ctx, event.EventType)
		return nil
	}

	if err := c.invalidator.RemoveItem(ctx, data.ID); err != nil {
		return fmt.Errorf("remove product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "removed product from deleted event",
		slog.String("product_id", data.ID),
	)
	return nil
}
