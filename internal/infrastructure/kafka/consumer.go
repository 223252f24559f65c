package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
	"github.com/segmentio/kafka-go"
)

// Consumer watches the events topic and drops the Redis event-list caches
// that a newly created event invalidates. Other service instances publish
// to the same topic, so a write on any instance flushes caches everywhere.
type Consumer struct {
	reader      *kafka.Reader
	redisClient redis.Client
}

func NewConsumer(brokers []string, topic, groupID string, redisClient redis.Client) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		redisClient: redisClient,
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		var event struct {
			EventType      string `json:"event_type"`
			CreatedByEmail string `json:"created_by_email"`
		}
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to unmarshal event message", "error", err)
			continue
		}
		if event.EventType != "event_created" {
			continue
		}

		if err := c.redisClient.Del(ctx, "events:all"); err != nil {
			slog.Error("failed to invalidate events cache", "error", err)
		}
		if event.CreatedByEmail != "" {
			userKey := fmt.Sprintf("events:user:%s", event.CreatedByEmail)
			if err := c.redisClient.Del(ctx, userKey); err != nil {
				slog.Error("failed to invalidate user events cache", "key", userKey, "error", err)
			}
		}

		slog.Info("event caches invalidated", "created_by", event.CreatedByEmail)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
