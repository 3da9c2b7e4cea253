package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/zaloga/internal/inventory"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "zaloga.inventory"

// Message is the JSON document published for each event.
type Message struct {
	Name       string          `json:"name"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       inventory.Event `json:"data"`
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher returns a publisher on channel, or DefaultChannel when empty.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Channel returns the channel events are published on.
func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Handle(ctx context.Context, ev inventory.Event) error {
	meta := ev.Header()
	body, err := json.Marshal(Message{
		Name:       ev.Name(),
		EventID:    meta.EventID,
		OccurredAt: meta.OccurredAt,
		Data:       ev,
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Name(), err)
	}

	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publishing %s event: %w", ev.Name(), err)
	}
	return nil
}
