package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/zaloga/internal/inventory"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisPublisher(t *testing.T) {
	client := getRedisClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := "zaloga.test." + time.Now().Format("150405.000000")
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	p := NewRedisPublisher(client, channel)
	r, events, _ := inventory.New("p1", "l1", 7)
	if err := p.Handle(ctx, events[0]); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}

	var got struct {
		Name    string                  `json:"name"`
		EventID string                  `json:"event_id"`
		Data    inventory.StockAdjusted `json:"data"`
	}
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decoding message: %v", err)
	}
	if got.Name != inventory.EventStockAdjusted {
		t.Errorf("expected %s, got %s", inventory.EventStockAdjusted, got.Name)
	}
	if got.Data.InventoryID != r.ID() || got.Data.NewQuantity != 7 {
		t.Errorf("unexpected payload: %s", msg.Payload)
	}
}

func TestNewRedisPublisherDefaultChannel(t *testing.T) {
	p := NewRedisPublisher(nil, "")
	if p.Channel() != DefaultChannel {
		t.Errorf("expected %s, got %s", DefaultChannel, p.Channel())
	}
}
