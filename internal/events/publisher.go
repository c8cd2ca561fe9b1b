package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends event envelopes to Redis streams. A failed append is the
// caller's to log: post-commit events must never fail the operation that
// produced them.
type Publisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Publish wraps data in an Event envelope stamped with the current UTC time
// and appends it to stream.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: p.now(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	// Subscribers expect the envelope under the "event" key.
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("append %s event to %s: %w", eventType, stream, err)
	}
	return nil
}
