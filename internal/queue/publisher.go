package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultQueue is the list records are pushed to when no name is given
const DefaultQueue = "items:raw"

// Publisher pushes item records to a Redis list
type Publisher struct {
	client    redis.Cmdable
	queueName string
}

// NewPublisher creates a new queue publisher
func NewPublisher(client redis.Cmdable, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

// Publish pushes a single record to the queue
func (p *Publisher) Publish(ctx context.Context, r *domain.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := p.client.LPush(ctx, p.queueName, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// PublishBatch pushes multiple records in one pipeline
func (p *Publisher) PublishBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for i := range records {
		data, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", records[i].ID, err)
		}
		pipe.LPush(ctx, p.queueName, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}

// QueueLength returns the current queue length
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queueName).Result()
}
