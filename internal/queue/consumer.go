package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Consumer pops item records from a Redis list
type Consumer struct {
	client    redis.Cmdable
	queueName string
	timeout   time.Duration
	log       *logrus.Entry
}

// NewConsumer creates a new queue consumer
func NewConsumer(client redis.Cmdable, queueName string, timeout time.Duration, log *logrus.Entry) *Consumer {
	if queueName == "" {
		queueName = DefaultQueue
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
		log:       logger.OrNop(log).WithField("queue", queueName),
	}
}

// Consume blocks and waits for a record from the queue.
// Returns nil, nil if the timeout passes with no record.
func (c *Consumer) Consume(ctx context.Context) (*domain.Record, error) {
	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return decode(result[1])
}

// ConsumeBatch consumes up to maxBatch records.
// BRPOP blocks for the first one, RPOP then fills the batch without waiting.
// Malformed entries are logged and dropped.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.Record, error) {
	records := make([]*domain.Record, 0, maxBatch)

	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return records, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}
	if len(result) >= 2 {
		records = c.appendDecoded(records, result[1])
	}

	for i := 1; i < maxBatch; i++ {
		raw, err := c.client.RPop(ctx, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return records, fmt.Errorf("rpop: %w", err)
		}
		records = c.appendDecoded(records, raw)
	}
	return records, nil
}

// Run consumes records one by one until ctx is done. Handler errors are logged.
func (c *Consumer) Run(ctx context.Context, handler func(context.Context, *domain.Record) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, err := c.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("consume: %w", err)
		}
		if r == nil {
			continue
		}

		if err := handler(ctx, r); err != nil {
			c.log.WithError(err).WithField("record", r.ID).Error("Handler error")
		}
	}
}

func (c *Consumer) appendDecoded(records []*domain.Record, raw string) []*domain.Record {
	r, err := decode(raw)
	if err != nil {
		c.log.WithError(err).Warn("Dropping malformed record")
		return records
	}
	return append(records, r)
}

func decode(raw string) (*domain.Record, error) {
	var r domain.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &r, nil
}
