package queue

import (
	"context"
	"time"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	defaultPollTimeout = 5 * time.Second
	defaultRetryDelay  = time.Second
)

type Consumer struct {
	client      *redis.Client
	cfg         *config.Config
	pollTimeout time.Duration
	retryDelay  time.Duration
	log         zerolog.Logger
}

type MessageHandler func(ctx context.Context, data []byte) error

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client:      redisClient.Client(),
		cfg:         cfg,
		pollTimeout: defaultPollTimeout,
		retryDelay:  defaultRetryDelay,
		log:         logger.Component("queue"),
	}
}

// ConsumeImportQueue blocks until ctx is cancelled, handing each import job
// message to handler. Messages the handler rejects go to the dead-letter list.
func (c *Consumer) ConsumeImportQueue(ctx context.Context, handler MessageHandler) error {
	return c.consume(ctx, c.cfg.Redis.ImportQueue, handler)
}

func (c *Consumer) consume(ctx context.Context, queueName string, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, c.pollTimeout, queueName).Result()
			if err != nil {
				if err == redis.Nil {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.retryDelay):
				}
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := result[1]
			if err := handler(ctx, []byte(message)); err != nil {
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to process message")
				if dlqErr := c.DeadLetter(ctx, []byte(message)); dlqErr != nil {
					c.log.Error().Err(dlqErr).Str("dlq", c.DeadLetterQueue()).Msg("Failed to move message to DLQ")
				}
			}
		}
	}
}

// DeadLetter pushes a message to the dead-letter list. The push is not
// cancelled with ctx, so messages rejected during shutdown are kept.
func (c *Consumer) DeadLetter(ctx context.Context, message []byte) error {
	return c.client.LPush(context.WithoutCancel(ctx), c.DeadLetterQueue(), message).Err()
}

func (c *Consumer) DeadLetterQueue() string {
	return c.cfg.Redis.ImportQueue + c.cfg.Redis.DLQSuffix
}
