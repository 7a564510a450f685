package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueImportJob(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := p.client.LPush(ctx, p.cfg.Redis.ImportQueue, data).Err(); err != nil {
		return fmt.Errorf("enqueue import job for file %d: %w", job.FileID, err)
	}
	return nil
}

// Pending reports how many import jobs wait to be picked up.
func (p *Producer) Pending(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.cfg.Redis.ImportQueue).Result()
}
