package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmohaa/bracket-api/internal/models"
)

const jobKeyPrefix = "simulation:"

// RedisCache stores probability tables and simulation job status as JSON.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache stores entries for ttl; zero keeps them until evicted.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetTable(ctx context.Context, key string) (models.WinProbabilityTable, error) {
	var table models.WinProbabilityTable
	if err := c.getJSON(ctx, key, &table); err != nil {
		return nil, err
	}
	return table, nil
}

func (c *RedisCache) SetTable(ctx context.Context, key string, table models.WinProbabilityTable) error {
	return c.setJSON(ctx, key, table)
}

func (c *RedisCache) SaveJob(ctx context.Context, job *models.JobStatus) error {
	return c.setJSON(ctx, jobKeyPrefix+job.ID, job)
}

func (c *RedisCache) GetJob(ctx context.Context, id string) (*models.JobStatus, error) {
	var job models.JobStatus
	if err := c.getJSON(ctx, jobKeyPrefix+id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
