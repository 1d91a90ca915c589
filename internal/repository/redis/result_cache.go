package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ueba-service/internal/client"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

const (
	latestResultKey = "ueba:pipeline:latest"
	resultTTL       = 24 * time.Hour
)

// ResultCache keeps the latest pipeline result in Redis so API reads never
// touch the batch path. Implements model.ResultCache.
type ResultCache struct {
	redis *client.RedisClient
}

func NewResultCache(redisClient *client.RedisClient) *ResultCache {
	return &ResultCache{redis: redisClient}
}

func (c *ResultCache) SetResult(ctx context.Context, result *model.PipelineResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline result: %w", err)
	}

	if err := c.redis.Set(ctx, latestResultKey, data, resultTTL); err != nil {
		return fmt.Errorf("failed to cache pipeline result: %w", err)
	}

	util.Debug("pipeline result cached",
		util.String("run_id", result.RunID),
		util.Int("bytes", len(data)),
	)
	return nil
}

func (c *ResultCache) GetResult(ctx context.Context) (*model.PipelineResult, error) {
	data, err := c.redis.Get(ctx, latestResultKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached pipeline result: %w", err)
	}

	var result model.PipelineResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pipeline result: %w", err)
	}
	return &result, nil
}
