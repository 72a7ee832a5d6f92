package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/agingrisk/internal/config"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/redis/go-redis/v9"
)

const (
	agingRiskResultKeyPrefix = "aging_risk:result"
	agingRiskLatestKey       = "aging_risk:latest"
	agingRiskScanBatchSize   = 100
)

type AssessmentCache interface {
	Get(ctx context.Context, key string) (*agingrisk.Result, bool, error)
	Set(ctx context.Context, key string, result *agingrisk.Result) error
	Latest(ctx context.Context) (*agingrisk.Result, bool, error)
	SetLatest(ctx context.Context, result *agingrisk.Result) error
	InvalidateAll(ctx context.Context) error
}

type redisAssessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAssessmentCache struct{}

func NewAssessmentCache(cfg config.CacheConfig) (AssessmentCache, error) {
	if !cfg.Enabled {
		return &noopAssessmentCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAssessmentCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAssessmentCache() AssessmentCache {
	return &noopAssessmentCache{}
}

func (c *redisAssessmentCache) Get(ctx context.Context, key string) (*agingrisk.Result, bool, error) {
	return c.load(ctx, key)
}

func (c *redisAssessmentCache) Latest(ctx context.Context) (*agingrisk.Result, bool, error) {
	return c.load(ctx, agingRiskLatestKey)
}

func (c *redisAssessmentCache) load(ctx context.Context, key string) (*agingrisk.Result, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result agingrisk.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode aging risk result cache: %w", err)
	}

	return &result, true, nil
}

// Set stores the result under key and makes it the latest result.
func (c *redisAssessmentCache) Set(ctx context.Context, key string, result *agingrisk.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode aging risk result cache: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.ttl)
	pipe.Set(ctx, agingRiskLatestKey, payload, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// SetLatest moves the latest pointer without touching keyed results.
func (c *redisAssessmentCache) SetLatest(ctx context.Context, result *agingrisk.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode aging risk result cache: %w", err)
	}

	if err := c.client.Set(ctx, agingRiskLatestKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAssessmentCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, agingRiskResultKeyPrefix, agingRiskScanBatchSize); err != nil {
		return err
	}
	return c.client.Del(ctx, agingRiskLatestKey).Err()
}

func (n *noopAssessmentCache) Get(ctx context.Context, key string) (*agingrisk.Result, bool, error) {
	return nil, false, nil
}

func (n *noopAssessmentCache) Set(ctx context.Context, key string, result *agingrisk.Result) error {
	return nil
}

func (n *noopAssessmentCache) Latest(ctx context.Context) (*agingrisk.Result, bool, error) {
	return nil, false, nil
}

func (n *noopAssessmentCache) SetLatest(ctx context.Context, result *agingrisk.Result) error {
	return nil
}

func (n *noopAssessmentCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// BuildResultKey derives the cache key of an analysis from its reference date,
// the scoring floors and the feed contents. Identical inputs always map to the
// same key. The worker count does not change results and is left out.
func BuildResultKey(referenceDate time.Time, cfg agingrisk.Config, feed agingrisk.Feed) (string, error) {
	payload, err := json.Marshal(struct {
		ReferenceDate    string         `json:"reference_date"`
		MinDailySales    float64        `json:"min_daily_sales"`
		MinSeasonalIndex float64        `json:"min_seasonal_index"`
		Feed             agingrisk.Feed `json:"feed"`
	}{
		ReferenceDate:    referenceDate.Format("2006-01-02"),
		MinDailySales:    cfg.MinDailySales,
		MinSeasonalIndex: cfg.MinSeasonalIndex,
		Feed:             feed,
	})
	if err != nil {
		return "", fmt.Errorf("encode aging risk cache key: %w", err)
	}

	sum := sha1.Sum(payload)
	return fmt.Sprintf("%s:%s", agingRiskResultKeyPrefix, hex.EncodeToString(sum[:])), nil
}
