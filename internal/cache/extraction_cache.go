package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"propertydesk/internal/extract"
)

// ExtractionCache keeps successful listing extractions in Redis so that
// re-scanning the same page within the TTL does not pay for another model
// call. Redis failures degrade to cache misses.
type ExtractionCache struct {
	client *redisv9.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewExtractionCache(client *redisv9.Client, ttl time.Duration, logger *zap.Logger) *ExtractionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionCache{client: client, ttl: ttl, logger: logger}
}

func (c *ExtractionCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *ExtractionCache) Get(ctx context.Context, url string) (*extract.ExtractedProperty, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, extractionKey(url)).Bytes()
	if err == redisv9.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis get extraction failed", zap.Error(err))
		return nil, false
	}

	var record extract.ExtractedProperty
	if err := json.Unmarshal(raw, &record); err != nil {
		c.logger.Warn("unmarshal cached extraction failed", zap.Error(err))
		return nil, false
	}
	return &record, true
}

func (c *ExtractionCache) Set(ctx context.Context, url string, record *extract.ExtractedProperty) {
	if !c.enabled() || record == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		c.logger.Warn("marshal extraction cache failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, extractionKey(url), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set extraction failed", zap.Error(err))
	}
}

func extractionKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "scrape:extract:" + hex.EncodeToString(sum[:])
}
