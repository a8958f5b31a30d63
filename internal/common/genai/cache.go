package genai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "energy:llm:"

// Cache stores model responses in Redis keyed by model, temperature and a
// hash of the prompt. A nil *Cache is valid and caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logger: log}
}

func (c *Cache) Key(model string, temperature float64, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return cacheKeyPrefix + model + ":" + strconv.FormatFloat(temperature, 'f', -1, 64) + ":" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	text, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("llm cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return "", false
	}
	metrics.LLMCacheHits.Inc()
	return text, true
}

func (c *Cache) Set(ctx context.Context, key, text string) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.Warn("llm cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
