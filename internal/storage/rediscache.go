package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/config"
	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

const (
	redisReportPrefix = "report:"
	redisLatestKey    = "report:latest"
)

// RedisCache stores reports in Redis: the document under report:<key> and
// the latest pointer under report:latest. Used when a Redis address is
// configured and reachable; the file cache remains the fallback.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, rep *models.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, redisReportPrefix+key, data, c.ttl)
	pipe.Set(ctx, redisLatestKey, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Report, error) {
	data, err := c.client.Get(ctx, redisReportPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var rep models.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &rep, nil
}

func (c *RedisCache) Latest(ctx context.Context) (*models.Report, error) {
	key, err := c.client.Get(ctx, redisLatestKey).Result()
	if err == redis.Nil {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest pointer: %w", err)
	}
	return c.Get(ctx, key)
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisReportPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	if c.client != nil {
		c.logger.Info("Redis connection closed")
		return c.client.Close()
	}
	return nil
}

// Health reports whether Redis is reachable.
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
