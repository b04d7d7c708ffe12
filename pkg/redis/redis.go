package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/medikart/medikart-backend/config"
	"github.com/medikart/medikart-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// CacheSignedURL stores a signed blob URL keyed by its object key.
// The TTL must be shorter than the presign expiry so a cached URL is
// never handed out after it stopped working.
func CacheSignedURL(ctx context.Context, objectKey, url string, ttl time.Duration) error {
	if client == nil {
		return nil // cache disabled, signing falls through to S3 every time
	}

	key := fmt.Sprintf("signed-url:%s", objectKey)
	if err := client.Set(ctx, key, url, ttl).Err(); err != nil {
		logger.Error("Failed to cache signed URL", err, map[string]interface{}{
			"object_key": objectKey,
		})
		return err
	}
	return nil
}

// GetCachedSignedURL returns a previously cached signed URL, or "" when
// the key is unknown or the cache is unavailable.
func GetCachedSignedURL(ctx context.Context, objectKey string) (string, error) {
	if client == nil {
		return "", nil
	}

	key := fmt.Sprintf("signed-url:%s", objectKey)
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		logger.Error("Failed to read signed URL cache", err, map[string]interface{}{
			"object_key": objectKey,
		})
		return "", err
	}
	return val, nil
}

// InvalidateSignedURL drops the cached signed URL for a deleted blob.
func InvalidateSignedURL(ctx context.Context, objectKey string) {
	if client == nil {
		return
	}

	key := fmt.Sprintf("signed-url:%s", objectKey)
	if err := client.Del(ctx, key).Err(); err != nil {
		logger.Warn("Failed to invalidate signed URL cache", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
	}
}
