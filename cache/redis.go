package cache

import (
	"context"
	"fmt"
	"time"

	"TingFM/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient 是全局Redis客户端。
// 本服务里Redis只承担曲库查询缓存，连不上时保持为nil，缓存整体退化为直连音源。
var RedisClient *redis.Client

// ConnectRedis 初始化Redis连接。未配置地址时直接返回，视为禁用缓存。
func ConnectRedis(cfg *config.Config) error {
	if cfg.RedisHost == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	RedisClient = client
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RedisClient != nil {
		err := RedisClient.Close()
		RedisClient = nil
		return err
	}
	return nil
}

// TestRedis 测试Redis连接和基本操作
func TestRedis() error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	ctx := context.Background()

	err := RedisClient.Set(ctx, "test_key", "Redis connection successful!", 5*time.Minute).Err()
	if err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}

	val, err := RedisClient.Get(ctx, "test_key").Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}

	if val != "Redis connection successful!" {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}

	if _, err = RedisClient.Del(ctx, "test_key").Result(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}

	return nil
}
