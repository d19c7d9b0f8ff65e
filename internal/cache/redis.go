// Package cache реализует кэширование ответов провайдера в памяти процесса и в Redis
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"teo-dashboard/internal/metrics"
)

const (
	// KeyPrefix префикс для ключей ответов
	KeyPrefix = "teo:"
	// DialTimeout время на подключение к Redis при старте
	DialTimeout = 5 * time.Second
)

// Store хранилище ответов с TTL. Ошибки хранилища трактуются как промах.
type Store interface {
	// Get возвращает значение и оставшееся время жизни
	Get(ctx context.Context, key string) ([]byte, time.Duration, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// RedisCache реализует кэширование в Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache создает новое подключение к Redis
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  DialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get получает значение и его PTTL одним пайплайном
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, time.Duration, bool) {
	pipe := r.client.Pipeline()
	getCmd := pipe.Get(ctx, KeyPrefix+key)
	ttlCmd := pipe.PTTL(ctx, KeyPrefix+key)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("Warning: redis get %s failed: %v", key, err)
		metrics.ObserveCache("redis", false)
		return nil, 0, false
	}

	data, err := getCmd.Bytes()
	if err != nil {
		metrics.ObserveCache("redis", false)
		return nil, 0, false
	}
	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}

	metrics.ObserveCache("redis", true)
	return data, ttl, true
}

// Set сохраняет значение с TTL
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		log.Printf("Warning: redis set %s failed: %v", key, err)
	}
}

// Ping проверяет соединение с Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (r *RedisCache) Close() error {
	return r.client.Close()
}
