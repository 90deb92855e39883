package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ByLCY/slidepress/config"
)

// keyPrefix 为 Redis 中制品哈希的键前缀。
const keyPrefix = "slidepress:deck:"

// Redis 以哈希保存制品，键随 store.ttl 过期。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func OpenRedis(ctx context.Context, cfg config.StoreConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: 连接 redis 失败: %w", err)
	}
	return &Redis{client: client, ttl: cfg.TTL}, nil
}

func (s *Redis) Put(ctx context.Context, obj Object) error {
	key := keyPrefix + obj.ID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"name":         obj.Name,
			"content_type": obj.ContentType,
			"size":         obj.Size,
			"digest":       obj.Digest,
			"created_at":   obj.CreatedAt.UnixMilli(),
			"data":         obj.Data,
		})
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: 写入 redis 失败: %w", err)
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, id string) (Object, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return Object{}, notFound(id)
	}
	if err != nil {
		return Object{}, fmt.Errorf("store: 读取 redis 失败: %w", err)
	}
	size, _ := strconv.ParseInt(fields["size"], 10, 64)
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return Object{
		ID:          id,
		Name:        fields["name"],
		ContentType: fields["content_type"],
		Size:        size,
		Digest:      fields["digest"],
		CreatedAt:   time.UnixMilli(created).UTC(),
		Data:        []byte(fields["data"]),
	}, nil
}

func (s *Redis) Close() error { return s.client.Close() }
