// Package store 持久化转换产物，支持内存、文件系统、SQLite 与 Redis 四种后端。
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/errs"
)

// Object 为一个已存储的制品及其元信息。
type Object struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	CreatedAt   time.Time `json:"created_at"`
	Data        []byte    `json:"-"`
}

// Store 保存与读取制品。Get 找不到时返回 NOT_FOUND 错误。
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, id string) (Object, error)
	Close() error
}

// Open 按 store.driver 创建后端。
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return NewMemory(), nil
	case "", "file":
		return NewFS(cfg.Dir)
	case "sqlite":
		return OpenSQLite(cfg.Dir)
	case "redis":
		return OpenRedis(ctx, cfg)
	default:
		return nil, errs.NewConfig("store.driver", fmt.Sprintf("unknown driver %q", cfg.Driver))
	}
}

func notFound(id string) error { return errs.NewNotFound("deck", id) }

// validID 只接受 ULID 字符集，避免文件路径与键名注入。
func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
