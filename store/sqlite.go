package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion 为当前表结构版本，新增迁移时递增。
const schemaVersion = 1

// SQLite 将制品与元信息保存在 <dir>/slidepress.db 中。
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dir string) (*SQLite, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: 创建目录失败: %w", err)
	}
	dsn := filepath.Join(dir, "slidepress.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: 打开数据库失败: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// migrate 依据 user_version 执行表结构迁移。
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("store: 读取 user_version 失败: %w", err)
	}
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS artifacts (
		  id           TEXT PRIMARY KEY,
		  name         TEXT NOT NULL,
		  content_type TEXT NOT NULL,
		  size         INTEGER NOT NULL,
		  digest       TEXT NOT NULL,
		  data         BLOB NOT NULL,
		  created_at   INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("store: migration 1 failed: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
		return fmt.Errorf("store: 设置 user_version 失败: %w", err)
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, obj Object) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO artifacts (id, name, content_type, size, digest, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		obj.ID, obj.Name, obj.ContentType, obj.Size, obj.Digest, obj.Data, obj.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("store: 写入制品失败: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Object, error) {
	var obj Object
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content_type, size, digest, data, created_at FROM artifacts WHERE id = ?`, id).
		Scan(&obj.ID, &obj.Name, &obj.ContentType, &obj.Size, &obj.Digest, &obj.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, notFound(id)
	}
	if err != nil {
		return Object{}, fmt.Errorf("store: 读取制品失败: %w", err)
	}
	obj.CreatedAt = time.UnixMilli(created).UTC()
	return obj, nil
}

func (s *SQLite) Close() error { return s.db.Close() }
