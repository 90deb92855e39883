package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS 将每个制品保存为 <dir>/<id>/<name>，元信息写入同目录的 meta.json。
type FS struct {
	dir string
}

const metaFile = "meta.json"

func NewFS(dir string) (*FS, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: 创建目录失败: %w", err)
	}
	return &FS{dir: dir}, nil
}

func (s *FS) Put(ctx context.Context, obj Object) error {
	if !validID(obj.ID) {
		return fmt.Errorf("store: 非法 id %q", obj.ID)
	}
	dir := filepath.Join(s.dir, obj.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: 创建目录失败: %w", err)
	}
	name := filepath.Base(obj.Name)
	if err := os.WriteFile(s.path(obj), obj.Data, 0o644); err != nil {
		return fmt.Errorf("store: 写入制品失败: %w", err)
	}
	obj.Name = name
	meta, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("store: 编码元信息失败: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644)
}

func (s *FS) Get(ctx context.Context, id string) (Object, error) {
	if !validID(id) {
		return Object{}, notFound(id)
	}
	dir := filepath.Join(s.dir, id)
	raw, err := os.ReadFile(filepath.Join(dir, metaFile))
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, notFound(id)
	}
	if err != nil {
		return Object{}, fmt.Errorf("store: 读取元信息失败: %w", err)
	}
	var obj Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Object{}, fmt.Errorf("store: 解析元信息失败: %w", err)
	}
	obj.Data, err = os.ReadFile(s.path(obj))
	if err != nil {
		return Object{}, fmt.Errorf("store: 读取制品失败: %w", err)
	}
	return obj, nil
}

// path 返回制品文件在磁盘上的位置。
func (s *FS) path(obj Object) string {
	return filepath.Join(s.dir, obj.ID, filepath.Base(obj.Name))
}

func (s *FS) Close() error { return nil }
