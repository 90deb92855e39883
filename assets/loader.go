// Package assets 加载 Markdown 中引用的图片：本地文件或（允许时）HTTP(S) 地址。
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/layout"
)

var (
	ErrRemoteDisabled = errors.New("assets: 未启用远程图片")
	ErrNoBaseDir      = errors.New("assets: 未指定资源目录时不允许读取本地图片")
	ErrOutsideBaseDir = errors.New("assets: 图片路径超出资源目录")
	ErrTooLarge       = errors.New("assets: 图片超过大小上限")
)

// Loader 读取并解码图片，可被多个请求共享；它本身不缓存。
// 一次转换内的去重与缓存由 Session 负责。
type Loader struct {
	baseDir     string
	allowRemote bool
	maxBytes    int64
	timeout     time.Duration
	client      *http.Client
}

func New(cfg config.AssetsConfig) *Loader {
	return &Loader{
		baseDir:     cfg.BaseDir,
		allowRemote: cfg.AllowRemote,
		maxBytes:    cfg.MaxBytes,
		timeout:     cfg.Timeout,
		client:      &http.Client{},
	}
}

// Session 返回只在一次转换内有效的加载器，缓存随之释放。
func (l *Loader) Session() layout.ImageLoader {
	return &Session{loader: l, cache: map[string]image.Image{}}
}

// Load 读取并解码图片，耗时受 assets.timeout 约束。
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

// Session 合并同一地址的并发加载并缓存结果。共享的加载不随任一调用方取消，
// 每个调用方只按自己的 ctx 放弃等待。
type Session struct {
	loader *Loader
	group  singleflight.Group
	mu     sync.Mutex
	cache  map[string]image.Image
}

func (s *Session) Load(ctx context.Context, src string) (image.Image, error) {
	s.mu.Lock()
	img, ok := s.cache[src]
	s.mu.Unlock()
	if ok {
		return img, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(src, func() (any, error) {
		img, err := s.loader.Load(shared, src)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[src] = img
		s.mu.Unlock()
		return img, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	if isRemote(src) {
		if !l.allowRemote {
			return nil, ErrRemoteDisabled
		}
		return l.fetch(ctx, src)
	}
	if l.baseDir == "" {
		return nil, ErrNoBaseDir
	}
	path := filepath.FromSlash(strings.TrimPrefix(src, "file://"))
	if !filepath.IsLocal(path) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideBaseDir, src)
	}
	// os.Root 同时拒绝经符号链接逃逸的路径
	root, err := os.OpenRoot(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("打开资源目录失败: %w", err)
	}
	defer root.Close()
	f, err := root.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer f.Close()
	return l.limit(f)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载图片 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载图片 %s 失败: status %d", url, resp.StatusCode)
	}
	return l.limit(resp.Body)
}

func (l *Loader) limit(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
