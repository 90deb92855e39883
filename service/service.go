// Package service 组合转换引擎、渲染器与制品存储，供 HTTP、MCP 与命令行共用。
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/ByLCY/slidepress/deck"
	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/errs"
	"github.com/ByLCY/slidepress/layout"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/store"
)

// Record 描述一次已存储的转换结果。
type Record struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	Slides      int       `json:"slides"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	engine    *deck.Engine
	store     store.Store
	pdf       *canvasrenderer.Renderer
	publicURL string
	logger    *slog.Logger
}

// New 创建服务。publicURL 为空时 Record.URL 为相对路径。
func New(engine *deck.Engine, st store.Store, pdf *canvasrenderer.Renderer, publicURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		engine:    engine,
		store:     st,
		pdf:       pdf,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID 生成按时间排序的 ULID，同一毫秒内也严格递增。
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Filename 返回制品文件名：未指定时为 presentation_<id>.pdf，指定时去掉目录并补全扩展名。
func Filename(name, id string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "presentation_" + id + ".pdf"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf"
	}
	return name
}

// URL 返回制品下载地址。
func (s *Service) URL(id string) string {
	return s.publicURL + "/api/decks/" + id
}

func (s *Service) deck(ctx context.Context, markdown []byte) (*layout.Deck, diag.List, error) {
	if len(strings.TrimSpace(string(markdown))) == 0 {
		return nil, nil, errs.NewInvalidRequest("markdown is empty")
	}
	d, diags, err := s.engine.Convert(ctx, markdown)
	if err != nil {
		return nil, nil, wrap(err)
	}
	return d, diags, nil
}

// Convert 转换 Markdown、渲染 PDF 并写入存储。
func (s *Service) Convert(ctx context.Context, markdown []byte, filename string) (Record, error) {
	start := time.Now()
	d, diags, err := s.deck(ctx, markdown)
	if err != nil {
		return Record{}, err
	}
	data, err := s.pdf.Render(d)
	if err != nil {
		return Record{}, errs.NewInternal("render failed", err)
	}

	id := NewID()
	sum := blake2b.Sum256(data)
	obj := store.Object{
		ID:          id,
		Name:        Filename(filename, id),
		ContentType: s.pdf.ContentType(),
		Size:        int64(len(data)),
		Digest:      hex.EncodeToString(sum[:]),
		CreatedAt:   time.Now().UTC(),
		Data:        data,
	}
	if err := s.store.Put(ctx, obj); err != nil {
		return Record{}, errs.NewInternal("store failed", err)
	}

	for _, dg := range diags {
		s.logger.Warn("conversion diagnostic", "id", id, "code", dg.Code, "slide", dg.Slide, "line", dg.Line, "message", dg.Message)
	}
	s.logger.Info("deck stored",
		"id", id,
		"filename", obj.Name,
		"slides", len(d.Slides),
		"bytes", obj.Size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Record{
		ID:          id,
		Filename:    obj.Name,
		URL:         s.URL(id),
		Size:        obj.Size,
		Digest:      obj.Digest,
		Slides:      len(d.Slides),
		Diagnostics: diags,
		CreatedAt:   obj.CreatedAt,
	}, nil
}

// Describe 返回各页摘要，不渲染也不存储。
func (s *Service) Describe(ctx context.Context, markdown []byte) ([]deck.Summary, diag.List, error) {
	if len(strings.TrimSpace(string(markdown))) == 0 {
		return nil, nil, errs.NewInvalidRequest("markdown is empty")
	}
	sums, diags, err := s.engine.Describe(ctx, markdown)
	if err != nil {
		return nil, nil, wrap(err)
	}
	return sums, diags, nil
}

// Preview 将第 slide 页渲染为 PNG。
func (s *Service) Preview(ctx context.Context, markdown []byte, slide int, dpi float64) ([]byte, error) {
	d, _, err := s.deck(ctx, markdown)
	if err != nil {
		return nil, err
	}
	if slide < 1 || slide > len(d.Slides) {
		return nil, errs.NewInvalidRequest(fmt.Sprintf("slide %d out of range 1..%d", slide, len(d.Slides)))
	}
	png, err := s.pdf.Preview(d, slide, dpi)
	if err != nil {
		return nil, errs.NewInternal("preview failed", err)
	}
	return png, nil
}

// Get 读取已存储的制品。
func (s *Service) Get(ctx context.Context, id string) (store.Object, error) {
	return s.store.Get(ctx, id)
}

// wrap 将 context 错误映射为 CANCELED，已结构化的错误原样返回。
func wrap(err error) error {
	var e *errs.Error
	switch {
	case errors.As(err, &e):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.NewCanceled(err)
	default:
		return errs.NewInternal("conversion failed", err)
	}
}
