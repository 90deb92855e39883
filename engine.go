package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ByLCY/slidepress/assets"
	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/service"
	"github.com/ByLCY/slidepress/store"
	"github.com/ByLCY/slidepress/template"
)

// newEngine 加载模板并创建引擎；baseDir 非空时覆盖 assets.base_dir。
func newEngine(cfg config.Config, log *slog.Logger, baseDir string) (*deck.Engine, error) {
	tpl, err := template.NewSource(cfg.Template).Load()
	if err != nil {
		return nil, err
	}
	if baseDir != "" {
		cfg.Assets.BaseDir = baseDir
	}
	images := assets.New(cfg.Assets)
	return deck.New(tpl, cfg,
		deck.WithImages(images),
		deck.WithLogger(log),
	)
}

// newService 组装 serve 与 mcp 共用的服务。返回的 close 关闭存储。
func newService(ctx context.Context, cfg config.Config, log *slog.Logger) (*service.Service, func() error, error) {
	engine, err := newEngine(cfg, log, "")
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("打开存储失败: %w", err)
	}
	pdf := canvasrenderer.NewRenderer(cfg.Assets.BaseDir)
	return service.New(engine, st, pdf, cfg.Server.PublicURL, log), st.Close, nil
}
