// Package deck 串联解析、分页、版式选择、字号计算与幻灯片构建，产出完整的幻灯片模型。
package deck

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/document"
	"github.com/ByLCY/slidepress/fit"
	"github.com/ByLCY/slidepress/layout"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/segment"
	"github.com/ByLCY/slidepress/template"
)

// Creator 写入产物元信息。
const Creator = "slidepress"

// Engine 持有只读模板与配置，可被多个请求并发使用。
type Engine struct {
	tpl      *template.Template
	cfg      config.Config
	images   layout.ImageLoader
	measurer fit.Measurer
	logger   *slog.Logger
}

type Option func(*Engine)

// sessionLoader 由能为每次转换提供独立缓存的加载器实现，例如 *assets.Loader。
type sessionLoader interface {
	Session() layout.ImageLoader
}

// WithImages 注入图片加载器；未注入时所有图片按加载失败处理。
func WithImages(l layout.ImageLoader) Option {
	return func(e *Engine) { e.images = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New 校验配置并创建引擎。配置非法返回 CONFIG_INVALID。
func New(tpl *template.Template, cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("deck: 模板为空")
	}
	e := &Engine{tpl: tpl, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.measurer == nil {
		m, err := e.defaultMeasurer()
		if err != nil {
			return nil, err
		}
		e.measurer = m
	}
	return e, nil
}

func (e *Engine) defaultMeasurer() (fit.Measurer, error) {
	if !strings.EqualFold(e.cfg.Fit.Measure, "font") {
		return fit.Estimator{CharWidthFactor: e.cfg.Fit.CharWidthFactor}, nil
	}
	body, _ := e.tpl.Font(template.FontBody)
	m, err := canvasrenderer.NewRenderer(e.cfg.Assets.BaseDir).NewMeasurer(body)
	if err != nil {
		return nil, fmt.Errorf("deck: 创建字体度量器失败: %w", err)
	}
	return m, nil
}

func (e *Engine) Template() *template.Template { return e.tpl }

func (e *Engine) params() fit.Params {
	return fit.Params{
		Min:         e.cfg.Fit.MinFontPt,
		Max:         e.cfg.Fit.MaxFontPt,
		LineSpacing: e.cfg.Fit.LineSpacing,
		Measurer:    e.measurer,
	}
}

func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (e *Engine) builder(images layout.ImageLoader) *layout.Builder {
	return layout.NewBuilder(e.tpl, layout.Options{
		Fit:    e.params(),
		Images: images,
		Logger: e.logger,
	})
}

// prepared 为字号确定后的中间结果，Convert 与 Describe 共用。
type prepared struct {
	doc   *document.Document
	units []layout.Unit
	plans []*layout.Plan
	diags diag.List
}

// prepare 解析、分页并为每个单元计算统一字号。各占位符的字号搜索并发执行，结果按下标写回。
func (e *Engine) prepare(ctx context.Context, b *layout.Builder, markdown []byte) (*prepared, error) {
	doc := document.Parse(markdown, document.Options{StripNumbering: e.cfg.Segment.StripNumbering})
	units, segDiags, err := segment.Segment(ctx, doc, e.tpl, e.cfg.Segment)
	if err != nil {
		return nil, err
	}

	plans := make([]*layout.Plan, len(units))
	sizes := make([][]int, len(units))
	fits := make([][]bool, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, u := range units {
		plans[i] = b.Plan(u)
		jobs := b.Jobs(plans[i])
		sizes[i] = make([]int, len(jobs))
		fits[i] = make([]bool, len(jobs))
		for j, job := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sizes[i][j], fits[i][j] = job.Run()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var overflow diag.List
	params := e.params()
	for i := range units {
		size, ok := layout.Uniform(sizes[i], fits[i], params)
		if !ok {
			overflow.Addf(diag.FontOverflow, i+1, "content does not fit at %dpt, rendered at minimum size", params.Min)
		}
		units[i].FontSize = size
		plans[i].Unit.FontSize = size
	}

	return &prepared{
		doc:   doc,
		units: units,
		plans: plans,
		diags: diag.Merge(doc.Diagnostics, segDiags, overflow),
	}, nil
}

// Convert 将 Markdown 转换为幻灯片模型。失败时只返回错误，不返回部分产物。
func (e *Engine) Convert(ctx context.Context, markdown []byte) (*layout.Deck, diag.List, error) {
	images := e.images
	if sl, ok := images.(sessionLoader); ok {
		images = sl.Session()
	}
	b := e.builder(images)
	p, err := e.prepare(ctx, b, markdown)
	if err != nil {
		return nil, nil, err
	}

	meta := p.doc.Meta
	chrome := layout.Chrome{
		DeckTitle:    p.doc.Title(),
		DeckSubtitle: meta.Subtitle,
		DeckDate:     meta.Date,
		Total:        len(p.units),
	}
	results := make([]layout.Result, len(p.plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, plan := range p.plans {
		g.Go(func() error {
			res, err := b.Build(gctx, plan, plan.Unit.FontSize, chrome)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	w, h := e.tpl.Size()
	deck := &layout.Deck{
		Width:  w,
		Height: h,
		Meta: layout.DeckMeta{
			Title:           chrome.DeckTitle,
			Subtitle:        meta.Subtitle,
			Date:            meta.Date,
			Template:        e.tpl.Name(),
			TemplateVersion: e.tpl.Version(),
			Creator:         Creator,
		},
		Fonts:  e.tpl.Fonts(),
		Slides: make([]layout.Slide, len(results)),
	}
	diags := p.diags
	for i, res := range results {
		deck.Slides[i] = res.Slide
		for src, img := range res.Assets {
			if deck.Assets == nil {
				deck.Assets = map[string]image.Image{}
			}
			deck.Assets[src] = img
		}
		diags = append(diags, res.Diagnostics...)
	}
	deck.Diagnostics = diags.Sorted()

	e.logger.Debug("deck converted",
		"slides", len(deck.Slides),
		"diagnostics", len(deck.Diagnostics),
		"template", e.tpl.Name(),
		"template_version", e.tpl.Version(),
	)
	return deck, deck.Diagnostics, nil
}

// Describe 只分页、选版式并计算字号，不加载图片也不绘制。
func (e *Engine) Describe(ctx context.Context, markdown []byte) ([]Summary, diag.List, error) {
	p, err := e.prepare(ctx, e.builder(nil), markdown)
	if err != nil {
		return nil, nil, err
	}
	diags := p.diags
	for _, plan := range p.plans {
		diags = append(diags, plan.Diagnostics...)
	}
	out := make([]Summary, len(p.units))
	for i, u := range p.units {
		out[i] = summarize(u)
	}
	return out, diags.Sorted(), nil
}

// Convert 使用一次性引擎完成转换。
func Convert(ctx context.Context, markdown []byte, tpl *template.Template, cfg config.Config, opts ...Option) (*layout.Deck, diag.List, error) {
	e, err := New(tpl, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return e.Convert(ctx, markdown)
}

// Describe 使用一次性引擎生成各页摘要。
func Describe(ctx context.Context, markdown []byte, tpl *template.Template, cfg config.Config, opts ...Option) ([]Summary, diag.List, error) {
	e, err := New(tpl, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return e.Describe(ctx, markdown)
}
