package layout

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/ByLCY/slidepress/binding"
	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/fit"
	"github.com/ByLCY/slidepress/template"
)

const (
	// imageGap 为同一占位符内多张图片之间的水平间距（pt）。
	imageGap = 12
	// accentBar 为内容页顶部强调色条的高度（pt）。
	accentBar = 6
)

var (
	errNoLoader   = errors.New("layout: 未配置图片加载器")
	errEmptyImage = errors.New("layout: 图片尺寸为空")
)

// Builder 根据模板将内容单元实例化为幻灯片。
type Builder struct {
	tpl  *template.Template
	opts Options
}

func NewBuilder(tpl *template.Template, opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Fit.Measurer == nil {
		opts.Fit.Measurer = fit.Estimator{CharWidthFactor: 0.5}
	}
	return &Builder{tpl: tpl, opts: opts}
}

func (b *Builder) Template() *template.Template { return b.tpl }

func (b *Builder) padding() float64 {
	if b.opts.TablePadding > 0 {
		return b.opts.TablePadding
	}
	return DefaultTablePadding
}

// Chrome 为页脚插值所需的整体信息。
type Chrome struct {
	DeckTitle    string
	DeckSubtitle string
	DeckDate     string
	Total        int
}

// Result 为单页构建结果。
type Result struct {
	Slide       Slide
	Assets      map[string]image.Image
	Diagnostics diag.List
}

// Build 以统一字号 size 构建一页幻灯片。图片加载失败只影响本页，以说明文字代替并记录诊断。
func (b *Builder) Build(ctx context.Context, p *Plan, size int, chrome Chrome) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	u := p.Unit
	style := b.tpl.Slide()
	res := Result{
		Slide: Slide{
			Number:     u.Index + 1,
			Role:       u.Role,
			Layout:     p.Layout.Name,
			Title:      u.Title,
			FontSize:   float64(size),
			Background: style.Background,
		},
	}
	res.Diagnostics = append(res.Diagnostics, p.Diagnostics...)
	if u.Role != RoleCover {
		accent := style.Accent
		res.Slide.Rects = append(res.Slide.Rects, Rect{Width: style.Width, Height: accentBar, FillColor: &accent})
	}

	s := float64(size)
	if p.title != nil {
		res.Slide.Texts = append(res.Slide.Texts, b.stack(p.title, s, true)...)
	}
	for _, slot := range p.bodies {
		res.Slide.Texts = append(res.Slide.Texts, b.stack(slot, s, false)...)
	}
	if p.table != nil {
		res.Slide.Tables = append(res.Slide.Tables, b.table(p.table, s, style))
	}
	if p.images != nil {
		if err := b.placeImages(ctx, p.images, s, &res); err != nil {
			return Result{}, err
		}
	}
	if style.Footer != "" && u.Role != RoleCover && u.Role != RoleSection {
		res.Slide.Footer = b.footer(p, style, u.Index+1, chrome)
	}
	return res, nil
}

// stack 将文本条目自上而下排列；middle 为 true 时整体在区域内垂直居中。
func (b *Builder) stack(slot *textSlot, s float64, middle bool) []TextBox {
	lineHeight := s * b.opts.Fit.LineSpacing
	boxes := make([]TextBox, 0, len(slot.items))
	total := 0.0
	for _, it := range slot.items {
		width := slot.region.W - it.indent
		lines := fit.Wrap(it.text, width, s, b.opts.Fit.Measurer)
		tb := TextBox{
			Content:    it.text,
			X:          slot.region.X + it.indent,
			Width:      width,
			Height:     float64(len(lines)) * lineHeight,
			LineHeight: lineHeight,
			Font:       it.font,
			FontSize:   s,
			Color:      slot.ph.Color,
			Align:      slot.ph.Align,
			Lines:      toTextLines(lines),
		}
		total += tb.Height
		boxes = append(boxes, tb)
	}
	y := slot.region.Y
	if middle && total < slot.region.H {
		y += (slot.region.H - total) / 2
	}
	for i := range boxes {
		boxes[i].Y = y
		y += boxes[i].Height
	}
	return boxes
}

func toTextLines(lines []fit.Line) []TextLine {
	out := make([]TextLine, len(lines))
	for i, l := range lines {
		out[i] = TextLine{Content: l.Text, Width: l.Width}
	}
	return out
}

// table 构建等宽列表格；表头使用粗体并填充底色。
func (b *Builder) table(t *tableSlot, s float64, style template.Slide) TableBox {
	cols := len(t.rows[0])
	pad := b.padding()
	colWidth := t.region.W / float64(max(cols, 1))
	lineHeight := s * b.opts.Fit.LineSpacing

	box := TableBox{
		X:            t.region.X,
		Y:            t.region.Y,
		Width:        t.region.W,
		ColumnWidths: make([]float64, cols),
		BorderColor:  style.TableBorder,
		HeaderFill:   style.TableHeader,
	}
	for i := range box.ColumnWidths {
		box.ColumnWidths[i] = colWidth
	}

	y := t.region.Y
	for ri, row := range t.rows {
		header := t.header && ri == 0
		font := t.ph.Font
		if header {
			font = template.FontHeading
		}
		cells := make([]TableCell, cols)
		maxLines := 1
		for ci, text := range row {
			lines := fit.Wrap(text, colWidth-2*pad, s, b.opts.Fit.Measurer)
			maxLines = max(maxLines, len(lines))
			cells[ci] = TableCell{Text: TextBox{
				Content:    text,
				X:          t.region.X + float64(ci)*colWidth + pad,
				Y:          y + pad,
				Width:      colWidth - 2*pad,
				Height:     float64(len(lines)) * lineHeight,
				LineHeight: lineHeight,
				Font:       font,
				FontSize:   s,
				Color:      t.ph.Color,
				Align:      t.ph.Align,
				Lines:      toTextLines(lines),
			}}
		}
		height := float64(maxLines)*lineHeight + 2*pad
		box.Rows = append(box.Rows, TableRow{Y: y, Height: height, IsHeader: header, Cells: cells})
		y += height
	}
	box.Height = y - t.region.Y
	return box
}

// placeImages 将图片按列等分占位符区域，按 min(宽比, 高比) 等比缩放后居中。
func (b *Builder) placeImages(ctx context.Context, slot *imageSlot, s float64, res *Result) error {
	n := len(slot.images)
	colWidth := (slot.region.W - imageGap*float64(n-1)) / float64(n)
	for i, img := range slot.images {
		cell := region{
			X: slot.region.X + float64(i)*(colWidth+imageGap),
			Y: slot.region.Y,
			W: colWidth,
			H: slot.region.H,
		}
		decoded, err := b.loadImage(ctx, img.Src)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res.Diagnostics.Addf(diag.ImageLoad, res.Slide.Number, "image %s: %v", img.Src, err)
			b.opts.Logger.Debug("image load failed", "src", img.Src, "error", err)
			fallback := &textSlot{
				ph:     template.Placeholder{Color: slot.ph.Color, Align: "center"},
				region: cell,
				items:  []textItem{{text: captionOf(img), font: template.FontBody}},
			}
			res.Slide.Texts = append(res.Slide.Texts, b.stack(fallback, s, true)...)
			continue
		}
		bounds := decoded.Bounds()
		res.Slide.Images = append(res.Slide.Images, Place(img.Src, bounds.Dx(), bounds.Dy(), cell.X, cell.Y, cell.W, cell.H))
		if res.Assets == nil {
			res.Assets = map[string]image.Image{}
		}
		res.Assets[img.Src] = decoded
	}
	return nil
}

func (b *Builder) loadImage(ctx context.Context, src string) (image.Image, error) {
	if b.opts.Images == nil {
		return nil, errNoLoader
	}
	img, err := b.opts.Images.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if bounds := img.Bounds(); bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errEmptyImage
	}
	return img, nil
}

// Place 计算图片在框内等比缩放并居中后的位置，允许放大。
func Place(src string, imgW, imgH int, x, y, w, h float64) ImageBox {
	scale := min(w/float64(imgW), h/float64(imgH))
	dw, dh := float64(imgW)*scale, float64(imgH)*scale
	return ImageBox{
		Src:    src,
		X:      x + (w-dw)/2,
		Y:      y + (h-dh)/2,
		Width:  dw,
		Height: dh,
	}
}

// footer 插值页脚模板，可用变量见 template.FooterVars。
func (b *Builder) footer(p *Plan, style template.Slide, number int, chrome Chrome) *TextBox {
	vars := binding.Vars{}.
		Set("deck.title", chrome.DeckTitle).
		Set("deck.subtitle", chrome.DeckSubtitle).
		Set("deck.date", chrome.DeckDate).
		Set("slide.number", number).
		Set("slide.total", chrome.Total).
		Set("slide.title", p.Unit.Title)
	text := binding.Interpolate(style.Footer, vars)
	margin := 24.0
	if len(p.Layout.Placeholders) > 0 {
		margin = p.Layout.Placeholders[0].X
		for _, ph := range p.Layout.Placeholders[1:] {
			margin = min(margin, ph.X)
		}
	}
	lineHeight := style.FooterSize * b.opts.Fit.LineSpacing
	width := style.Width - 2*margin
	lines := fit.Wrap(text, 0, style.FooterSize, b.opts.Fit.Measurer)
	return &TextBox{
		Content:    text,
		X:          margin,
		Y:          style.Height - lineHeight - style.FooterSize,
		Width:      width,
		Height:     lineHeight,
		LineHeight: lineHeight,
		Font:       style.FooterFont,
		FontSize:   style.FooterSize,
		Color:      style.FooterColor,
		Align:      "left",
		Lines:      toTextLines(lines[:1]),
	}
}
