package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
	"github.com/ByLCY/slidepress/template"
)

// tableBorderWidth 为表格边框线宽（mm）。
const tableBorderWidth = 0.2

// Renderer 借助 github.com/tdewolff/canvas 将幻灯片模型绘制为 PDF 或 PNG。
// 幻灯片模型以 pt 为单位，canvas 以 mm 为单位，在绘制边界统一换算。
type Renderer struct {
	baseDir string

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily // 按字体来源缓存
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建渲染器，baseDir 用于解析模板中以路径给出的字体。
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{
		baseDir:  baseDir,
		families: map[string]*canvas.FontFamily{},
	}
}

// ContentType 实现 renderer.Renderer。
func (r *Renderer) ContentType() string { return "application/pdf" }

// Extension 实现 renderer.Renderer。
func (r *Renderer) Extension() string { return ".pdf" }

// Render 将整份幻灯片输出为 PDF，每张幻灯片一页。
func (r *Renderer) Render(deck *layout.Deck) ([]byte, error) {
	if deck == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("缺少可渲染的幻灯片")
	}

	w, h := mm(deck.Width), mm(deck.Height)
	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	writer.SetInfo(deck.Meta.Title, deck.Meta.Subtitle, "", "", deck.Meta.Creator)
	for i, slide := range deck.Slides {
		if i > 0 {
			writer.NewPage(w, h)
		}
		c, err := r.page(deck, slide)
		if err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", slide.Number, err)
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview 将第 number 张幻灯片（从 1 开始）光栅化为 PNG，dpi 为分辨率。
func (r *Renderer) Preview(deck *layout.Deck, number int, dpi float64) ([]byte, error) {
	if deck == nil || number < 1 || number > len(deck.Slides) {
		return nil, fmt.Errorf("幻灯片 %d 不存在", number)
	}
	if dpi <= 0 {
		dpi = 96
	}
	c, err := r.page(deck, deck.Slides[number-1])
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPI(dpi), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) page(deck *layout.Deck, slide layout.Slide) (*canvas.Canvas, error) {
	w, h := mm(deck.Width), mm(deck.Height)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	// 背景与形状在内容之前绘制
	ctx.SetFillColor(toColor(slide.Background))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))
	r.drawRects(ctx, slide.Rects)

	for _, tb := range slide.Texts {
		if err := r.drawTextBox(ctx, deck.Fonts, tb); err != nil {
			return nil, err
		}
	}
	if err := r.drawTables(ctx, deck.Fonts, slide.Tables); err != nil {
		return nil, err
	}
	if err := r.drawImages(ctx, deck.Assets, slide.Images); err != nil {
		return nil, err
	}
	if slide.Footer != nil {
		if err := r.drawTextBox(ctx, deck.Fonts, *slide.Footer); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, fonts map[string]template.Font, tb layout.TextBox) error {
	face, err := r.face(fonts, tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width}}
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	// 基线：行顶部加上行内留白的一半，再加字体上升部。
	metrics := face.Metrics()
	lineHeight := mm(tb.LineHeight)
	if lineHeight <= 0 {
		lineHeight = metrics.LineHeight
	}
	inset := max(lineHeight-(metrics.Ascent+metrics.Descent), 0) / 2
	cursorY := mm(tb.Y)
	for _, line := range lines {
		ctx.DrawText(mm(anchorX), cursorY+inset+metrics.Ascent, canvas.NewTextLine(face, line.Content, textAlign))
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) drawTables(ctx *canvas.Context, fonts map[string]template.Font, tables []layout.TableBox) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		for _, row := range table.Rows {
			x := table.X
			for idx, cell := range row.Cells {
				colWidth := table.ColumnWidths[min(idx, len(table.ColumnWidths)-1)]
				var fill color.Color = canvas.White
				if row.IsHeader {
					fill = toColor(table.HeaderFill)
				}
				ctx.SetFillColor(fill)
				ctx.SetStrokeColor(toColor(table.BorderColor))
				ctx.SetStrokeWidth(tableBorderWidth)
				ctx.DrawPath(mm(x), mm(row.Y), canvas.Rectangle(mm(colWidth), mm(row.Height)))

				if err := r.drawTextBox(ctx, fonts, cell.Text); err != nil {
					return err
				}
				x += colWidth
			}
		}
	}
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, assets map[string]image.Image, images []layout.ImageBox) error {
	for _, box := range images {
		img, ok := assets[box.Src]
		if !ok {
			return fmt.Errorf("图片 %s 未加载", box.Src)
		}
		width := mm(box.Width)
		if width <= 0 {
			continue
		}
		dpmm := float64(img.Bounds().Dx()) / width
		ctx.DrawImage(mm(box.X), mm(box.Y), img, canvas.DPMM(dpmm))
	}
	return nil
}

func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		if rc.FillColor != nil {
			ctx.SetFillColor(toColor(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		if rc.StrokeColor != nil {
			ctx.SetStrokeColor(toColor(*rc.StrokeColor))
			ctx.SetStrokeWidth(max(rc.StrokeWidth*template.PtToMm, tableBorderWidth))
		} else {
			ctx.SetStrokeColor(canvas.Transparent)
		}
		ctx.DrawPath(mm(rc.X), mm(rc.Y), canvas.Rectangle(mm(rc.Width), mm(rc.Height)))
	}
}

// face 按资源名取字体面，size 以 pt 计。未声明的资源名回退到 Body，再回退到内置 goregular。
func (r *Renderer) face(fonts map[string]template.Font, name string, size float64, col template.Color) (*canvas.FontFace, error) {
	font, ok := fonts[name]
	if !ok {
		font, ok = fonts[template.FontBody]
	}
	if !ok {
		font = template.Font{Name: template.FontBody, Src: "builtin:goregular"}
	}
	family, err := r.family(font.Src)
	if err != nil {
		return nil, err
	}
	return family.Face(size, toColor(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) family(src string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[src]; ok {
		return family, nil
	}
	data, err := fonts.Load(src, r.baseDir)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(src)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", src, err)
	}
	r.families[src] = family
	return family, nil
}

func toColor(c template.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}

// mm 将点(pt)转换为毫米(mm)。
func mm(pt float64) float64 { return pt * template.PtToMm }
