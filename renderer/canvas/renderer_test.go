package canvasrenderer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/ByLCY/slidepress/document"
	"github.com/ByLCY/slidepress/fit"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/template"
)

type oneImage struct{}

func (oneImage) Load(ctx context.Context, src string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
}

// sampleDeck 直接用 layout.Builder 构建三页幻灯片：列表、表格与图片。
func sampleDeck(t *testing.T) *layout.Deck {
	t.Helper()
	tpl, err := template.Builtin()
	if err != nil {
		t.Fatalf("加载内置模板失败: %v", err)
	}
	b := layout.NewBuilder(tpl, layout.Options{
		Fit:    fit.Params{Min: 12, Max: 44, LineSpacing: 1.2, Measurer: fit.Estimator{CharWidthFactor: 0.5}},
		Images: oneImage{},
	})
	units := []layout.Unit{
		{Title: "Agenda", Blocks: []document.Block{document.ListItem{Text: "one"}, document.ListItem{Text: "two"}}},
		{Title: "Numbers", Blocks: []document.Block{
			document.TableRow{Cells: []string{"k", "v"}, Header: true},
			document.TableRow{Cells: []string{"a", "1"}},
		}},
		{Title: "Picture", Blocks: []document.Block{document.Image{Src: "chart.png", Caption: "Chart"}}},
	}
	w, h := tpl.Size()
	deck := &layout.Deck{Width: w, Height: h, Fonts: tpl.Fonts(), Assets: map[string]image.Image{}}
	deck.Meta.Title = "Sample"
	for i, u := range units {
		u.Index = i
		u.Layout, _ = layout.Choose(u, tpl)
		p := b.Plan(u)
		size, _ := b.Fit(p)
		res, err := b.Build(context.Background(), p, size, layout.Chrome{DeckTitle: "Sample", Total: len(units)})
		if err != nil {
			t.Fatalf("构建第 %d 页失败: %v", i+1, err)
		}
		deck.Slides = append(deck.Slides, res.Slide)
		for src, img := range res.Assets {
			deck.Assets[src] = img
		}
	}
	return deck
}

func TestRenderPDFPageCount(t *testing.T) {
	deck := sampleDeck(t)
	data, err := NewRenderer("").Render(deck)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("读取 PDF 失败: %v", err)
	}
	if got := reader.NumPage(); got != len(deck.Slides) {
		t.Fatalf("期望 %d 页，实际 %d", len(deck.Slides), got)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("空结果应报错")
	}
	if _, err := r.Render(&layout.Deck{Width: 960, Height: 540}); err == nil {
		t.Fatalf("没有幻灯片应报错")
	}

	deck := sampleDeck(t)
	delete(deck.Assets, "chart.png")
	if _, err := r.Render(deck); err == nil {
		t.Fatalf("缺少图片资源应报错")
	}
}

func TestPreviewPNG(t *testing.T) {
	deck := sampleDeck(t)
	r := NewRenderer("")
	data, err := r.Preview(deck, 1, 96)
	if err != nil {
		t.Fatalf("预览失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("解码 PNG 失败: %v", err)
	}
	// 960pt 在 96 DPI 下约为 1280 像素。
	if dx := img.Bounds().Dx(); dx < 1278 || dx > 1282 {
		t.Fatalf("预览宽度异常: %d", dx)
	}
	if _, err := r.Preview(deck, 9, 96); err == nil {
		t.Fatalf("超出范围的页码应报错")
	}
}

func TestUnknownFontFallsBackToBody(t *testing.T) {
	deck := sampleDeck(t)
	deck.Slides[0].Texts[0].Font = "Missing"
	if _, err := NewRenderer("").Render(deck); err != nil {
		t.Fatalf("未知字体应回退到 Body: %v", err)
	}
}

// TestCharWidthFactorCalibration 断言默认系数 0.5 与内置正文字体的平均字宽大致相符。
func TestCharWidthFactorCalibration(t *testing.T) {
	tpl, err := template.Builtin()
	if err != nil {
		t.Fatalf("加载内置模板失败: %v", err)
	}
	body, _ := tpl.Font(template.FontBody)
	m, err := NewRenderer("").NewMeasurer(body)
	if err != nil {
		t.Fatalf("创建度量器失败: %v", err)
	}
	const sample = "The quick brown fox jumps over the lazy dog while slides fit their boxes"
	const size = 20.0
	factor := m.Width(sample, size) / (float64(fit.Chars(sample)) * size)
	if factor < 0.35 || factor > 0.65 {
		t.Fatalf("字宽系数 %.3f 偏离默认值 0.5 过多", factor)
	}

	// 宽度随字号线性增长。
	w12, w24 := m.Width(sample, 12), m.Width(sample, 24)
	if math.Abs(w24-2*w12) > 1e-3*w24 {
		t.Fatalf("宽度与字号不成比例: %g vs %g", w12, w24)
	}
}

func TestMeasurerWrapsWithinLimit(t *testing.T) {
	m, err := NewRenderer("").NewMeasurer(template.Font{Name: "Body", Src: "builtin:goregular"})
	if err != nil {
		t.Fatalf("创建度量器失败: %v", err)
	}
	const limit = 120.0
	lines := fit.Wrap("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", limit, 12, m)
	if len(lines) < 2 {
		t.Fatalf("期望折成多行，实际 %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 {
			t.Fatalf("第 %d 行宽度超限: %g > %g", i, ln.Width, limit)
		}
	}
}

func TestToColorKeepsAlpha(t *testing.T) {
	c, err := template.ParseColor("#1F4E7980")
	if err != nil {
		t.Fatalf("解析颜色失败: %v", err)
	}
	_, _, _, a := toColor(c).RGBA()
	if got := int(a >> 8); math.Abs(float64(got-0x80)) > 1 {
		t.Fatalf("期望 alpha 约 0x80，实际 %#x", got)
	}

	opaque, _ := template.ParseColor("#1F4E79")
	if _, _, _, a := toColor(opaque).RGBA(); a != 0xFFFF {
		t.Fatalf("六位颜色应不透明，实际 alpha %#x", a)
	}
}
