package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/document"
	"github.com/ByLCY/slidepress/fit"
	"github.com/ByLCY/slidepress/template"
)

// region 为占位符（或其一部分）的矩形区域。
type region struct {
	X, Y, W, H float64
}

func regionOf(ph template.Placeholder) region {
	return region{X: ph.X, Y: ph.Y, W: ph.Width, H: ph.Height}
}

func (r region) box() fit.Box { return fit.Box{Width: r.W, Height: r.H} }

// splitV 将区域上下等分。
func (r region) splitV() (top, bottom region) {
	half := r.H / 2
	return region{X: r.X, Y: r.Y, W: r.W, H: half}, region{X: r.X, Y: r.Y + half, W: r.W, H: r.H - half}
}

type textItem struct {
	text   string
	indent float64
	font   string
}

type textSlot struct {
	ph     template.Placeholder
	region region
	items  []textItem
}

func (s *textSlot) fitItems() []fit.Item {
	out := make([]fit.Item, len(s.items))
	for i, it := range s.items {
		out[i] = fit.Item{Text: it.text, Indent: it.indent}
	}
	return out
}

type tableSlot struct {
	ph     template.Placeholder
	region region
	rows   [][]string
	header bool
}

type imageSlot struct {
	ph     template.Placeholder
	region region
	images []document.Image
}

// Plan 是单元内容与版式占位符的绑定结果，字号确定前即可得到。
type Plan struct {
	Unit        Unit
	Layout      template.Layout
	Diagnostics diag.List

	title  *textSlot
	bodies []*textSlot
	table  *tableSlot
	images *imageSlot
}

// Job 为一个占位符的字号搜索任务，可并发执行。
type Job struct {
	Placeholder string
	Run         func() (int, bool)
}

// Plan 将单元内容绑定到 u.Layout 指定版式的占位符上。
func (b *Builder) Plan(u Unit) *Plan {
	layout, ok := b.tpl.Layout(u.Layout)
	if !ok {
		layout, _ = b.tpl.Layout(LayoutContent)
	}
	p := &Plan{Unit: u, Layout: layout}
	slide := u.Index + 1

	if titles := layout.Of(template.PlaceholderTitle); len(titles) > 0 && u.Title != "" {
		p.title = &textSlot{
			ph:     titles[0],
			region: regionOf(titles[0]),
			items:  []textItem{{text: u.Title, font: titles[0].Font}},
		}
	}

	var text []document.Block
	var rows [][]string
	header := false
	var images []document.Image
	for _, blk := range u.Blocks {
		switch blk := blk.(type) {
		case document.TableRow:
			if len(rows) == 0 {
				header = blk.Header
			}
			rows = append(rows, blk.Cells)
		case document.Image:
			images = append(images, blk)
		default:
			text = append(text, blk)
		}
	}

	if len(rows) > 0 {
		if phs := layout.Of(template.PlaceholderTable); len(phs) > 0 {
			p.table = &tableSlot{ph: phs[0], region: regionOf(phs[0]), rows: normalizeRows(rows), header: header}
		} else {
			p.Diagnostics.Addf(diag.PlaceholderMissing, slide, "layout %q has no table placeholder, table rendered as text", layout.Name)
			for _, r := range rows {
				text = append(text, document.Paragraph{Text: strings.Join(r, " | ")})
			}
		}
	}
	if len(images) > 0 {
		if phs := layout.Of(template.PlaceholderImage); len(phs) > 0 {
			p.images = &imageSlot{ph: phs[0], region: regionOf(phs[0]), images: images}
		} else {
			p.Diagnostics.Addf(diag.PlaceholderMissing, slide, "layout %q has no image placeholder, images rendered as captions", layout.Name)
			for _, img := range images {
				text = append(text, document.Paragraph{Text: captionOf(img)})
			}
		}
	}
	if len(text) == 0 && p.images != nil && layout.Has(template.PlaceholderBody) {
		var captions []string
		for _, img := range p.images.images {
			if img.Caption != "" {
				captions = append(captions, img.Caption)
			}
		}
		if len(captions) > 0 {
			text = append(text, document.Paragraph{Text: strings.Join(captions, "  ·  ")})
		}
	}
	if len(text) > 0 {
		b.bindText(p, text)
	}
	return p
}

// bindText 将正文块分配给 body 占位符：依次一块一个，剩余的都进入最后一个。
func (b *Builder) bindText(p *Plan, blocks []document.Block) {
	slide := p.Unit.Index + 1
	for _, ph := range p.Layout.Of(template.PlaceholderBody) {
		p.bodies = append(p.bodies, &textSlot{ph: ph, region: regionOf(ph)})
	}
	if len(p.bodies) == 0 {
		host, ok := p.borrow()
		if !ok {
			p.Diagnostics.Addf(diag.PlaceholderMissing, slide, "layout %q has no placeholder for body text, %d blocks dropped", p.Layout.Name, len(blocks))
			return
		}
		p.Diagnostics.Addf(diag.PlaceholderMissing, slide, "layout %q has no body placeholder, text placed in shared area", p.Layout.Name)
		s := b.tpl.Slide()
		p.bodies = []*textSlot{{
			ph:     template.Placeholder{Name: "body", Type: template.PlaceholderBody, Font: template.FontBody, Color: s.Text, Align: "left"},
			region: host,
		}}
	}
	for i, blk := range blocks {
		slot := p.bodies[min(i, len(p.bodies)-1)]
		slot.items = append(slot.items, b.itemFor(blk, slot.ph))
	}
	// 未分配到内容的 body 占位符不参与字号计算与绘制。
	kept := p.bodies[:0]
	for _, s := range p.bodies {
		if len(s.items) > 0 {
			kept = append(kept, s)
		}
	}
	p.bodies = kept
}

// borrow 在缺少 body 占位符时，从表格/图片区域或其他非标题占位符中借出一块区域。
func (p *Plan) borrow() (region, bool) {
	switch {
	case p.table != nil:
		top, bottom := p.table.region.splitV()
		p.table.region = bottom
		return top, true
	case p.images != nil:
		top, bottom := p.images.region.splitV()
		p.images.region = bottom
		return top, true
	}
	for _, ph := range p.Layout.Placeholders {
		if ph.Type != template.PlaceholderTitle {
			return regionOf(ph), true
		}
	}
	return region{}, false
}

func (b *Builder) itemFor(blk document.Block, ph template.Placeholder) textItem {
	switch blk := blk.(type) {
	case document.ListItem:
		prefix := "•"
		if blk.Ordered {
			prefix = strconv.Itoa(blk.Number) + "."
		}
		return textItem{
			text:   prefix + " " + blk.Text,
			indent: b.tpl.Indent(blk.Depth),
			font:   ph.Font,
		}
	case document.CodeBlock:
		return textItem{text: blk.Text, font: b.tpl.Slide().CodeFont}
	case document.Heading:
		return textItem{text: blk.Text, font: template.FontHeading}
	case document.Paragraph:
		return textItem{text: blk.Text, font: ph.Font}
	default:
		return textItem{text: fmt.Sprint(blk), font: ph.Font}
	}
}

// normalizeRows 强制每行列数与第一行（表头）一致。
func normalizeRows(rows [][]string) [][]string {
	width := len(rows[0])
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		out[i] = row
	}
	return out
}

func captionOf(img document.Image) string {
	if img.Caption != "" {
		return img.Caption
	}
	return img.Src
}

// Jobs 返回本页所有承载文字的占位符（标题、正文、表格）的字号搜索任务。
func (b *Builder) Jobs(p *Plan) []Job {
	var jobs []Job
	text := func(s *textSlot) {
		params := b.opts.Fit.Capped(s.ph.MaxSize)
		items := s.fitItems()
		box := s.region.box()
		jobs = append(jobs, Job{Placeholder: s.ph.Name, Run: func() (int, bool) { return params.Text(items, box) }})
	}
	if p.title != nil {
		text(p.title)
	}
	for _, s := range p.bodies {
		text(s)
	}
	if t := p.table; t != nil {
		params := b.opts.Fit.Capped(t.ph.MaxSize)
		rows, box, pad := t.rows, t.region.box(), b.padding()
		jobs = append(jobs, Job{Placeholder: t.ph.Name, Run: func() (int, bool) { return params.Table(rows, box, pad) }})
	}
	return jobs
}

// Uniform 取各占位符字号的最小值作为整页字号；任何占位符无法放下时返回 ok=false，字号为下限。
func Uniform(sizes []int, fits []bool, params fit.Params) (int, bool) {
	size, ok := params.Max, true
	for i, s := range sizes {
		size = min(size, s)
		if !fits[i] {
			ok = false
		}
	}
	if !ok {
		return params.Min, false
	}
	return max(size, params.Min), true
}

// Fit 顺序执行全部字号搜索任务并返回整页字号。
func (b *Builder) Fit(p *Plan) (int, bool) {
	jobs := b.Jobs(p)
	sizes := make([]int, len(jobs))
	fits := make([]bool, len(jobs))
	for i, j := range jobs {
		sizes[i], fits[i] = j.Run()
	}
	return Uniform(sizes, fits, b.opts.Fit)
}
