package document

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ByLCY/slidepress/diag"
)

// Options 控制解析行为。
type Options struct {
	// StripNumbering 将 "1. " 一类的章节编号从标题移入 Chapter.Number。
	StripNumbering bool
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Parse 解析 Markdown。解析从不失败，无法识别的语法以诊断形式记录。
func Parse(src []byte, opt Options) *Document {
	p := &parser{
		src:  src,
		opt:  opt,
		doc:  &Document{},
		bols: lineStarts(src),
	}
	root := markdown.Parser().Parse(text.NewReader(src))
	n := p.titlePage(root.FirstChild())
	for ; n != nil; n = n.NextSibling() {
		p.block(n)
	}
	p.flush()
	return p.doc
}

type parser struct {
	src    []byte
	opt    Options
	doc    *Document
	cur    *Chapter
	tables int
	bols   []int
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt 将字节偏移转换为 1 起始的行号。
func (p *parser) lineAt(offset int) int {
	return sort.SearchInts(p.bols, offset+1)
}

func (p *parser) line(n ast.Node) int {
	for ; n != nil; n = n.FirstChild() {
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			return p.lineAt(n.Lines().At(0).Start)
		}
	}
	return 0
}

// titlePage 识别开头的 # 标题、## 机构、### 日期（各自不带内容），返回其后的第一个节点。
func (p *parser) titlePage(n ast.Node) ast.Node {
	for level := 1; level <= 3 && n != nil; level++ {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != level {
			break
		}
		next := n.NextSibling()
		if next != nil && next.Kind() != ast.KindHeading {
			break
		}
		txt := strings.TrimSpace(p.inline(h))
		switch level {
		case 1:
			p.doc.Meta.Title = txt
		case 2:
			p.doc.Meta.Subtitle = txt
		case 3:
			p.doc.Meta.Date = txt
		}
		n = next
	}
	return n
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	if p.cur.Level > 0 || len(p.cur.Blocks) > 0 {
		p.doc.Chapters = append(p.doc.Chapters, *p.cur)
	}
	p.cur = nil
}

func (p *parser) add(b Block) {
	if p.cur == nil {
		p.cur = &Chapter{}
	}
	p.cur.Blocks = append(p.cur.Blocks, b)
}

func (p *parser) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		txt := strings.TrimSpace(p.inline(n))
		if n.Level > 3 {
			p.add(Heading{Level: n.Level, Text: txt})
			return
		}
		p.flush()
		ch := &Chapter{Level: n.Level, Title: txt}
		if p.opt.StripNumbering {
			ch.Number, ch.Title = StripNumbering(txt)
		}
		p.cur = ch
	case *ast.Paragraph:
		p.paragraph(n)
	case *extast.Table:
		p.table(n)
	case *ast.TextBlock:
		p.paragraph(n)
	case *ast.List:
		p.list(n, 0)
	case *ast.FencedCodeBlock:
		p.add(CodeBlock{Lang: string(n.Language(p.src)), Text: p.raw(n)})
	case *ast.CodeBlock:
		p.add(CodeBlock{Text: p.raw(n)})
	case *ast.ThematicBreak:
	case *ast.HTMLBlock:
		p.htmlBlock(n)
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			p.block(c)
		}
	default:
		p.doc.Diagnostics.AtLine(diag.UnsupportedSyntax, p.line(n), "unsupported block %s", n.Kind())
		if txt := strings.TrimSpace(p.inline(n)); txt != "" {
			p.add(Paragraph{Text: txt})
		}
	}
}

// paragraph 输出段落；段落中的图片单独成块，前后的文字各自成段。
func (p *parser) paragraph(n ast.Node) {
	var b strings.Builder
	emit := func() {
		if txt := strings.TrimSpace(b.String()); txt != "" {
			p.add(Paragraph{Text: txt})
		}
		b.Reset()
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Image:
			emit()
			p.add(Image{Src: string(c.Destination), Caption: strings.TrimSpace(p.inline(c))})
		case *ast.RawHTML:
			imgs, txt, unsupported := scanHTML(p.rawHTML(c))
			if unsupported {
				p.doc.Diagnostics.AtLine(diag.UnsupportedSyntax, p.line(n), "inline html reduced to text")
			}
			if len(imgs) == 0 {
				b.WriteString(txt)
				continue
			}
			emit()
			for _, img := range imgs {
				p.add(Image{Src: img.src, Caption: img.alt})
			}
		default:
			p.writeInline(&b, c)
		}
	}
	emit()
}

func (p *parser) list(n *ast.List, depth int) {
	ordered := n.IsOrdered()
	num := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var rest []ast.Node
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if txt := strings.TrimSpace(p.inline(c)); txt != "" {
					parts = append(parts, txt)
				}
			default:
				rest = append(rest, c)
			}
		}
		li := ListItem{Text: strings.Join(parts, "\n"), Depth: depth, Ordered: ordered}
		if ordered {
			li.Number = num
			num++
		}
		p.add(li)
		for _, c := range rest {
			if sub, ok := c.(*ast.List); ok {
				p.list(sub, depth+1)
				continue
			}
			p.block(c)
		}
	}
}

func (p *parser) htmlBlock(n *ast.HTMLBlock) {
	raw := p.raw(n)
	if n.HasClosure() {
		raw += string(n.ClosureLine.Value(p.src))
	}
	imgs, txt, _ := scanHTML(raw)
	for _, img := range imgs {
		p.add(Image{Src: img.src, Caption: img.alt})
	}
	if len(imgs) > 0 {
		return
	}
	p.doc.Diagnostics.AtLine(diag.UnsupportedSyntax, p.line(n), "html block reduced to text")
	if txt = collapseSpace(txt); txt != "" {
		p.add(Paragraph{Text: txt})
	}
}

// raw 拼接块节点的原始行，用于代码块与 HTML 块。
func (p *parser) raw(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(p.src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *parser) rawHTML(n *ast.RawHTML) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(p.src))
	}
	return b.String()
}

func (p *parser) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.writeInline(&b, c)
	}
	return b.String()
}

// writeInline 将行内节点归约为纯文本：软换行变空格，硬换行保留为 \n。
func (p *parser) writeInline(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		if n.IsRaw() {
			b.Write(n.Segment.Value(p.src))
		} else {
			b.Write(util.UnescapePunctuations(n.Segment.Value(p.src)))
		}
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
		return
	case *ast.String:
		b.Write(n.Value)
		return
	case *ast.AutoLink:
		b.Write(n.URL(p.src))
		return
	case *ast.RawHTML:
		_, txt, _ := scanHTML(p.rawHTML(n))
		b.WriteString(txt)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.writeInline(b, c)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
