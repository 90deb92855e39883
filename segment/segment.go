// Package segment 将文档章节切分为单页可容纳的幻灯片单元。
package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/document"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/template"
)

// ContSuffix 追加在续页标题之后。
const ContSuffix = " (cont.)"

// Segment 依次切分每个章节：内容块贪心地装入当前单元，直到该单元将选用的版式容量被超出，
// 再从第一个超出的块开始新的续页。切分只发生在块边界；表格续页重复表头行。
// 返回的单元已编号并选定版式，版式回退记录为 layout-fallback 诊断。
func Segment(ctx context.Context, doc *document.Document, tpl *template.Template, cfg config.SegmentConfig) ([]layout.Unit, diag.List, error) {
	s := &segmenter{tpl: tpl, cfg: cfg}

	if !doc.Meta.Empty() {
		s.units = append(s.units, cover(doc.Meta))
	}
	top := topLevel(doc.Chapters)
	if cfg.TOC {
		var items []document.Block
		for _, ch := range doc.Chapters {
			if ch.Level == top && ch.Title != "" {
				items = append(items, document.ListItem{Text: ch.Title, Ordered: true, Number: len(items) + 1})
			}
		}
		if len(items) > 0 {
			s.chunk(layout.RoleTOC, cfg.TOCTitle, -1, items)
		}
	}

	n := 0
	for i, ch := range doc.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		divided := false
		if cfg.ChapterDividers && ch.Level == top && ch.Title != "" {
			n++
			s.units = append(s.units, layout.Unit{
				Role:    layout.RoleSection,
				Title:   ch.Title,
				Chapter: i,
				Blocks:  []document.Block{document.Paragraph{Text: fmt.Sprintf("%02d", n)}},
			})
			divided = true
		}
		if len(ch.Blocks) == 0 && (divided || ch.Title == "") {
			continue
		}
		s.chunk(layout.RoleContent, ch.Title, i, ch.Blocks)
	}

	if cfg.ClosingTitle != "" {
		s.units = append(s.units, layout.Unit{Role: layout.RoleClosing, Title: cfg.ClosingTitle, Chapter: -1})
	}

	var diags diag.List
	for i := range s.units {
		u := &s.units[i]
		u.Index = i
		name, fellBack := layout.Choose(*u, tpl)
		if fellBack {
			diags.Addf(diag.LayoutFallback, i+1, "layout %q not in template, using %q", layout.Select(*u), name)
		}
		u.Layout = name
	}
	return s.units, diags, nil
}

// topLevel 返回有标题章节中的最高级别（数值最小）。
func topLevel(chapters []document.Chapter) int {
	top := 0
	for _, ch := range chapters {
		if ch.Level > 0 && (top == 0 || ch.Level < top) {
			top = ch.Level
		}
	}
	return top
}

func cover(m document.Meta) layout.Unit {
	u := layout.Unit{Role: layout.RoleCover, Title: m.Title, Chapter: -1}
	for _, text := range []string{m.Subtitle, m.Date} {
		if text != "" {
			u.Blocks = append(u.Blocks, document.Paragraph{Text: text})
		}
	}
	return u
}

type segmenter struct {
	tpl   *template.Template
	cfg   config.SegmentConfig
	units []layout.Unit
}

// chunk 贪心切分一组内容块。
func (s *segmenter) chunk(role layout.Role, title string, chapter int, blocks []document.Block) {
	headers := map[int]document.TableRow{}
	var cur []document.Block
	cont := false
	emit := func() {
		t := title
		if cont {
			t = strings.TrimSpace(title + ContSuffix)
		}
		s.units = append(s.units, layout.Unit{
			Role:         role,
			Title:        t,
			Chapter:      chapter,
			Continuation: cont,
			Blocks:       cur,
		})
	}

	for _, blk := range blocks {
		row, isRow := blk.(document.TableRow)
		if isRow && row.Header {
			headers[row.Table] = row
		}
		if len(cur) > 0 && !s.fits(role, title, append(cur[:len(cur):len(cur)], blk)) {
			emit()
			cur, cont = nil, true
			if isRow && !row.Header {
				if h, ok := headers[row.Table]; ok {
					cur = append(cur, h)
				}
			}
		}
		cur = append(cur, blk)
	}
	if len(cur) > 0 || len(blocks) == 0 {
		emit()
	}
}

// fits 报告 blocks 是否在其将选用版式的容量之内。
func (s *segmenter) fits(role layout.Role, title string, blocks []document.Block) bool {
	c := layout.Count(blocks)
	if c.Tables > 1 || (c.Tables > 0 && c.Images > 0) {
		return false
	}
	name, _ := layout.Choose(layout.Unit{Role: role, Title: title, Blocks: blocks}, s.tpl)
	return c.ListItems <= s.capacity(s.cfg.MaxListItemsPerSlide, name, template.PlaceholderBody) &&
		c.TableRows <= s.capacity(s.cfg.MaxTableRowsPerSlide, name, template.PlaceholderTable) &&
		c.Images <= s.capacity(s.cfg.MaxImagesPerSlide, name, template.PlaceholderImage)
}

// capacity 取配置上限与模板容量提示中较小的正值；两者都缺省时不限。
func (s *segmenter) capacity(limit int, name string, typ template.PlaceholderType) int {
	hint := s.tpl.Capacity(name, typ)
	switch {
	case limit <= 0 && hint <= 0:
		return int(^uint(0) >> 1)
	case limit <= 0:
		return hint
	case hint <= 0:
		return limit
	}
	return min(limit, hint)
}
