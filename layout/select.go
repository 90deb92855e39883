package layout

import (
	"unicode/utf8"

	"github.com/ByLCY/slidepress/document"
)

// 内置版式名称。
const (
	LayoutTitle        = "title"
	LayoutTitleContent = "title+content"
	LayoutTable        = "table"
	LayoutImageCaption = "image+caption"
	LayoutContent      = "content"
	LayoutCover        = "cover"
	LayoutSection      = "section"
)

// shortCaptionRunes 为图文版式中说明文字的长度上限。
const shortCaptionRunes = 120

// LayoutSet 报告模板是否定义了某个版式。
type LayoutSet interface {
	Has(name string) bool
}

// Select 根据单元的角色与内容构成选择版式，是纯函数。
func Select(u Unit) string {
	switch u.Role {
	case RoleCover:
		return LayoutCover
	case RoleSection:
		return LayoutSection
	}
	return selectContent(u.Title, u.Blocks)
}

func selectContent(title string, blocks []document.Block) string {
	c := Count(blocks)
	switch {
	case c.Text() == 0 && c.Tables == 0 && c.Images == 0:
		if title != "" || c.Headings > 0 {
			return LayoutTitle
		}
		return LayoutContent
	case c.ListItems > 0 && c.Paragraphs == 0 && c.Code == 0 && c.Tables == 0 && c.Images == 0:
		return LayoutTitleContent
	case c.Tables == 1 && c.Text() == 0 && c.Images == 0:
		return LayoutTable
	case c.Images > 0 && c.Tables == 0 && shortText(blocks, c):
		return LayoutImageCaption
	case c.Tables > 0:
		return LayoutTable
	case c.Images > 0:
		return LayoutImageCaption
	case c.ListItems > 0 || c.Paragraphs > 0:
		return LayoutTitleContent
	default:
		return LayoutContent
	}
}

// shortText 判断正文类块不超过一个且长度不超过说明文字上限。
func shortText(blocks []document.Block, c Counts) bool {
	if c.Text() > 1 {
		return false
	}
	for _, b := range blocks {
		var text string
		switch b := b.(type) {
		case document.Paragraph:
			text = b.Text
		case document.ListItem:
			text = b.Text
		case document.CodeBlock:
			text = b.Text
		default:
			continue
		}
		if utf8.RuneCountInString(text) > shortCaptionRunes {
			return false
		}
	}
	return true
}

// Choose 在 Select 的基础上考虑模板：角色版式缺失时按内容选择，仍缺失时回退到 "content"。
// fellBack 为 true 表示发生了回退。
func Choose(u Unit, layouts LayoutSet) (name string, fellBack bool) {
	name = Select(u)
	if layouts.Has(name) {
		return name, false
	}
	if u.Role == RoleCover || u.Role == RoleSection {
		if alt := selectContent(u.Title, u.Blocks); layouts.Has(alt) {
			return alt, false
		}
	}
	return LayoutContent, true
}
