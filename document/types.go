// Package document 将 Markdown 解析为章节与内容块组成的文档树。
package document

import "github.com/ByLCY/slidepress/diag"

// Block 是封闭的内容块集合，只有本包内的类型可以实现。
type Block interface {
	isBlock()
}

// Heading 为章节内的 4~6 级标题。
type Heading struct {
	Level int
	Text  string
}

type Paragraph struct {
	Text string
}

// ListItem 为列表项；Depth 从 0 开始，有序列表的 Number 遵循列表起始序号。
type ListItem struct {
	Text    string
	Depth   int
	Ordered bool
	Number  int
}

// TableRow 为表格中的一行；同一表格的行共享 Table 编号，第一行为表头。
type TableRow struct {
	Cells  []string
	Header bool
	Table  int
}

type Image struct {
	Src     string
	Caption string
}

type CodeBlock struct {
	Lang string
	Text string
}

func (Heading) isBlock()   {}
func (Paragraph) isBlock() {}
func (ListItem) isBlock()  {}
func (TableRow) isBlock()  {}
func (Image) isBlock()     {}
func (CodeBlock) isBlock() {}

// Meta 为标题页信息。
type Meta struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Empty 报告标题页是否不存在。
func (m Meta) Empty() bool {
	return m.Title == "" && m.Subtitle == "" && m.Date == ""
}

// Chapter 对应一个 1~3 级标题及其内容；Level 为 0 表示第一个标题之前的内容。
type Chapter struct {
	Level  int
	Title  string
	Number string
	Blocks []Block
}

type Document struct {
	Meta        Meta
	Chapters    []Chapter
	Diagnostics diag.List
}

// Title 返回文档标题：优先标题页，其次第一个有标题的章节。
func (d *Document) Title() string {
	if d.Meta.Title != "" {
		return d.Meta.Title
	}
	for _, ch := range d.Chapters {
		if ch.Title != "" {
			return ch.Title
		}
	}
	return ""
}
