package layout

import "github.com/ByLCY/slidepress/document"

// Role 为幻灯片单元的用途。
type Role string

const (
	RoleCover   Role = "cover"
	RoleTOC     Role = "toc"
	RoleSection Role = "section"
	RoleContent Role = "content"
	RoleClosing Role = "closing"
)

// Unit 为一页幻灯片的内容单元。Index 从 0 开始；Chapter 为 -1 表示与章节无关的结构页。
type Unit struct {
	Index        int
	Role         Role
	Title        string
	Chapter      int
	Continuation bool
	Blocks       []document.Block
	Layout       string
	FontSize     int
}

// Counts 统计单元内各类内容块的数量。
type Counts struct {
	Headings   int `json:"headings,omitempty" yaml:"headings,omitempty"`
	Paragraphs int `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	ListItems  int `json:"listItems,omitempty" yaml:"listItems,omitempty"`
	TableRows  int `json:"tableRows,omitempty" yaml:"tableRows,omitempty"` // 不含表头
	Tables     int `json:"tables,omitempty" yaml:"tables,omitempty"`
	Images     int `json:"images,omitempty" yaml:"images,omitempty"`
	Code       int `json:"code,omitempty" yaml:"code,omitempty"`
}

// Text 返回正文类块（段落、列表项、代码）的数量。
func (c Counts) Text() int {
	return c.Paragraphs + c.ListItems + c.Code
}

func Count(blocks []document.Block) Counts {
	var c Counts
	tables := map[int]struct{}{}
	for _, b := range blocks {
		switch b := b.(type) {
		case document.Heading:
			c.Headings++
		case document.Paragraph:
			c.Paragraphs++
		case document.ListItem:
			c.ListItems++
		case document.TableRow:
			if !b.Header {
				c.TableRows++
			}
			tables[b.Table] = struct{}{}
		case document.Image:
			c.Images++
		case document.CodeBlock:
			c.Code++
		}
	}
	c.Tables = len(tables)
	return c
}
