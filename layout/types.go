package layout

import (
	"image"

	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/template"
)

// 该文件定义构建结果（幻灯片模型），供渲染、讲义导出与调试 JSON 共用。
// 坐标与尺寸单位均为 pt，原点位于幻灯片左上角。

// Deck 为一次转换的完整产物。
type Deck struct {
	Width       float64                  `json:"width"`
	Height      float64                  `json:"height"`
	Meta        DeckMeta                 `json:"meta"`
	Fonts       map[string]template.Font `json:"fonts"`
	Slides      []Slide                  `json:"slides"`
	Assets      map[string]image.Image   `json:"-"` // 已解码的图片，键为 ImageBox.Src
	Diagnostics diag.List                `json:"diagnostics,omitempty"`
}

// DeckMeta 保存标题页信息与 PDF 元信息。
type DeckMeta struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	Date            string `json:"date,omitempty"`
	Template        string `json:"template"`
	TemplateVersion string `json:"templateVersion,omitempty"`
	Creator         string `json:"creator"`
}

// Slide 记录一页幻灯片上可以直接绘制的元素。
type Slide struct {
	Number     int            `json:"number"`
	Role       Role           `json:"role"`
	Layout     string         `json:"layout"`
	Title      string         `json:"title,omitempty"`
	FontSize   float64        `json:"fontSize"`
	Background template.Color `json:"background"`
	Texts      []TextBox      `json:"texts"`
	Tables     []TableBox     `json:"tables,omitempty"`
	Images     []ImageBox     `json:"images,omitempty"`
	Rects      []Rect         `json:"rects,omitempty"`
	Footer     *TextBox       `json:"footer,omitempty"`
}

// TextBox 表示一个已经折行并定位的文本块。
type TextBox struct {
	Content    string         `json:"content"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	LineHeight float64        `json:"lineHeight"`
	Font       string         `json:"font"`
	FontSize   float64        `json:"fontSize"`
	Color      template.Color `json:"color"`
	Align      string         `json:"align,omitempty"` // left/center/right
	Lines      []TextLine     `json:"lines"`
}

// TextLine 为折行后的一行。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// ImageBox 为图片的最终位置与尺寸（已按比例缩放并居中）。
type ImageBox struct {
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TableBox 保存表格布局（等宽列）。
type TableBox struct {
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	Width        float64        `json:"width"`
	Height       float64        `json:"height"`
	ColumnWidths []float64      `json:"columnWidths"`
	Rows         []TableRow     `json:"rows"`
	BorderColor  template.Color `json:"borderColor"`
	HeaderFill   template.Color `json:"headerFill"`
}

// TableRow 记录每一行的位置、高度与单元格。
type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 复用 TextBox 作为单元格内容。
type TableCell struct {
	Text TextBox `json:"text"`
}

// Rect 表示一个矩形，FillColor 为空表示不填充。
type Rect struct {
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	StrokeColor *template.Color `json:"strokeColor,omitempty"`
	StrokeWidth float64         `json:"strokeWidth,omitempty"`
	FillColor   *template.Color `json:"fillColor,omitempty"`
}
