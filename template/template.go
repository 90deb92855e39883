// Package template 加载幻灯片模板：尺寸、字体、颜色、缩进、页脚以及具名版式的占位符几何。
// 模板加载后只读，访问器均返回副本。
package template

import (
	"slices"
	"sort"
)

// PlaceholderType 为占位符可容纳的内容类型。
type PlaceholderType string

const (
	PlaceholderTitle PlaceholderType = "title"
	PlaceholderBody  PlaceholderType = "body"
	PlaceholderTable PlaceholderType = "table"
	PlaceholderImage PlaceholderType = "image"
)

func (t PlaceholderType) valid() bool {
	switch t {
	case PlaceholderTitle, PlaceholderBody, PlaceholderTable, PlaceholderImage:
		return true
	}
	return false
}

// Placeholder 描述版式中的一个内容框，坐标与尺寸均为 pt，原点在左上角。
type Placeholder struct {
	Name     string          `json:"name" yaml:"name"`
	Type     PlaceholderType `json:"type" yaml:"type"`
	X        float64         `json:"x" yaml:"x"`
	Y        float64         `json:"y" yaml:"y"`
	Width    float64         `json:"width" yaml:"width"`
	Height   float64         `json:"height" yaml:"height"`
	Capacity int             `json:"capacity,omitempty" yaml:"capacity,omitempty"` // 0 表示不限
	Font     string          `json:"font" yaml:"font"`
	Color    Color           `json:"color" yaml:"color"`
	Align    string          `json:"align,omitempty" yaml:"align,omitempty"`
	MaxSize  float64         `json:"maxSize,omitempty" yaml:"maxSize,omitempty"` // 字号上限，0 表示使用配置
}

// Layout 为具名版式，占位符按声明顺序排列。
type Layout struct {
	Name         string        `json:"name" yaml:"name"`
	Placeholders []Placeholder `json:"placeholders" yaml:"placeholders"`
}

// Of 返回指定类型的占位符，保持声明顺序。
func (l Layout) Of(t PlaceholderType) []Placeholder {
	var out []Placeholder
	for _, p := range l.Placeholders {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

func (l Layout) Has(t PlaceholderType) bool {
	for _, p := range l.Placeholders {
		if p.Type == t {
			return true
		}
	}
	return false
}

func (l Layout) clone() Layout {
	l.Placeholders = slices.Clone(l.Placeholders)
	return l
}

// Font 为模板声明的字体资源，Src 可为文件路径或 builtin:<name>。
type Font struct {
	Name string `json:"name" yaml:"name"`
	Src  string `json:"src" yaml:"src"`
}

// Slide 为所有版式共享的幻灯片样式。
type Slide struct {
	Width       float64   `json:"width" yaml:"width"`
	Height      float64   `json:"height" yaml:"height"`
	Background  Color     `json:"background" yaml:"background"`
	Text        Color     `json:"text" yaml:"text"`
	Accent      Color     `json:"accent" yaml:"accent"`
	Indent      []float64 `json:"indent" yaml:"indent"`
	Footer      string    `json:"footer,omitempty" yaml:"footer,omitempty"`
	FooterFont  string    `json:"footerFont" yaml:"footerFont"`
	FooterSize  float64   `json:"footerSize" yaml:"footerSize"`
	FooterColor Color     `json:"footerColor" yaml:"footerColor"`
	CodeFont    string    `json:"codeFont" yaml:"codeFont"`
	TableHeader Color     `json:"tableHeader" yaml:"tableHeader"`
	TableBorder Color     `json:"tableBorder" yaml:"tableBorder"`
}

type Template struct {
	name    string
	version string
	slide   Slide
	fonts   map[string]Font
	colors  map[string]Color
	layouts map[string]Layout
}

func (t *Template) Name() string    { return t.name }
func (t *Template) Version() string { return t.version }

// Slide 返回幻灯片样式副本。
func (t *Template) Slide() Slide {
	s := t.slide
	s.Indent = slices.Clone(t.slide.Indent)
	return s
}

// Size 返回幻灯片宽高（pt）。
func (t *Template) Size() (float64, float64) {
	return t.slide.Width, t.slide.Height
}

// Layout 按名称查找版式。
func (t *Template) Layout(name string) (Layout, bool) {
	l, ok := t.layouts[name]
	if !ok {
		return Layout{}, false
	}
	return l.clone(), true
}

func (t *Template) Has(name string) bool {
	_, ok := t.layouts[name]
	return ok
}

// Names 返回排序后的版式名称。
func (t *Template) Names() []string {
	names := make([]string, 0, len(t.layouts))
	for name := range t.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Font 查找字体资源。
func (t *Template) Font(name string) (Font, bool) {
	f, ok := t.fonts[name]
	return f, ok
}

// Fonts 返回全部字体资源副本。
func (t *Template) Fonts() map[string]Font {
	out := make(map[string]Font, len(t.fonts))
	for k, v := range t.fonts {
		out[k] = v
	}
	return out
}

// Color 查找具名颜色。
func (t *Template) Color(name string) (Color, bool) {
	c, ok := t.colors[name]
	return c, ok
}

// MaxDepth 返回最深的缩进层级（从 0 开始）。
func (t *Template) MaxDepth() int {
	if len(t.slide.Indent) == 0 {
		return 0
	}
	return len(t.slide.Indent) - 1
}

// Indent 返回列表层级的缩进（pt），层级超出时取最深一级。
func (t *Template) Indent(depth int) float64 {
	if len(t.slide.Indent) == 0 {
		return 0
	}
	return t.slide.Indent[t.ClampDepth(depth)]
}

// ClampDepth 将列表层级限制在模板声明的缩进层级内。
func (t *Template) ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	return min(depth, t.MaxDepth())
}

// Capacity 返回版式中指定类型占位符的容量提示；多个占位符取最小的正值，0 表示不限。
func (t *Template) Capacity(layout string, typ PlaceholderType) int {
	l, ok := t.layouts[layout]
	if !ok {
		return 0
	}
	capacity := 0
	for _, p := range l.Placeholders {
		if p.Type != typ || p.Capacity <= 0 {
			continue
		}
		if capacity == 0 || p.Capacity < capacity {
			capacity = p.Capacity
		}
	}
	return capacity
}
