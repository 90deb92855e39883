package template

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/ByLCY/slidepress/binding"
	"github.com/ByLCY/slidepress/dsl"
	"github.com/ByLCY/slidepress/errs"
)

// LayoutContent 是模板必须提供的兜底版式。
const LayoutContent = "content"

// 默认字体资源名。
const (
	FontBody    = "Body"
	FontHeading = "Heading"
	FontCode    = "Code"
)

const geometryEpsilon = 0.01

// FooterVars 为页脚可引用的变量。
var FooterVars = []string{"deck.title", "deck.subtitle", "deck.date", "slide.number", "slide.total", "slide.title"}

// Parse 读取并编译模板描述，语法或校验错误返回 TEMPLATE_INVALID。
func Parse(r io.Reader) (*Template, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, errs.NewTemplate("模板语法错误", err)
	}
	return Compile(doc)
}

// Compile 将语法树转换为只读模板。
func Compile(doc *dsl.Document) (*Template, error) {
	tpl := &Template{
		name:    doc.Name,
		version: doc.Version,
		slide: Slide{
			Width:       960,
			Height:      540,
			Background:  Color{R: 255, G: 255, B: 255, A: 255},
			Text:        Color{R: 30, G: 30, B: 30, A: 255},
			Accent:      Color{R: 31, G: 78, B: 121, A: 255},
			Indent:      []float64{0},
			FooterSize:  10,
			FooterColor: Color{R: 120, G: 120, B: 120, A: 255},
			TableHeader: Color{R: 230, G: 236, B: 244, A: 255},
			TableBorder: Color{R: 160, G: 160, B: 160, A: 255},
		},
		fonts:   map[string]Font{},
		colors:  map[string]Color{},
		layouts: map[string]Layout{},
	}

	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			compileMeta(tpl, section.Meta.Block)
		case section.Resources != nil:
			if err := compileResources(tpl, section.Resources.Block); err != nil {
				return nil, err
			}
		}
	}
	for name, src := range map[string]string{
		FontBody:    "builtin:goregular",
		FontHeading: "builtin:gobold",
		FontCode:    "builtin:gomono",
	} {
		if _, ok := tpl.fonts[name]; !ok {
			tpl.fonts[name] = Font{Name: name, Src: src}
		}
	}
	tpl.slide.FooterFont = FontBody
	tpl.slide.CodeFont = FontCode

	for _, section := range doc.Sections {
		if section.Slide != nil {
			if err := compileSlide(tpl, section.Slide.Block); err != nil {
				return nil, err
			}
		}
	}
	for _, section := range doc.Sections {
		if section.Layout == nil {
			continue
		}
		layout, err := compileLayout(tpl, section.Layout)
		if err != nil {
			return nil, err
		}
		if _, dup := tpl.layouts[layout.Name]; dup {
			return nil, templateErr(section.Layout.Pos.Line, "版式 %q 重复定义", layout.Name)
		}
		tpl.layouts[layout.Name] = layout
	}

	if err := validate(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func templateErr(line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("第 %d 行: %s", line, msg)
	}
	return errs.NewTemplate(msg, nil)
}

func compileMeta(tpl *Template, block *dsl.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch strings.ToLower(stmt.Assignment.Key) {
		case "name":
			tpl.name = stmt.Assignment.Value.Raw()
		case "version":
			tpl.version = stmt.Assignment.Value.Raw()
		}
	}
}

func compileResources(tpl *Template, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil || len(cmd.Args) == 0 {
			continue
		}
		name := cmd.Args[0].Value
		switch cmd.Name {
		case "font":
			font := Font{Name: name}
			if cmd.Block != nil {
				for _, s := range cmd.Block.Statements {
					if s.Assignment != nil && s.Assignment.Key == "src" {
						font.Src = s.Assignment.Value.Raw()
					}
				}
			}
			if font.Src == "" {
				return templateErr(cmd.Pos.Line, "字体 %s 缺少 src", name)
			}
			tpl.fonts[name] = font
		case "color":
			var raw string
			for _, arg := range cmd.Args[1:] {
				if arg.Raw != "=" {
					raw = arg.Value
				}
			}
			c, err := ParseColor(raw)
			if err != nil {
				return templateErr(cmd.Pos.Line, "颜色 %s: %v", name, err)
			}
			tpl.colors[name] = c
		}
	}
	return nil
}

func compileSlide(tpl *Template, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	s := &tpl.slide
	for _, stmt := range block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		raw := a.Value.Raw()
		var err error
		switch strings.ToLower(a.Key) {
		case "width":
			s.Width, err = absLength(raw)
		case "height":
			s.Height, err = absLength(raw)
		case "background":
			s.Background, err = tpl.resolveColor(raw)
		case "color":
			s.Text, err = tpl.resolveColor(raw)
		case "accent":
			s.Accent, err = tpl.resolveColor(raw)
		case "indent":
			s.Indent, err = indentLevels(a.Value)
		case "footer":
			s.Footer = raw
		case "footer-font":
			s.FooterFont = raw
		case "footer-size":
			s.FooterSize, err = absLength(raw)
		case "footer-color":
			s.FooterColor, err = tpl.resolveColor(raw)
		case "code-font":
			s.CodeFont = raw
		case "table-header":
			s.TableHeader, err = tpl.resolveColor(raw)
		case "table-border":
			s.TableBorder, err = tpl.resolveColor(raw)
		}
		if err != nil {
			return templateErr(a.Pos.Line, "slide.%s: %v", a.Key, err)
		}
	}
	if s.Width <= 0 || s.Height <= 0 {
		return templateErr(0, "幻灯片尺寸必须为正数，实际 %gx%g", s.Width, s.Height)
	}
	for _, name := range binding.Names(s.Footer) {
		if !slices.Contains(FooterVars, name) {
			return templateErr(0, "页脚引用了未知变量 ${%s}", name)
		}
	}
	for _, font := range []string{s.FooterFont, s.CodeFont} {
		if _, ok := tpl.fonts[font]; !ok {
			return templateErr(0, "未声明的字体 %s", font)
		}
	}
	return nil
}

func indentLevels(v *dsl.Value) ([]float64, error) {
	values := []*dsl.Value{v}
	if v.Array != nil {
		values = v.Array.Values
	}
	levels := make([]float64, 0, len(values))
	for _, item := range values {
		pt, err := absLength(item.Raw())
		if err != nil {
			return nil, err
		}
		if pt < 0 {
			return nil, fmt.Errorf("缩进不能为负数")
		}
		levels = append(levels, pt)
	}
	if len(levels) == 0 {
		levels = []float64{0}
	}
	return levels, nil
}

func compileLayout(tpl *Template, section *dsl.LayoutSection) (Layout, error) {
	layout := Layout{Name: string(section.Name)}
	if section.Block == nil {
		return layout, nil
	}
	for _, stmt := range section.Block.Statements {
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "placeholder" {
			continue
		}
		p, err := compilePlaceholder(tpl, cmd)
		if err != nil {
			return Layout{}, fmt.Errorf("版式 %q: %w", layout.Name, err)
		}
		layout.Placeholders = append(layout.Placeholders, p)
	}
	return layout, nil
}

func compilePlaceholder(tpl *Template, cmd *dsl.Command) (Placeholder, error) {
	p := Placeholder{Color: tpl.slide.Text, Align: "left"}
	if len(cmd.Args) > 0 {
		p.Name = cmd.Args[0].Value
		if t := PlaceholderType(p.Name); t.valid() {
			p.Type = t
		}
	}
	if cmd.Block == nil {
		return p, templateErr(cmd.Pos.Line, "占位符 %s 缺少属性", p.Name)
	}
	W, H := tpl.slide.Width, tpl.slide.Height
	for _, stmt := range cmd.Block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		raw := a.Value.Raw()
		var err error
		switch strings.ToLower(a.Key) {
		case "type":
			p.Type = PlaceholderType(strings.ToLower(raw))
			if !p.Type.valid() {
				err = fmt.Errorf("未知的占位符类型 %q", raw)
			}
		case "x":
			p.X, err = relLength(raw, W)
		case "y":
			p.Y, err = relLength(raw, H)
		case "width":
			p.Width, err = relLength(raw, W)
		case "height":
			p.Height, err = relLength(raw, H)
		case "capacity":
			p.Capacity, err = strconv.Atoi(raw)
			if err == nil && p.Capacity < 0 {
				err = fmt.Errorf("容量不能为负数")
			}
		case "font":
			p.Font = raw
		case "color":
			p.Color, err = tpl.resolveColor(raw)
		case "align":
			p.Align = strings.ToLower(raw)
		case "max-size":
			p.MaxSize, err = absLength(raw)
		}
		if err != nil {
			return p, templateErr(a.Pos.Line, "占位符 %s.%s: %v", p.Name, a.Key, err)
		}
	}
	if p.Type == "" {
		return p, templateErr(cmd.Pos.Line, "占位符 %s 缺少 type", p.Name)
	}
	if p.Font == "" {
		p.Font = FontBody
		if p.Type == PlaceholderTitle {
			p.Font = FontHeading
		}
	}
	return p, nil
}

func (tpl *Template) resolveColor(raw string) (Color, error) {
	if strings.HasPrefix(raw, "#") {
		return ParseColor(raw)
	}
	if c, ok := tpl.colors[raw]; ok {
		return c, nil
	}
	return Color{}, fmt.Errorf("未声明的颜色 %s", raw)
}

func absLength(raw string) (float64, error) {
	l, ok := ParseLength(raw)
	if !ok || l.Unit == UnitPercent {
		return 0, fmt.Errorf("无效长度 %q", raw)
	}
	return l.Pt(0), nil
}

func relLength(raw string, ref float64) (float64, error) {
	l, ok := ParseLength(raw)
	if !ok {
		return 0, fmt.Errorf("无效长度 %q", raw)
	}
	return l.Pt(ref), nil
}

// validate 校验版式完整性与占位符几何。
func validate(tpl *Template) error {
	if _, ok := tpl.layouts[LayoutContent]; !ok {
		return templateErr(0, "模板缺少 %q 版式", LayoutContent)
	}
	W, H := tpl.slide.Width, tpl.slide.Height
	for _, name := range tpl.Names() {
		layout := tpl.layouts[name]
		if len(layout.Placeholders) == 0 {
			return templateErr(0, "版式 %q 没有占位符", name)
		}
		for _, p := range layout.Placeholders {
			switch {
			case p.Width <= 0 || p.Height <= 0:
				return templateErr(0, "版式 %q 的占位符 %s 尺寸必须为正数", name, p.Name)
			case p.X < 0 || p.Y < 0 || p.X+p.Width > W+geometryEpsilon || p.Y+p.Height > H+geometryEpsilon:
				return templateErr(0, "版式 %q 的占位符 %s 超出幻灯片范围", name, p.Name)
			}
			if _, ok := tpl.fonts[p.Font]; !ok {
				return templateErr(0, "版式 %q 的占位符 %s 引用了未声明的字体 %s", name, p.Name, p.Font)
			}
		}
	}
	return nil
}
