// Package diag 记录转换过程中的非致命告警。
package diag

import (
	"fmt"
	"sort"
)

// Code 为诊断类别。
type Code string

const (
	TableShape         Code = "table-shape"
	UnsupportedSyntax  Code = "unsupported-syntax"
	FontOverflow       Code = "font-overflow"
	ImageLoad          Code = "image-load"
	PlaceholderMissing Code = "placeholder-missing"
	LayoutFallback     Code = "layout-fallback"
)

// Diagnostic 描述一条告警；Slide 从 1 开始，0 表示文档级（解析阶段）。
type Diagnostic struct {
	Code    Code   `json:"code" yaml:"code"`
	Slide   int    `json:"slide,omitempty" yaml:"slide,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Slide > 0:
		return fmt.Sprintf("[%s] slide %d: %s", d.Code, d.Slide, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("[%s] line %d: %s", d.Code, d.Line, d.Message)
	default:
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
}

// List 是按产生顺序排列的诊断集合。
type List []Diagnostic

// Addf 追加一条诊断。
func (l *List) Addf(code Code, slide int, format string, args ...any) {
	*l = append(*l, Diagnostic{Code: code, Slide: slide, Message: fmt.Sprintf(format, args...)})
}

// AtLine 追加一条带源码行号的诊断。
func (l *List) AtLine(code Code, line int, format string, args ...any) {
	*l = append(*l, Diagnostic{Code: code, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Merge 依次合并多个列表，保持每个列表内部顺序。
func Merge(lists ...List) List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Sorted 返回按 slide 稳定排序后的副本，文档级诊断排在最前。
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slide < out[j].Slide })
	return out
}

// Count 统计某一类诊断的条数。
func (l List) Count(code Code) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}
