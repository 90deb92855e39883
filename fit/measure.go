// Package fit 计算文本在固定尺寸占位符内可用的最大整数字号。
package fit

import "golang.org/x/text/width"

// Measurer 返回文本在给定字号（pt）下的宽度（pt）。
type Measurer interface {
	Width(text string, size float64) float64
}

// Estimator 按字符数估算宽度：字符数 × 系数 × 字号，东亚宽字符计为两个字符。
type Estimator struct {
	CharWidthFactor float64
}

func (e Estimator) Width(text string, size float64) float64 {
	return float64(Chars(text)) * e.CharWidthFactor * size
}

// Chars 返回按显示宽度计的字符数。
func Chars(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
