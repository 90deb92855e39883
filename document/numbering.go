package document

import (
	"regexp"
	"strings"
)

// 匹配 "1. "、"2.3 "、"01、" 这类章节编号。
var numberingPattern = regexp.MustCompile(`^(?:(\d+(?:\.\d+)*)(?:[.)．]\s+|、\s*)|(\d+(?:\.\d+)+)\s+)`)

// StripNumbering 拆分标题中的章节编号；剥离后标题为空时保持原样。
func StripNumbering(title string) (number, rest string) {
	title = strings.TrimSpace(title)
	m := numberingPattern.FindStringSubmatch(title)
	if m == nil {
		return "", title
	}
	rest = strings.TrimSpace(title[len(m[0]):])
	if rest == "" {
		return "", title
	}
	number = m[1]
	if number == "" {
		number = m[2]
	}
	return number, rest
}
