package fit

import (
	"math"
	"strings"
	"unicode"
)

// Line 为折行后的一行。
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// Wrap 贪心折行：优先在空白处断开，超长的词按字符拆分，\n 总是强制换行。
// limit 为可用宽度（pt），<=0 表示不限。
func Wrap(content string, limit, size float64, m Measurer) []Line {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	measure := func(s string) float64 { return m.Width(s, size) }

	var lines []Line
	var builder strings.Builder
	current := 0.0

	emit := func() {
		text := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		lines = append(lines, Line{Text: text, Width: measure(text)})
		builder.Reset()
		current = 0
	}
	appendToken := func(token string) {
		builder.WriteString(token)
		current += measure(token)
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			emit()
			continue
		}
		space := isSpaceToken(token)
		if space && builder.Len() == 0 {
			continue
		}
		tokenWidth := measure(token)
		if current > 0 && current+tokenWidth > limit {
			emit()
			if space {
				continue
			}
		}
		if tokenWidth <= limit {
			appendToken(token)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, measure) {
			chunkWidth := measure(chunk)
			if current > 0 && current+chunkWidth > limit {
				emit()
			}
			appendToken(chunk)
		}
	}
	emit()
	return lines
}

// tokenize 将文本切分为空白串、非空白串与 "\n"。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func isSpaceToken(token string) bool {
	return strings.TrimFunc(token, unicode.IsSpace) == ""
}

// splitByWidth 将超宽的词按字符拆成不超过 limit 的片段，单个字符超宽时独占一段。
func splitByWidth(token string, limit float64, measure func(string) float64) []string {
	var parts []string
	var chunk []rune
	for _, r := range token {
		chunk = append(chunk, r)
		if len(chunk) > 1 && measure(string(chunk)) > limit {
			parts = append(parts, string(chunk[:len(chunk)-1]))
			chunk = chunk[len(chunk)-1:]
		}
	}
	if len(chunk) > 0 {
		parts = append(parts, string(chunk))
	}
	return parts
}
