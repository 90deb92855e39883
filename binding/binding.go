// Package binding 处理模板文本中的 ${path} 插值，例如页脚中的 ${slide.number}。
package binding

import (
	"fmt"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 为插值变量，键为点分路径（deck.title、slide.number 等）。
type Vars map[string]string

// Set 写入一个变量并返回自身，便于链式构造。
func (v Vars) Set(path string, value any) Vars {
	v[path] = fmt.Sprint(value)
	return v
}

// Interpolate 将文本中的 ${path} 替换为变量值；${path|默认值} 在变量缺失或为空时使用默认值。
// 未知且没有默认值的占位符保持原样。
func Interpolate(text string, vars Vars) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path, fallback, hasFallback := parseExpr(match)
		if path == "" {
			return match
		}
		if val, ok := vars[path]; ok && (val != "" || !hasFallback) {
			return val
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Names 返回文本中引用的全部变量路径，按出现顺序去重。
func Names(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllString(text, -1) {
		path, _, _ := parseExpr(m)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

func parseExpr(match string) (path, fallback string, hasFallback bool) {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return "", "", false
	}
	expr := groups[1]
	if i := strings.IndexByte(expr, '|'); i >= 0 {
		return strings.TrimSpace(expr[:i]), expr[i+1:], true
	}
	return strings.TrimSpace(expr), "", false
}
