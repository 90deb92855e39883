package binding

import "testing"

func TestInterpolate(t *testing.T) {
	vars := Vars{}.Set("deck.title", "Roadmap").Set("slide.number", 3).Set("slide.total", 12)
	got := Interpolate("${deck.title}  ${slide.number} / ${slide.total}", vars)
	if got != "Roadmap  3 / 12" {
		t.Fatalf("插值结果错误: %q", got)
	}
}

func TestInterpolateUnknownAndFallback(t *testing.T) {
	vars := Vars{"deck.title": ""}
	if got := Interpolate("${user.name}", vars); got != "${user.name}" {
		t.Fatalf("未知变量应保持原样，实际 %q", got)
	}
	if got := Interpolate("${deck.title|Untitled}", vars); got != "Untitled" {
		t.Fatalf("空值应使用默认值，实际 %q", got)
	}
	if got := Interpolate("${deck.title}", vars); got != "" {
		t.Fatalf("无默认值时空值应原样替换，实际 %q", got)
	}
	if got := Interpolate("${ }", vars); got != "${ }" {
		t.Fatalf("空路径应保持原样，实际 %q", got)
	}
}

func TestNames(t *testing.T) {
	names := Names("${a.b} and ${c|x} and ${a.b}")
	if len(names) != 2 || names[0] != "a.b" || names[1] != "c" {
		t.Fatalf("变量列表错误: %v", names)
	}
}
