package template

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestLengthPt 覆盖常见单位到 pt 的换算，以及百分比相对参照尺寸的计算。
func TestLengthPt(t *testing.T) {
	cases := []struct {
		in   string
		ref  float64
		want float64
	}{
		{"48pt", 0, 48},
		{"1in", 0, 72},
		{"2.54cm", 0, 72},
		{"10mm", 0, 10 * MmToPt},
		{"5%", 960, 48},
		{"100%", 540, 540},
		{"36", 0, 36},
	}
	for _, c := range cases {
		l, ok := ParseLength(c.in)
		if !ok {
			t.Fatalf("%s 解析失败", c.in)
		}
		if got := l.Pt(c.ref); math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("%s 换算为 pt 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
}

func TestParseLengthRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "pt", "abc", "12px"} {
		if _, ok := ParseLength(in); ok {
			t.Fatalf("%q 不应解析成功", in)
		}
	}
}
