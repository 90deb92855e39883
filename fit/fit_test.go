package fit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params() Params {
	return Params{Min: 12, Max: 44, LineSpacing: 1.2, Measurer: Estimator{CharWidthFactor: 0.5}}
}

func TestCharsCountsWideRunesTwice(t *testing.T) {
	assert.Equal(t, 5, Chars("hello"))
	assert.Equal(t, 4, Chars("中文"))
	assert.Equal(t, 6, Chars("ab中文"))
	assert.Equal(t, 2, Chars("Ａ"))
	assert.InDelta(t, 4*0.5*10, Estimator{CharWidthFactor: 0.5}.Width("中文", 10), 1e-9)
}

func TestWrapBreaksAtSpaces(t *testing.T) {
	m := Estimator{CharWidthFactor: 1}
	lines := Wrap("aaa bbb ccc", 7, 1, m)
	require.Len(t, lines, 2)
	assert.Equal(t, "aaa bbb", lines[0].Text)
	assert.Equal(t, "ccc", lines[1].Text)
	assert.Equal(t, 7.0, lines[0].Width)
}

func TestWrapHonoursHardBreaks(t *testing.T) {
	m := Estimator{CharWidthFactor: 1}
	lines := Wrap("a\nb\n\nc", 100, 1, m)
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"a", "b", "", "c"}, texts)
}

func TestWrapSplitsLongTokens(t *testing.T) {
	m := Estimator{CharWidthFactor: 1}
	lines := Wrap("abcdefghij", 4, 1, m)
	require.Len(t, lines, 3)
	assert.Equal(t, "abcd", lines[0].Text)
	assert.Equal(t, "efgh", lines[1].Text)
	assert.Equal(t, "ij", lines[2].Text)

	cjk := Wrap("一二三四五", 4, 1, m)
	require.Len(t, cjk, 3)
	assert.Equal(t, "一二", cjk[0].Text)
}

func TestWrapDropsLeadingSpaceAfterBreak(t *testing.T) {
	m := Estimator{CharWidthFactor: 1}
	lines := Wrap("abc   def", 4, 1, m)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", lines[0].Text)
	assert.Equal(t, "def", lines[1].Text)
}

func TestLargest(t *testing.T) {
	s, ok := Largest(12, 44, func(n int) bool { return n <= 30 })
	assert.True(t, ok)
	assert.Equal(t, 30, s)

	s, ok = Largest(12, 44, func(int) bool { return true })
	assert.True(t, ok)
	assert.Equal(t, 44, s)

	s, ok = Largest(12, 44, func(int) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, 12, s)

	calls := 0
	Largest(1, 1<<20, func(n int) bool { calls++; return n < 1000 })
	assert.LessOrEqual(t, calls, 22)
}

func TestTextPredicateIsMonotonic(t *testing.T) {
	p := params()
	items := []Item{
		{Text: strings.Repeat("lorem ipsum dolor sit amet ", 12)},
		{Text: "短句与 mixed content 混排", Indent: 24},
	}
	box := Box{Width: 400, Height: 300}
	prev := true
	for s := p.Min; s <= p.Max; s++ {
		fits := p.TextFits(items, box, s)
		if fits {
			assert.True(t, prev, "fits at %d but not at %d", s, s-1)
		}
		prev = fits
	}
	best, ok := p.Text(items, box)
	require.True(t, ok)
	assert.True(t, p.TextFits(items, box, best))
	if best < p.Max {
		assert.False(t, p.TextFits(items, box, best+1))
	}
}

func TestTextShortContentReachesMax(t *testing.T) {
	p := params()
	s, ok := p.Text([]Item{{Text: "Hi"}}, Box{Width: 800, Height: 400})
	assert.True(t, ok)
	assert.Equal(t, 44, s)
}

func TestTextOverflowClampsToMin(t *testing.T) {
	p := params()
	items := []Item{{Text: strings.Repeat("overflowing words ", 200)}}
	s, ok := p.Text(items, Box{Width: 200, Height: 40})
	assert.False(t, ok)
	assert.Equal(t, 12, s)
}

func TestIndentReducesWidth(t *testing.T) {
	p := params()
	text := strings.Repeat("x", 20)
	assert.Equal(t, 1, p.Lines([]Item{{Text: text}}, 120, 12))
	assert.Equal(t, 2, p.Lines([]Item{{Text: text, Indent: 60}}, 120, 12))
}

func TestCapped(t *testing.T) {
	p := params()
	assert.Equal(t, 36, p.Capped(36).Max)
	assert.Equal(t, 44, p.Capped(0).Max)
	assert.Equal(t, 44, p.Capped(60).Max)
	assert.Equal(t, 12, p.Capped(8).Max)
}

func TestTablePredicate(t *testing.T) {
	p := params()
	rows := [][]string{{"name", "value"}, {"a", "1"}, {"b", "2"}}
	box := Box{Width: 400, Height: 120}
	// 3 行 × (s × 1.2 + 2 × 4) ≤ 120 ⇒ s ≤ 26.67
	s, ok := p.Table(rows, box, 4)
	require.True(t, ok)
	assert.Equal(t, 26, s)
	assert.True(t, p.TableFits(rows, box, 4, 26))
	assert.False(t, p.TableFits(rows, box, 4, 27))
	assert.True(t, p.TableFits(nil, box, 4, 44))
}
