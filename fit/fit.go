package fit

// Item 为一段待排版文本；Indent（pt）从可用宽度中扣除。
type Item struct {
	Text   string
	Indent float64
}

// Box 为占位符的可用区域（pt）。
type Box struct {
	Width  float64
	Height float64
}

// Params 为字号搜索参数。
type Params struct {
	Min         int
	Max         int
	LineSpacing float64
	Measurer    Measurer
}

// Capped 返回上限不超过 maxSize 的参数副本；maxSize<=0 时不变，上限不会低于 Min。
func (p Params) Capped(maxSize float64) Params {
	if maxSize <= 0 {
		return p
	}
	p.Max = max(min(p.Max, int(maxSize)), p.Min)
	return p
}

// Largest 二分查找 [lo, hi] 内使 fits 成立的最大整数，要求 fits 单调（小字号成立则更小字号也成立）。
// 连 lo 都不成立时返回 (lo, false)。
func Largest(lo, hi int, fits func(int) bool) (int, bool) {
	if hi < lo || !fits(lo) {
		return lo, false
	}
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, true
}

// Lines 返回全部条目在 width 与字号 size 下折行后的总行数。
func (p Params) Lines(items []Item, width float64, size int) int {
	n := 0
	for _, it := range items {
		n += len(Wrap(it.Text, max(width-it.Indent, 1), float64(size), p.Measurer))
	}
	return n
}

// TextFits 判断 L(s) × s × lineSpacing ≤ height。
func (p Params) TextFits(items []Item, box Box, size int) bool {
	lines := p.Lines(items, box.Width, size)
	return float64(lines)*float64(size)*p.LineSpacing <= box.Height
}

// Text 返回文本条目在 box 内可用的最大字号；无法放下时返回 (Min, false)。
func (p Params) Text(items []Item, box Box) (int, bool) {
	return Largest(p.Min, p.Max, func(s int) bool { return p.TextFits(items, box, s) })
}

// TableFits 判断 Σ 行（单元格最大行数 × s × lineSpacing + 2 × padding）≤ height，列宽均分。
func (p Params) TableFits(rows [][]string, box Box, padding float64, size int) bool {
	if len(rows) == 0 {
		return true
	}
	cols := len(rows[0])
	if cols == 0 {
		return true
	}
	cellWidth := max(box.Width/float64(cols)-2*padding, 1)
	total := 0.0
	for _, row := range rows {
		maxLines := 1
		for _, cell := range row {
			maxLines = max(maxLines, len(Wrap(cell, cellWidth, float64(size), p.Measurer)))
		}
		total += float64(maxLines)*float64(size)*p.LineSpacing + 2*padding
		if total > box.Height {
			return false
		}
	}
	return true
}

// Table 返回表格在 box 内可用的最大字号。
func (p Params) Table(rows [][]string, box Box, padding float64) (int, bool) {
	return Largest(p.Min, p.Max, func(s int) bool { return p.TableFits(rows, box, padding, s) })
}
