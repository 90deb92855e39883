package document

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/ByLCY/slidepress/diag"
)

// table 将 GFM 表格展开为 TableRow 块，列数以表头为准。
// goldmark 已按表头补齐或截断数据行，诊断所需的原始单元格数从行的源码中统计。
func (p *parser) table(t *extast.Table) {
	width := 0
	p.tables++
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		header := row.Kind() == extast.KindTableHeader
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(p.inline(c)))
		}
		if header {
			width = len(cells)
		} else if line, raw, ok := p.rowSource(row); ok && raw != width {
			p.doc.Diagnostics.AtLine(diag.TableShape, line,
				"table row has %d cells, header has %d", raw, width)
		}
		p.add(TableRow{Cells: normalizeCells(cells, width), Header: header, Table: p.tables})
	}
}

// rowSource 返回表格行所在的行号及该行源码中的单元格数。
func (p *parser) rowSource(row ast.Node) (int, int, bool) {
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Lines().Len() == 0 {
			continue
		}
		line := p.lineAt(c.Lines().At(0).Start)
		start := p.bols[line-1]
		end := len(p.src)
		if line < len(p.bols) {
			end = p.bols[line]
		}
		return line, countCells(string(p.src[start:end])), true
	}
	return 0, 0, false
}

// countCells 按未转义的 | 统计一行中的单元格数，首尾的 | 不计。
func countCells(line string) int {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}
	n := 1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '|':
			n++
		}
	}
	return n
}

// normalizeCells 以空单元格补齐或截断到 n 列。
func normalizeCells(cells []string, n int) []string {
	out := make([]string, n)
	copy(out, cells)
	return out
}
