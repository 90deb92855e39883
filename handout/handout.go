// Package handout 将幻灯片模型导出为 DOCX 讲义：每页一个标题，随后是正文、表格与图片。
package handout

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
)

// titleHalfPoints 为讲义大标题字号（半磅）。
const titleHalfPoints = "48"

// Writer 实现 renderer.Renderer，输出 DOCX。
type Writer struct{}

var _ renderer.Renderer = Writer{}

func (Writer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (Writer) Extension() string { return ".docx" }

// Render 生成讲义。图片以 PNG 重新编码后内嵌。
func (Writer) Render(deck *layout.Deck) ([]byte, error) {
	if deck == nil || len(deck.Slides) == 0 {
		return nil, fmt.Errorf("handout: 缺少幻灯片")
	}
	w := docx.New().WithDefaultTheme()

	if deck.Meta.Title != "" {
		w.AddParagraph().Justification("center").AddText(deck.Meta.Title).Size(titleHalfPoints).Bold()
		if deck.Meta.Subtitle != "" {
			w.AddParagraph().Justification("center").AddText(deck.Meta.Subtitle)
		}
	}

	for i, slide := range deck.Slides {
		if i > 0 || deck.Meta.Title != "" {
			w.AddParagraph().AddPageBreaks()
		}
		heading := slide.Title
		if heading == "" {
			heading = "Slide " + strconv.Itoa(slide.Number)
		}
		w.AddParagraph().Style("Heading1").AddText(heading)

		for _, tb := range slide.Texts {
			if tb.Content == slide.Title {
				continue
			}
			w.AddParagraph().AddText(tb.Content)
		}
		for _, table := range slide.Tables {
			addTable(w, table)
		}
		for _, box := range slide.Images {
			img, ok := deck.Assets[box.Src]
			if !ok {
				continue
			}
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return nil, fmt.Errorf("handout: 编码图片 %s 失败: %w", box.Src, err)
			}
			if _, err := w.AddParagraph().Justification("center").AddInlineDrawing(buf.Bytes()); err != nil {
				return nil, fmt.Errorf("handout: 插入图片 %s 失败: %w", box.Src, err)
			}
		}
	}

	var out bytes.Buffer
	if _, err := w.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("handout: 写入 DOCX 失败: %w", err)
	}
	return out.Bytes(), nil
}

func addTable(w *docx.Docx, table layout.TableBox) {
	if len(table.Rows) == 0 {
		return
	}
	cols := len(table.ColumnWidths)
	t := w.AddTable(len(table.Rows), cols, 0, nil)
	for ri, row := range table.Rows {
		for ci, cell := range row.Cells {
			if ci >= cols {
				break
			}
			run := t.TableRows[ri].TableCells[ci].AddParagraph().AddText(cell.Text.Content)
			if row.IsHeader {
				run.Bold()
			}
		}
	}
}
