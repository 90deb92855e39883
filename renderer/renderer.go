// Package renderer 定义幻灯片模型的输出格式接口。
package renderer

import "github.com/ByLCY/slidepress/layout"

// Renderer 将幻灯片模型输出为最终文件，例如 PDF 演示稿或 DOCX 讲义。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(deck *layout.Deck) ([]byte, error)
	ContentType() string
	// Extension 返回带点的文件扩展名，例如 ".pdf"。
	Extension() string
}
