package layout

import (
	"context"
	"image"
	"log/slog"

	"github.com/ByLCY/slidepress/fit"
)

// DefaultTablePadding 为表格单元格的上下左右内边距（pt）。
const DefaultTablePadding = 4

// Options 配置幻灯片构建所需的依赖。
type Options struct {
	Fit          fit.Params
	Images       ImageLoader
	TablePadding float64
	Logger       *slog.Logger
}

// ImageLoader 负责加载并解码图片，实现需要遵守 ctx 的超时与取消。
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}
