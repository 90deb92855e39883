// Package mcp 以 MCP 工具的形式暴露转换能力。
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/service"
)

var convertToolDef = mcp.NewTool("md_to_deck",
	mcp.WithDescription("Convert Markdown into a PDF slide deck. Returns the stored deck id and download URL."),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source of the deck")),
	mcp.WithString("filename", mcp.Description("Download file name; .pdf is appended when missing")),
)

var describeToolDef = mcp.NewTool("describe_deck",
	mcp.WithDescription("Paginate Markdown and report each slide's layout, block counts and font size without rendering."),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source of the deck")),
)

var previewToolDef = mcp.NewTool("preview_slide",
	mcp.WithDescription("Render one slide of the deck as a PNG image."),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source of the deck")),
	mcp.WithNumber("slide", mcp.Description("1-based slide number, defaults to 1")),
	mcp.WithNumber("dpi", mcp.Description("Raster resolution, defaults to 96")),
)

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"md_to_deck": {
		def:     convertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConvert },
	},
	"describe_deck": {
		def:     describeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDescribe },
	},
	"preview_slide": {
		def:     previewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePreview },
	},
}

// NewServer 创建注册了全部工具的 MCP 服务。
func NewServer(svc *service.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"slidepress",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	h := NewHandlers(svc, log)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run 按 mcp.transport 启动服务：stdio 阻塞读写标准输入输出，sse 监听 mcp.addr。
func Run(ctx context.Context, svc *service.Service, cfg config.MCPConfig, version string, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := NewServer(svc, version, log)
	switch strings.ToLower(cfg.Transport) {
	case "", "stdio":
		return server.ServeStdio(s)
	case "sse":
		sse := server.NewSSEServer(s)
		errCh := make(chan error, 1)
		go func() { errCh <- sse.Start(cfg.Addr) }()
		log.Info("mcp sse server listening", "addr", cfg.Addr)
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return sse.Shutdown(context.Background())
		}
	default:
		return fmt.Errorf("mcp: 不支持的传输方式 %q", cfg.Transport)
	}
}
