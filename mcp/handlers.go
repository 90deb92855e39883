package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ByLCY/slidepress/errs"
	"github.com/ByLCY/slidepress/service"
)

// Handlers 持有工具处理所需的服务。
type Handlers struct {
	svc *service.Service
	log *slog.Logger
}

func NewHandlers(svc *service.Service, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handlers{svc: svc, log: log}
}

type ConvertRequest struct {
	Markdown string `json:"markdown"`
	Filename string `json:"filename,omitempty"`
}

type DescribeRequest struct {
	Markdown string `json:"markdown"`
}

type PreviewRequest struct {
	Markdown string  `json:"markdown"`
	Slide    int     `json:"slide,omitempty"`
	DPI      float64 `json:"dpi,omitempty"`
}

// HandleConvert 转换并存储，返回 id、文件名与下载地址。
func (h *Handlers) HandleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ConvertRequest](req)
	if err != nil {
		return errorResult(errs.NewInvalidRequest(err.Error())), nil
	}
	rec, err := h.svc.Convert(ctx, []byte(input.Markdown), input.Filename)
	if err != nil {
		h.log.Warn("md_to_deck failed", "error", err)
		return errorResult(err), nil
	}
	return successResult(rec)
}

func (h *Handlers) HandleDescribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DescribeRequest](req)
	if err != nil {
		return errorResult(errs.NewInvalidRequest(err.Error())), nil
	}
	if input.Markdown == "" {
		return errorResult(errs.NewInvalidRequest("markdown is required")), nil
	}
	sums, diags, err := h.svc.Describe(ctx, []byte(input.Markdown))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"slides": sums, "diagnostics": diags})
}

func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(errs.NewInvalidRequest(err.Error())), nil
	}
	if input.Slide == 0 {
		input.Slide = 1
	}
	if input.DPI == 0 {
		input.DPI = 96
	}
	png, err := h.svc.Preview(ctx, []byte(input.Markdown), input.Slide, input.DPI)
	if err != nil {
		return errorResult(err), nil
	}
	text := fmt.Sprintf("slide %d", input.Slide)
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(png), "image/png"), nil
}

// decode 将工具参数解码为具体结构。
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// errorResult 以 IsError 结果返回错误；内部错误不暴露细节。
func errorResult(err error) *mcp.CallToolResult {
	obj := map[string]any{
		"code":    errs.CodeInternal,
		"message": "an internal error occurred",
		"status":  500,
	}
	var e *errs.Error
	if errors.As(err, &e) && e.Code != errs.CodeInternal {
		obj = map[string]any{"code": e.Code, "message": e.Message, "status": e.Status}
		if e.Details != nil {
			obj["details"] = e.Details
		}
	}
	content, _ := json.Marshal(map[string]any{"error": obj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
