package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/service"
	"github.com/ByLCY/slidepress/store"
	"github.com/ByLCY/slidepress/template"
)

const sampleMD = "# Plan\n\n- design\n- build\n- ship\n\n# Done\n\nThat is all.\n"

func newHandlers(t *testing.T) (*Handlers, store.Store) {
	t.Helper()
	tpl, err := template.Builtin()
	require.NoError(t, err)
	engine, err := deck.New(tpl, config.Default())
	require.NoError(t, err)
	st := store.NewMemory()
	svc := service.New(engine, st, canvasrenderer.NewRenderer(""), "http://decks.local", nil)
	return NewHandlers(svc, nil), st
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content should be text")
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestConvertTool(t *testing.T) {
	h, st := newHandlers(t)
	res, err := h.HandleConvert(context.Background(), makeRequest(map[string]any{
		"markdown": sampleMD,
		"filename": "plan",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := resultJSON(t, res)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "plan.pdf", out["filename"])
	assert.Equal(t, "http://decks.local/api/decks/"+id, out["url"])
	assert.EqualValues(t, 2, out["slides"])

	_, err = st.Get(context.Background(), id)
	require.NoError(t, err)
}

func TestConvertToolEmptyMarkdown(t *testing.T) {
	h, _ := newHandlers(t)
	res, err := h.HandleConvert(context.Background(), makeRequest(map[string]any{"markdown": ""}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	e := resultJSON(t, res)["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", e["code"])
	assert.EqualValues(t, 400, e["status"])
}

func TestConvertToolBadArguments(t *testing.T) {
	h, _ := newHandlers(t)
	res, err := h.HandleConvert(context.Background(), makeRequest(map[string]any{"markdown": 42}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestConvertToolCanceled(t *testing.T) {
	h, _ := newHandlers(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := h.HandleConvert(ctx, makeRequest(map[string]any{"markdown": sampleMD}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Equal(t, "CANCELED", resultJSON(t, res)["error"].(map[string]any)["code"])
}

func TestDescribeTool(t *testing.T) {
	h, _ := newHandlers(t)
	res, err := h.HandleDescribe(context.Background(), makeRequest(map[string]any{"markdown": sampleMD}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	slides := resultJSON(t, res)["slides"].([]any)
	require.Len(t, slides, 2)
	assert.Equal(t, "title+content", slides[0].(map[string]any)["layout"])
}

func TestPreviewTool(t *testing.T) {
	h, _ := newHandlers(t)
	res, err := h.HandlePreview(context.Background(), makeRequest(map[string]any{
		"markdown": sampleMD,
		"slide":    2,
		"dpi":      48,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var img mcp.ImageContent
	for _, c := range res.Content {
		if ic, ok := c.(mcp.ImageContent); ok {
			img = ic
		}
	}
	assert.Equal(t, "image/png", img.MIMEType)
	data, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))

	res, err = h.HandlePreview(context.Background(), makeRequest(map[string]any{"markdown": sampleMD, "slide": 7}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolRegistryNames(t *testing.T) {
	for name, entry := range toolRegistry {
		assert.Equal(t, name, entry.def.Name)
	}
	h, _ := newHandlers(t)
	assert.NotNil(t, NewServer(h.svc, "test", nil))
}
