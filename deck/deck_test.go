package deck

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/diag"
	"github.com/ByLCY/slidepress/errs"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/template"
)

var update = flag.Bool("update", false, "rewrite golden files")

func builtin(t *testing.T) *template.Template {
	t.Helper()
	tpl, err := template.Builtin()
	require.NoError(t, err)
	return tpl
}

type stubImages map[string]image.Image

func (s stubImages) Load(ctx context.Context, src string) (image.Image, error) {
	img, ok := s[src]
	if !ok {
		return nil, errors.New("no such image")
	}
	return img, nil
}

func TestConvertListScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Segment.MaxListItemsPerSlide = 2

	deck, diags, err := Convert(context.Background(), []byte("# Title\n\n- a\n- b\n- c"), builtin(t), cfg)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, deck.Slides, 2)

	assert.Equal(t, "Title", deck.Slides[0].Title)
	assert.Equal(t, "Title (cont.)", deck.Slides[1].Title)
	assert.Equal(t, 960.0, deck.Width)
	assert.Equal(t, "Title", deck.Meta.Title)
	assert.Equal(t, "Title    2 / 2", deck.Slides[1].Footer.Content)
	for _, s := range deck.Slides {
		assert.Equal(t, layout.LayoutTitleContent, s.Layout)
		assert.GreaterOrEqual(t, s.FontSize, 12.0)
		assert.LessOrEqual(t, s.FontSize, 44.0)
	}
}

func TestConvertRecordsTemplate(t *testing.T) {
	deck, _, err := Convert(context.Background(), []byte("# Title\n\nbody"), builtin(t), config.Default())
	require.NoError(t, err)
	assert.Equal(t, "Standard", deck.Meta.Template)
	assert.Equal(t, "v1", deck.Meta.TemplateVersion)
	assert.Equal(t, Creator, deck.Meta.Creator)
}

func TestConvertDeterministic(t *testing.T) {
	md, err := os.ReadFile(filepath.Join("testdata", "describe.md"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Workers = 8

	var outputs []string
	for range 3 {
		deck, _, err := Convert(context.Background(), md, builtin(t), cfg)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, layout.EncodeDebugJSON(deck, &buf))
		outputs = append(outputs, buf.String())
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestDescribeGolden(t *testing.T) {
	md, err := os.ReadFile(filepath.Join("testdata", "describe.md"))
	require.NoError(t, err)

	summaries, diags, err := Describe(context.Background(), md, builtin(t), config.Default())
	require.NoError(t, err)
	assert.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, summaries))

	golden := filepath.Join("testdata", "describe.golden.yaml")
	if _, err := os.Stat(golden); *update || os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(golden, buf.Bytes(), 0o644))
		t.Logf("wrote %s", golden)
	}
	want, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t, string(want), buf.String())

	// 结构断言不依赖 golden 内容。
	require.Len(t, summaries, 5)
	assert.Equal(t, layout.RoleCover, summaries[0].Role)
	assert.Equal(t, "Overview", summaries[1].Title)
	assert.Equal(t, layout.LayoutTitleContent, summaries[2].Layout)
	assert.Equal(t, 8, summaries[2].Blocks.ListItems)
	assert.Equal(t, layout.LayoutTable, summaries[3].Layout)
	assert.Equal(t, 3, summaries[3].Blocks.TableRows)
	assert.Equal(t, layout.LayoutTitleContent, summaries[4].Layout)

	// 封面受副标题上限 24pt 约束，其余页受标题上限 36pt 约束。
	assert.Equal(t, 24, summaries[0].FontSize)
	for _, s := range summaries[1:] {
		assert.Equal(t, 36, s.FontSize, s.Title)
	}
}

func TestDescribeMatchesConvert(t *testing.T) {
	md, err := os.ReadFile(filepath.Join("testdata", "describe.md"))
	require.NoError(t, err)
	tpl := builtin(t)

	summaries, _, err := Describe(context.Background(), md, tpl, config.Default())
	require.NoError(t, err)
	deck, _, err := Convert(context.Background(), md, tpl, config.Default())
	require.NoError(t, err)

	require.Len(t, deck.Slides, len(summaries))
	for i, s := range summaries {
		assert.Equal(t, s.Layout, deck.Slides[i].Layout)
		assert.Equal(t, float64(s.FontSize), deck.Slides[i].FontSize)
	}
}

func TestConvertOverflowDiagnostic(t *testing.T) {
	md := "# Wall\n\n" + strings.Repeat("far too many words for one slide ", 400)
	deck, diags, err := Convert(context.Background(), []byte(md), builtin(t), config.Default())
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, 12.0, deck.Slides[0].FontSize)
	assert.Equal(t, 1, diags.Count(diag.FontOverflow))
	assert.Equal(t, 1, diags[0].Slide)
}

func TestConvertImages(t *testing.T) {
	images := stubImages{"ok.png": image.NewRGBA(image.Rect(0, 0, 20, 10))}
	md := "# Pics\n\n![fine](ok.png)\n\n# Broken\n\n![gone](gone.png)\n"

	deck, diags, err := Convert(context.Background(), []byte(md), builtin(t), config.Default(), WithImages(images))
	require.NoError(t, err)
	require.Len(t, deck.Slides, 2)
	assert.Len(t, deck.Slides[0].Images, 1)
	assert.Contains(t, deck.Assets, "ok.png")
	assert.Empty(t, deck.Slides[1].Images)
	require.Equal(t, 1, diags.Count(diag.ImageLoad))
	assert.Equal(t, 2, diags[0].Slide)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	deck, _, err := Convert(ctx, []byte("# A\n\ntext\n"), builtin(t), config.Default())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, deck)
}

func TestConvertInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fit.MinFontPt = 50
	_, _, err := Convert(context.Background(), []byte("# A"), builtin(t), cfg)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeConfig))
}

func TestFontMeasure(t *testing.T) {
	cfg := config.Default()
	cfg.Fit.Measure = "font"
	deck, _, err := Convert(context.Background(), []byte("# Font\n\n- measured with real glyph widths\n"), builtin(t), cfg)
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)
	assert.Greater(t, deck.Slides[0].FontSize, 12.0)
}
