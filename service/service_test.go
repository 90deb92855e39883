package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
	"github.com/ByLCY/slidepress/errs"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/store"
	"github.com/ByLCY/slidepress/template"
)

const sampleMD = "# Plan\n\n- design\n- build\n- ship\n\n# Done\n\nThat is all.\n"

func newService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	tpl, err := template.Builtin()
	require.NoError(t, err)
	engine, err := deck.New(tpl, config.Default())
	require.NoError(t, err)
	st := store.NewMemory()
	return New(engine, st, canvasrenderer.NewRenderer(""), "http://localhost:8099/", nil), st
}

func TestConvertStoresPDF(t *testing.T) {
	svc, st := newService(t)
	rec, err := svc.Convert(context.Background(), []byte(sampleMD), "")
	require.NoError(t, err)

	assert.Equal(t, "presentation_"+rec.ID+".pdf", rec.Filename)
	assert.Equal(t, "http://localhost:8099/api/decks/"+rec.ID, rec.URL)
	assert.Equal(t, 2, rec.Slides)
	assert.Len(t, rec.ID, 26)

	obj, err := st.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(obj.Data, []byte("%PDF")))
	sum := blake2b.Sum256(obj.Data)
	assert.Equal(t, hex.EncodeToString(sum[:]), rec.Digest)
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestConvertEmpty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Convert(context.Background(), []byte("  \n"), "x")
	assert.True(t, errs.Is(err, errs.CodeInvalidRequest))
}

func TestConvertCanceled(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Convert(ctx, []byte(sampleMD), "")
	assert.True(t, errs.Is(err, errs.CodeCanceled))
	assert.Equal(t, 499, errs.StatusOf(err))
}

func TestNewIDStrictlyIncreasing(t *testing.T) {
	prev := NewID()
	for range 1000 {
		id := NewID()
		require.Less(t, prev, id)
		prev = id
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"":                  "presentation_ID.pdf",
		"report":            "report.pdf",
		"report.pptx":       "report.pdf",
		"deck.PDF":          "deck.PDF",
		"../../etc/passwd":  "passwd.pdf",
		"dir\\sub\\win.pdf": "win.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, Filename(in, "ID"), in)
	}
}

func TestDescribeAndPreview(t *testing.T) {
	svc, _ := newService(t)
	sums, _, err := svc.Describe(context.Background(), []byte(sampleMD))
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "Plan", sums[0].Title)

	data, err := svc.Preview(context.Background(), []byte(sampleMD), 2, 48)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = svc.Preview(context.Background(), []byte(sampleMD), 3, 48)
	assert.True(t, errs.Is(err, errs.CodeInvalidRequest))
}

func TestGetMissing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), "NOPE")
	assert.True(t, errs.Is(err, errs.CodeNotFound))
	assert.True(t, strings.Contains(err.Error(), "NOPE"))
}
