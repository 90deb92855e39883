package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
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

func newServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	tpl, err := template.Builtin()
	require.NoError(t, err)
	engine, err := deck.New(tpl, config.Default())
	require.NoError(t, err)
	svc := service.New(engine, store.NewMemory(), canvasrenderer.NewRenderer(""), "", nil)
	return NewServer(svc, nil, cfg)
}

func do(s *Server, method, target, contentType, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func convertJSON(md, filename string) string {
	b, _ := json.Marshal(map[string]string{"markdown": md, "filename": filename})
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newServer(t, config.ServerConfig{APIKey: "secret"})
	rec := do(s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConvertThenDownload(t *testing.T) {
	s := newServer(t, config.ServerConfig{})
	rec := do(s, http.MethodPost, "/api/convert", "application/json", convertJSON(sampleMD, "plan"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got service.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "plan.pdf", got.Filename)
	assert.Equal(t, "/api/decks/"+got.ID, got.URL)
	assert.Equal(t, 2, got.Slides)

	dl := do(s, http.MethodGet, got.URL, "", "")
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "application/pdf", dl.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=plan.pdf`, dl.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(dl.Body.Bytes(), []byte("%PDF")))
}

func TestConvertRawBody(t *testing.T) {
	s := newServer(t, config.ServerConfig{})
	rec := do(s, http.MethodPost, "/api/convert?filename=raw", "text/markdown", sampleMD)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "raw.pdf", decode(t, rec)["filename"])
}

func TestConvertErrors(t *testing.T) {
	s := newServer(t, config.ServerConfig{MaxBodyBytes: 64})

	rec := do(s, http.MethodPost, "/api/convert", "application/json", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, rec)["code"])

	rec = do(s, http.MethodPost, "/api/convert", "application/json", convertJSON("", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/convert", "text/markdown", strings.Repeat("x", 65))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "TOO_LARGE", decode(t, rec)["code"])
}

func TestDownloadMissing(t *testing.T) {
	s := newServer(t, config.ServerConfig{})
	rec := do(s, http.MethodGet, "/api/decks/01ARZ3NDEKTSV4RRFFQ69G5FAV", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}

func TestDescribe(t *testing.T) {
	s := newServer(t, config.ServerConfig{})
	rec := do(s, http.MethodPost, "/api/describe", "application/json", convertJSON(sampleMD, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	slides, ok := decode(t, rec)["slides"].([]any)
	require.True(t, ok)
	require.Len(t, slides, 2)
	first := slides[0].(map[string]any)
	assert.Equal(t, "Plan", first["title"])
}

func TestPreview(t *testing.T) {
	s := newServer(t, config.ServerConfig{})
	rec := do(s, http.MethodPost, "/api/preview?slide=2&dpi=48", "text/markdown", sampleMD)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(s, http.MethodPost, "/api/preview?slide=x", "text/markdown", sampleMD)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/preview?slide=9", "text/markdown", sampleMD)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKey(t *testing.T) {
	s := newServer(t, config.ServerConfig{APIKey: "secret"})

	rec := do(s, http.MethodPost, "/api/describe", "text/markdown", sampleMD)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodPost, "/api/describe", "text/markdown", sampleMD, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodPost, "/api/describe", "text/markdown", sampleMD, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func sign(t *testing.T, method jwt.SigningMethod, secret string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, jwt.MapClaims{"sub": "tester", "exp": exp.Unix()}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestJWT(t *testing.T) {
	s := newServer(t, config.ServerConfig{JWTSecret: "hmac-key"})
	hour := time.Now().Add(time.Hour)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, "hmac-key", hour), http.StatusOK},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, "other", hour), http.StatusUnauthorized},
		{"wrong method", sign(t, jwt.SigningMethodHS512, "hmac-key", hour), http.StatusUnauthorized},
		{"expired", sign(t, jwt.SigningMethodHS256, "hmac-key", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/describe", "text/markdown", sampleMD, "Authorization", "Bearer "+tc.token)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
