package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ByLCY/slidepress/errs"
)

// convertRequest 为 JSON 请求体；非 JSON 请求把整个请求体当作 Markdown。
type convertRequest struct {
	Markdown string `json:"markdown"`
	Filename string `json:"filename"`
}

// readRequest 读取请求体，超出 server.max_body_bytes 返回 TOO_LARGE。
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (convertRequest, error) {
	limit := s.cfg.MaxBodyBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return convertRequest{}, errs.NewTooLarge(limit)
		}
		return convertRequest{}, errs.NewInvalidRequest("read body: " + err.Error())
	}

	req := convertRequest{Filename: r.URL.Query().Get("filename")}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.Unmarshal(data, &req); err != nil {
			return convertRequest{}, errs.NewInvalidRequest("invalid JSON body: " + err.Error())
		}
		return req, nil
	}
	req.Markdown = string(data)
	return req, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Convert(r.Context(), []byte(req.Markdown), req.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sums, diags, err := s.svc.Describe(r.Context(), []byte(req.Markdown))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slides": sums, "diagnostics": diags})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	slide := 1
	if v := r.URL.Query().Get("slide"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "slide must be an integer", http.StatusBadRequest)
			return
		}
		slide = n
	}
	dpi := 96.0
	if v := r.URL.Query().Get("dpi"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 600 {
			jsonError(w, "dpi must be in (0, 600]", http.StatusBadRequest)
			return
		}
		dpi = f
	}
	req, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	png, err := s.svc.Preview(r.Context(), []byte(req.Markdown), slide, dpi)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	obj, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name}))
	w.Header().Set("Content-Length", strconv.FormatInt(int64(len(obj.Data)), 10))
	w.Write(obj.Data)
}
