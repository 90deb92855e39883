// Package api 提供 HTTP 接口：转换、摘要、下载与单页预览。
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/errs"
	"github.com/ByLCY/slidepress/service"
)

// Server 是 slidepress 的 HTTP 服务。
type Server struct {
	router chi.Router
	svc    *service.Service
	log    *slog.Logger
	cfg    config.ServerConfig
}

func NewServer(svc *service.Service, log *slog.Logger, cfg config.ServerConfig) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{svc: svc, log: log, cfg: cfg}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.cfg.JWTSecret, s.log))

		r.Post("/api/convert", s.handleConvert)
		r.Post("/api/describe", s.handleDescribe)
		r.Post("/api/preview", s.handlePreview)
		r.Get("/api/decks/{id}", s.handleDownload)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError 按错误码映射状态码，并附带 code 字段。
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.StatusOf(err)
	body := map[string]any{"error": err.Error()}
	var e *errs.Error
	if errors.As(err, &e) {
		body["code"] = e.Code
		body["error"] = e.Message
		if len(e.Details) > 0 {
			body["details"] = e.Details
		}
	}
	if status >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}
