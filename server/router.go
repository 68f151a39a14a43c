package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds question request bodies.
const maxBodyBytes int64 = 64 * 1024

// RouterConfig holds the collaborators of the HTTP API.
type RouterConfig struct {
	Answerer        Answerer
	FallbackMessage string
	Logger          *slog.Logger
}

// NewRouter builds the HTTP API.
//
//	GET  /health
//	POST /ask   {"question": "...", "threshold": 0.35}
//	POST /rank  {"question": "...", "threshold": 0.35}
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")
	h := NewHandler(cfg.Answerer, cfg.FallbackMessage, logger)

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimw.Recoverer)
	r.Use(AccessLog(logger))
	r.Use(MaxBodyBytes(maxBodyBytes))

	r.Get("/health", h.Health)
	r.Post("/ask", h.Ask)
	r.Post("/rank", h.Rank)

	return r
}
