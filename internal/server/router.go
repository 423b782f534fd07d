package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bankborjam/sebastian/internal/api/handlers"
	"github.com/bankborjam/sebastian/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/stats", cfg.HealthHandler.Stats)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", cfg.ChatHandler.Ask)
	})

	return r
}
