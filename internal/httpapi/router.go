// Package httpapi exposes the reports proxy and the favorites service over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler())
	r.Use(answerOptions)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/reports", h.Reports)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.ListFavorites)
			r.Post("/", h.CreateFavorite)
			r.Delete("/{id}", h.DeleteFavorite)
		})
	})

	return r
}
