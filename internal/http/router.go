package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mfreitas/lucre/internal/http/report"
	"github.com/mfreitas/lucre/internal/http/snapshot"
)

func New(
	reportsV1 *report.Handler,
	snapshotsV1 *snapshot.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			reportsV1.Routes(r)
		})

		r.Route("/snapshots", func(r chi.Router) {
			snapshotsV1.Routes(r)
		})
	})

	return router
}
