package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"property-quote/internal/common/logger"
)

func NewRouter(h *Handler, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Get("/questions", h.Questions)

			r.Put("/answers/{questionId}", h.PutAnswer)
			r.Delete("/answers/{questionId}", h.DeleteAnswer)

			r.Post("/next", h.Next)
			r.Post("/back", h.Back)

			r.Get("/premium", h.Premium)
			r.Post("/recalculate", h.Recalculate)

			r.Post("/submit", h.Submit)
			r.Post("/fund", h.Fund)
		})
		r.Post("/drafts/{draftId}/resume", h.ResumeDraft)

		r.Route("/reference", func(r chi.Router) {
			r.Get("/states", h.States)
			r.Get("/states/{state}/lgas", h.LGAs)
			r.Get("/property-types", h.PropertyTypes)
			r.Get("/tiers", h.Tiers)
			r.Post("/refresh", h.RefreshReference)
		})
	})

	return r
}
