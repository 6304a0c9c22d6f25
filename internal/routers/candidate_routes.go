package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
)

func CandidateRoutes(router *chi.Mux, candidateHandler *handlers.CandidateHandler) {
	router.Route("/api/v1/candidate", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.CandidateAccessRequest]()).Post("/access", candidateHandler.AccessHandler)
		r.With(middleware.ValidateRequest[*models.MagicLinkOpenRequest]()).Post("/magic-link/open", candidateHandler.MagicLinkOpenHandler)
	})
}
