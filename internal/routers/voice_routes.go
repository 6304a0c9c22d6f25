package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
)

func VoiceRoutes(router *chi.Mux, voiceHandler *handlers.VoiceHandler) {
	router.Route("/api/v1/voice", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.VoiceSessionRequest]()).Post("/session", voiceHandler.SessionHandler)
	})
}
