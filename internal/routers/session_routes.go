package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, liveHandler *handlers.LiveHandler) {
	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.CreateSessionRequest]()).Post("/", sessionHandler.CreateHandler)
		r.Get("/{sessionID}", sessionHandler.ViewHandler)
		r.Post("/{sessionID}/rounds/{roundNumber}/start", sessionHandler.StartRoundHandler)
		r.Post("/{sessionID}/rounds/{roundNumber}/complete", sessionHandler.CompleteRoundHandler)
		r.With(middleware.ValidateRequest[*models.UpdateSessionStatusRequest]()).Post("/{sessionID}/status", sessionHandler.UpdateStatusHandler)
		r.With(middleware.ValidateRequest[*models.SubmitArtifactRequest]()).Post("/{sessionID}/artifacts", sessionHandler.SubmitArtifactHandler)
		r.Get("/{sessionID}/live", liveHandler.StreamHandler)
	})
}
