package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
)

func AdminRoutes(router *chi.Mux, adminHandler *handlers.AdminHandler, modelHandler *handlers.ModelHandler, jwtSecret string) {
	router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(jwtSecret))
		r.Get("/metrics", adminHandler.MetricsHandler)
		r.Get("/models", modelHandler.ListHandler)
		r.With(middleware.ValidateRequest[*models.CreateModelRequest]()).Post("/models", modelHandler.CreateHandler)
	})

	// Read-only discovery endpoint, no admin gate.
	router.Get("/api/v1/models", modelHandler.ListActiveHandler)
}
