package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
)

func InterviewerRoutes(router *chi.Mux, interviewerHandler *handlers.InterviewerHandler) {
	router.Route("/api/v1/interviewer", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.InterviewerActionRequest]()).Post("/action", interviewerHandler.ActionHandler)
	})
}
