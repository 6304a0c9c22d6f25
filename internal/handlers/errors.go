package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/sessions"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

// writeDomainError maps service-layer errors onto the uniform error
// payload. Terminal-session refusals get their own code so clients can
// tell "already over" from "something broke".
func writeDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var invalid *rounds.InvalidTransitionError
	switch {
	case errors.Is(err, rounds.ErrSessionTerminated):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_terminated",
			Message: "Session has already completed or been aborted",
		})
	case errors.As(err, &invalid):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "invalid_transition",
			Message: invalid.Error(),
		})
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrScopePackageNotFound),
		errors.Is(err, store.ErrArtifactNotFound),
		errors.Is(err, rounds.ErrRoundNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, sessions.ErrNoOpenSession):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "no_open_session",
			Message: "No scheduled or live session is currently available.",
		})
	default:
		logger.Error("request failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Internal server error",
		})
	}
}
