package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/sessions"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type CandidateHandler struct {
	sessions *sessions.Service
	logger   *zap.Logger
}

func NewCandidateHandler(svc *sessions.Service, logger *zap.Logger) *CandidateHandler {
	return &CandidateHandler{sessions: svc, logger: logger}
}

func (h *CandidateHandler) AccessHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CandidateAccessRequest](r)

	resp, err := h.sessions.AccessByEmail(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *CandidateHandler) MagicLinkOpenHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.MagicLinkOpenRequest](r)

	if err := h.sessions.MagicLinkOpened(r.Context(), req.SessionID, req.Email); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
