package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/utils"
	"github.com/abhinandc/ai-interview/internal/voice"
)

type VoiceHandler struct {
	resolver *voice.Resolver
	logger   *zap.Logger
}

func NewVoiceHandler(resolver *voice.Resolver, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{resolver: resolver, logger: logger}
}

func (h *VoiceHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.VoiceSessionRequest](r)

	agentID, wsURL, level, err := h.resolver.Resolve(req.Difficulty)
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "no_agents_configured",
			Message: "No voice agents configured. Add agent IDs to the environment.",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.VoiceSessionResponse{
		WSURL:      wsURL,
		AgentID:    agentID,
		SessionID:  req.SessionID,
		Difficulty: level,
	})
}
