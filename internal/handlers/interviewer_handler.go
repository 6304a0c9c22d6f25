package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/actions"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type InterviewerHandler struct {
	dispatcher *actions.Dispatcher
	logger     *zap.Logger
}

func NewInterviewerHandler(dispatcher *actions.Dispatcher, logger *zap.Logger) *InterviewerHandler {
	return &InterviewerHandler{dispatcher: dispatcher, logger: logger}
}

// ActionHandler routes one interviewer override action. Unknown action
// types succeed; they are audited without further effect.
func (h *InterviewerHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.InterviewerActionRequest](r)

	if err := h.dispatcher.Dispatch(r.Context(), req.SessionID, req.ActionType, req.Payload); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"action_type": req.ActionType,
	})
}
