package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/artifacts"
	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/sessions"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type SessionHandler struct {
	sessions *sessions.Service
	machine  *rounds.Machine
	intake   *artifacts.Intake
	logger   *zap.Logger
}

func NewSessionHandler(svc *sessions.Service, machine *rounds.Machine, intake *artifacts.Intake, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: svc,
		machine:  machine,
		intake:   intake,
		logger:   logger,
	}
}

func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateSessionRequest](r)

	resp, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

// ViewHandler serves the aggregator read model both clients poll.
func (h *SessionHandler) ViewHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	view, err := h.sessions.View(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *SessionHandler) StartRoundHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	roundNumber, ok := roundNumberParam(w, r)
	if !ok {
		return
	}

	if err := h.machine.StartRound(r.Context(), sessionID, roundNumber, actorFromBody(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   sessionID,
		"round_number": roundNumber,
		"status":       models.RoundActive,
	})
}

func (h *SessionHandler) CompleteRoundHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	roundNumber, ok := roundNumberParam(w, r)
	if !ok {
		return
	}

	if err := h.machine.CompleteRound(r.Context(), sessionID, roundNumber, actorFromBody(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   sessionID,
		"round_number": roundNumber,
		"status":       models.RoundCompleted,
	})
}

// UpdateStatusHandler moves a session to a terminal status. Completing
// goes through the machine's monotonicity checks; aborting reuses the
// force-stop path so both buttons share one set of rules.
func (h *SessionHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.UpdateSessionStatusRequest](r)
	sessionID := chi.URLParam(r, "sessionID")

	var err error
	switch req.Status {
	case models.SessionCompleted:
		err = h.machine.CompleteSession(r.Context(), sessionID, req.Actor)
	case models.SessionAborted:
		reason := req.Reason
		if reason == "" {
			reason = "Stopped by interviewer"
		}
		err = h.machine.ForceStop(r.Context(), sessionID, reason, req.Actor)
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"status":     req.Status,
	})
}

func (h *SessionHandler) SubmitArtifactHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitArtifactRequest](r)
	req.SessionID = chi.URLParam(r, "sessionID")

	artifact, err := h.intake.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	scoring := "queued"
	if req.Draft() {
		scoring = "skipped"
	}
	utils.JSON(w, http.StatusCreated, models.SubmitArtifactResponse{
		Artifact: artifact,
		Scoring:  scoring,
	})
}

func roundNumberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	roundNumber, err := strconv.Atoi(chi.URLParam(r, "roundNumber"))
	if err != nil || roundNumber < 1 {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_round_number",
			Message: "round number must be a positive integer",
		})
		return 0, false
	}
	return roundNumber, true
}

// actorFromBody reads the optional {"actor": ...} body on round transition
// calls. An empty or absent body means the candidate client.
func actorFromBody(r *http.Request) string {
	var body struct {
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Actor != "" {
		return body.Actor
	}
	return models.ActorCandidate
}
