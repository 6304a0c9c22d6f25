package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/middleware"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type ModelHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewModelHandler(st *store.Store, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{store: st, logger: logger}
}

// CreateHandler registers a model for routing. Only the last four
// characters of the API key are retained; full secrets never touch the
// database.
func (h *ModelHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateModelRequest](r)

	row := &models.RegisteredModel{
		ModelKey:    req.ModelKey,
		Provider:    req.Provider,
		Purpose:     req.Purpose,
		Endpoint:    req.Endpoint,
		APIKeyLast4: keyLast4(req.APIKey),
		IsActive:    true,
	}
	if err := h.store.CreateModel(r.Context(), row); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, row)
}

func (h *ModelHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListModels(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"models": rows})
}

// ListActiveHandler is the public listing clients use to discover which
// models serve a purpose. Only active rows are returned and key material
// is already reduced to its last four characters.
func (h *ModelHandler) ListActiveHandler(w http.ResponseWriter, r *http.Request) {
	purpose := r.URL.Query().Get("purpose")
	if purpose == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_purpose",
			Message: "purpose query parameter is required",
		})
		return
	}

	rows, err := h.store.ListActiveModels(r.Context(), purpose)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"models": rows})
}

func keyLast4(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
