package handlers

import (
	"net/http"

	"github.com/abhinandc/ai-interview/internal/config"
	"github.com/abhinandc/ai-interview/internal/llm"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	provider llm.Provider
	store    *store.Store
	config   *config.Config
}

func NewHealthHandler(provider llm.Provider, st *store.Store, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		store:    st,
		config:   cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// verify AI provider is initialized
	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "failed",
			Message: "AI provider not initialized",
		}
		allChecksPass = false
	} else {
		checks["provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify the store answers a trivial query
	if handler.store == nil {
		checks["store"] = ReadinessCheck{
			Status:  "failed",
			Message: "Store not initialized",
		}
		allChecksPass = false
	} else if _, err := handler.store.ListModels(request.Context()); err != nil {
		checks["store"] = ReadinessCheck{
			Status:  "failed",
			Message: "Database query failed",
		}
		allChecksPass = false
	} else {
		checks["store"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
