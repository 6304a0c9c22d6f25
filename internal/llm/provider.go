package llm

import (
	"context"

	"github.com/abhinandc/ai-interview/internal/models"
)

// defines the interface for LLM providers used by the scoring engine
type Provider interface {
	ScoreDimension(ctx context.Context, content string, dimension models.Dimension) (*models.DimensionResult, error)
	GenerateFollowups(ctx context.Context, content string, scores models.DimensionScores, evidence models.EvidenceList) ([]string, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeBadResponse  = "malformed_response"
	ErrCodeTimeout      = "timeout"
)
