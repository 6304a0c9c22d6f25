package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/flags"
	"github.com/abhinandc/ai-interview/internal/llm"
	"github.com/abhinandc/ai-interview/internal/metrics"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

// Recommendation thresholds and the minimum useful response length.
const (
	proceedThreshold = 75
	cautionThreshold = 65
	minResponseWords = 5
	evidenceMaxBytes = 120
)

// ErrNoDimensions is returned when every per-dimension evaluation failed.
var ErrNoDimensions = errors.New("no dimension produced a result")

// Engine turns a submitted artifact into a Score row plus red flags.
type Engine struct {
	store    *store.Store
	provider llm.Provider
	monitor  *flags.Monitor
	logger   *zap.Logger
}

func NewEngine(st *store.Store, provider llm.Provider, monitor *flags.Monitor, logger *zap.Logger) *Engine {
	return &Engine{store: st, provider: provider, monitor: monitor, logger: logger}
}

// RunForArtifact scores a persisted artifact against the standard rubric.
func (e *Engine) RunForArtifact(ctx context.Context, artifactID string) error {
	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return err
	}
	content := contentForScoring(artifact)
	return e.ScoreArtifact(ctx, artifact.SessionID, artifact.RoundNumber, artifact.ID, content, StandardDimensions)
}

// ScoreArtifact runs every dimension evaluation, aggregates the results,
// derives red flags and a recommendation, and persists one new Score row.
// Dimension calls are independent; one failure only narrows the rubric.
func (e *Engine) ScoreArtifact(ctx context.Context, sessionID string, roundNumber int, artifactID, content string, dimensions []models.Dimension) error {
	if utils.WordCount(content) < minResponseWords {
		_, err := e.monitor.Emit(ctx, sessionID, flags.Input{
			FlagType:    models.FlagInsufficientResponse,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("Response contains fewer than %d words", minResponseWords),
			Evidence: models.EvidenceList{{
				Quote:     utils.Truncate(content, evidenceMaxBytes),
				Timestamp: "n/a",
			}},
			RoundNumber: roundNumber,
		})
		if err != nil {
			e.logger.Warn("failed to emit insufficient response flag",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}

	var results []models.DimensionResult
	byName := make(map[string]models.Dimension, len(dimensions))
	for _, dim := range dimensions {
		byName[dim.Name] = dim
		result, err := e.provider.ScoreDimension(ctx, content, dim)
		if err != nil {
			e.logger.Warn("dimension evaluation failed",
				zap.String("session_id", sessionID),
				zap.String("dimension", dim.Name),
				zap.Error(err))
			continue
		}
		results = append(results, *result)
	}
	if len(results) == 0 {
		metrics.RecordScoringRun("failed")
		return ErrNoDimensions
	}

	var (
		sumScore, sumMax, sumConfidence float64
		dimensionScores                 = make(models.DimensionScores, len(results))
		evidence                        models.EvidenceList
		criticalWeak                    bool
	)
	for _, result := range results {
		dim := byName[result.Dimension]
		sumScore += result.Score
		sumMax += dim.MaxScore
		sumConfidence += result.Confidence
		dimensionScores[result.Dimension] = result.Score
		if result.Score < dim.CriticalBelow {
			criticalWeak = true
		}
		for _, quote := range result.Evidence {
			if strings.TrimSpace(quote) == "" {
				continue
			}
			evidence = append(evidence, models.EvidenceQuote{
				Dimension: result.Dimension,
				Quote:     quote,
				Timestamp: "n/a",
			})
		}
	}

	overall := int(math.Round(100 * sumScore / sumMax))
	confidence := math.Round(sumConfidence/float64(len(results))*100) / 100

	if len(evidence) == 0 {
		_, err := e.monitor.Emit(ctx, sessionID, flags.Input{
			FlagType:    models.FlagNoEvidence,
			Severity:    models.SeverityHigh,
			Description: "Scoring produced no supporting evidence quotes",
			RoundNumber: roundNumber,
		})
		if err != nil {
			e.logger.Warn("failed to emit no evidence flag",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}

	majorFlag, err := e.hasMajorFlag(ctx, sessionID, roundNumber)
	if err != nil {
		e.logger.Warn("failed to load round flags, assuming none",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	var recommendation string
	switch {
	case overall >= proceedThreshold && !majorFlag:
		recommendation = models.RecommendationProceed
	case overall >= cautionThreshold && !majorFlag && !criticalWeak:
		recommendation = models.RecommendationCaution
	default:
		recommendation = models.RecommendationStop
	}

	followups, err := e.provider.GenerateFollowups(ctx, content, dimensionScores, evidence)
	if err != nil {
		e.logger.Warn("followup generation failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		followups = nil
	}

	score := &models.Score{
		SessionID:            sessionID,
		RoundNumber:          roundNumber,
		OverallScore:         overall,
		DimensionScores:      dimensionScores,
		Confidence:           confidence,
		EvidenceQuotes:       evidence,
		Recommendation:       recommendation,
		RecommendedFollowups: followups,
	}
	if err := e.store.CreateScore(ctx, score); err != nil {
		metrics.RecordScoringRun("failed")
		return err
	}

	if err := e.store.AppendEvent(ctx, sessionID, models.EventScoringCompleted, models.ActorSystem, models.JSONMap{
		"round_number":   roundNumber,
		"artifact_id":    artifactID,
		"overall_score":  overall,
		"recommendation": recommendation,
		"critical_weak":  criticalWeak,
		"dimensions":     len(results),
	}); err != nil {
		e.logger.Warn("failed to record scoring event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	metrics.RecordScoringRun("scored")
	e.logger.Info("artifact scored",
		zap.String("session_id", sessionID),
		zap.Int("round_number", roundNumber),
		zap.Int("overall_score", overall),
		zap.String("recommendation", recommendation))
	return nil
}

// hasMajorFlag reports whether any flag on the round is critical severity
// or belongs to the disqualifying type set.
func (e *Engine) hasMajorFlag(ctx context.Context, sessionID string, roundNumber int) (bool, error) {
	roundFlags, err := e.store.ListRoundFlags(ctx, sessionID, roundNumber)
	if err != nil {
		return false, err
	}
	for _, flag := range roundFlags {
		if flag.Severity == models.SeverityCritical || models.DisqualifyingFlagTypes[flag.FlagType] {
			return true, nil
		}
	}
	return false, nil
}

// contentForScoring flattens a transcript stored in artifact metadata into
// a "speaker: line" text block, falling back to the raw content field.
func contentForScoring(artifact *models.Artifact) string {
	transcript, ok := artifact.Metadata["transcript"].([]interface{})
	if !ok || len(transcript) == 0 {
		return artifact.Content
	}

	var b strings.Builder
	for _, item := range transcript {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := entry["text"].(string)
		if text == "" {
			text, _ = entry["content"].(string)
		}
		if text == "" {
			continue
		}
		role, _ := entry["role"].(string)
		speaker := "Prospect"
		if role == "user" || role == "candidate" {
			speaker = "Candidate"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return artifact.Content
	}
	return strings.TrimSpace(b.String())
}
