package artifacts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/scoring"
	"github.com/abhinandc/ai-interview/internal/store"
)

// Intake persists candidate submissions and triggers scoring for final
// (non-draft) ones. Async controls whether scoring runs in a background
// goroutine; tests set it false to keep runs deterministic.
type Intake struct {
	store  *store.Store
	engine *scoring.Engine
	logger *zap.Logger
	Async  bool
}

func NewIntake(st *store.Store, engine *scoring.Engine, logger *zap.Logger) *Intake {
	return &Intake{store: st, engine: engine, logger: logger, Async: true}
}

// Submit accepts any round number and type without checking the active
// round; drafts for the active round arrive repeatedly and only finality
// matters for scoring. The artifact persists even if scoring never runs.
func (i *Intake) Submit(ctx context.Context, req *models.SubmitArtifactRequest) (*models.Artifact, error) {
	artifact := &models.Artifact{
		ID:           uuid.NewString(),
		SessionID:    req.SessionID,
		RoundNumber:  req.RoundNumber,
		ArtifactType: req.ArtifactType,
		Content:      req.Content,
		Metadata:     req.Metadata,
	}
	if err := i.store.CreateArtifact(ctx, artifact); err != nil {
		return nil, err
	}

	if err := i.store.AppendEvent(ctx, req.SessionID, models.EventArtifactSubmitted, models.ActorCandidate, models.JSONMap{
		"artifact_id":   artifact.ID,
		"round_number":  req.RoundNumber,
		"artifact_type": req.ArtifactType,
		"draft":         req.Draft(),
	}); err != nil {
		i.logger.Warn("failed to record artifact event",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
	}

	if req.Draft() {
		return artifact, nil
	}

	if i.Async {
		go func(artifactID, sessionID string) {
			bg, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := i.engine.RunForArtifact(bg, artifactID); err != nil {
				i.logger.Error("background scoring failed",
					zap.String("session_id", sessionID),
					zap.String("artifact_id", artifactID),
					zap.Error(err))
			}
		}(artifact.ID, req.SessionID)
	} else if err := i.engine.RunForArtifact(ctx, artifact.ID); err != nil {
		i.logger.Error("scoring failed",
			zap.String("session_id", req.SessionID),
			zap.String("artifact_id", artifact.ID),
			zap.Error(err))
	}
	return artifact, nil
}
