package actions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/flags"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/notify"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/store"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store, string) {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	st := store.New(db, notify.Noop{})
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx := context.Background()
	sessionID := uuid.NewString()
	if err := st.CreateSession(ctx, &models.InterviewSession{ID: sessionID, Status: models.SessionLive}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	if err := st.CreateScopePackage(ctx, &models.ScopePackage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Track:     models.TrackSales,
		RoundPlan: models.RoundPlan{
			{RoundNumber: 1, RoundType: models.RoundTypeText, Status: models.RoundActive},
			{RoundNumber: 2, RoundType: models.RoundTypeText, Status: models.RoundPending},
		},
	}); err != nil {
		t.Fatalf("failed to seed scope package: %v", err)
	}

	logger := zap.NewNop()
	machine := rounds.NewMachine(st, logger)
	monitor := flags.NewMonitor(st, machine, logger)
	return NewDispatcher(st, machine, monitor, logger), st, sessionID
}

func seedScore(t *testing.T, st *store.Store, sessionID string, roundNumber, overall int) *models.Score {
	t.Helper()
	score := &models.Score{
		SessionID:      sessionID,
		RoundNumber:    roundNumber,
		OverallScore:   overall,
		Recommendation: models.RecommendationCaution,
	}
	if err := st.CreateScore(context.Background(), score); err != nil {
		t.Fatalf("failed to seed score: %v", err)
	}
	return score
}

func eventCounts(t *testing.T, st *store.Store, sessionID string) map[string]int {
	t.Helper()
	events, err := st.ListEvents(context.Background(), sessionID, 0)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.EventType]++
	}
	return counts
}

func TestDispatchUnknownActionOnlyAudits(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)

	if err := dispatcher.Dispatch(context.Background(), sessionID, "inject_curveball", models.JSONMap{
		"curveball": "budget freeze",
	}); err != nil {
		t.Fatalf("unknown action types must not error: %v", err)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventInterviewerAction] != 1 || len(counts) != 1 {
		t.Fatalf("expected exactly one interviewer_action event, got %+v", counts)
	}
}

func TestDispatchFailedActionStillAudited(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)

	// override_score without a round fails, but the attempt is recorded.
	err := dispatcher.Dispatch(context.Background(), sessionID, models.ActionOverrideScore, models.JSONMap{
		"overall_score": 90,
	})
	if err == nil {
		t.Fatal("expected error for override without a round")
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventInterviewerAction] != 1 {
		t.Fatalf("expected interviewer_action audit despite branch failure, got %+v", counts)
	}
}

func TestDispatchManualFollowupAppends(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()
	seedScore(t, st, sessionID, 1, 70)

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionManualFollowup, models.JSONMap{
		"question": "How did you validate that assumption?",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	score, err := st.LatestScore(ctx, sessionID)
	if err != nil {
		t.Fatalf("failed to load score: %v", err)
	}
	if len(score.RecommendedFollowups) != 1 || score.RecommendedFollowups[0] != "How did you validate that assumption?" {
		t.Fatalf("expected followup appended, got %+v", score.RecommendedFollowups)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventFollowupQuestion] != 1 || counts[models.EventInterviewerAction] != 1 {
		t.Fatalf("expected followup_question and interviewer_action events, got %+v", counts)
	}
}

func TestDispatchManualFollowupWithoutText(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)

	if err := dispatcher.Dispatch(context.Background(), sessionID, models.ActionManualFollowup, models.JSONMap{}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventFollowupQuestion] != 0 || counts[models.EventInterviewerAction] != 1 {
		t.Fatalf("expected audit only, got %+v", counts)
	}
}

func TestDispatchOverrideScore(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()
	seedScore(t, st, sessionID, 1, 62)

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionOverrideScore, models.JSONMap{
		"round":          float64(1),
		"overall_score":  float64(78),
		"recommendation": models.RecommendationProceed,
		"reason":         "AI missed a strong technical answer",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	score, _ := st.LatestScoreForRound(ctx, sessionID, 1)
	if score.OverallScore != 78 || score.Recommendation != models.RecommendationProceed {
		t.Fatalf("expected override applied, got %+v", score)
	}
	if score.OverriddenBy != models.ActorInterviewer || score.OverrideReason == "" {
		t.Fatalf("expected override stamp, got %+v", score)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventScoreOverride] != 1 {
		t.Fatalf("expected score_override event, got %+v", counts)
	}
}

func TestDispatchOverrideScoreWithoutPriorScore(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)

	if err := dispatcher.Dispatch(context.Background(), sessionID, models.ActionOverrideScore, models.JSONMap{
		"round":         float64(2),
		"overall_score": float64(90),
	}); err != nil {
		t.Fatalf("override without prior score must no-op, got %v", err)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventScoreOverride] != 0 || counts[models.EventInterviewerAction] != 1 {
		t.Fatalf("expected audit only, got %+v", counts)
	}
}

func TestDispatchOverrideRecommendation(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()
	seedScore(t, st, sessionID, 1, 70)

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionOverrideRec, models.JSONMap{
		"round":          float64(1),
		"recommendation": models.RecommendationStop,
		"reason":         "culture concerns",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	score, _ := st.LatestScoreForRound(ctx, sessionID, 1)
	if score.Recommendation != models.RecommendationStop {
		t.Fatalf("expected recommendation overridden, got %s", score.Recommendation)
	}
	// Only the recommendation changes.
	if score.OverallScore != 70 {
		t.Fatalf("overall score must be untouched, got %d", score.OverallScore)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventRecOverride] != 1 {
		t.Fatalf("expected recommendation_override event, got %+v", counts)
	}
}

func TestDispatchFlagRedFlagCriticalAborts(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionFlagRedFlag, models.JSONMap{
		"severity":    models.SeverityCritical,
		"description": "fabricated prior employer",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("expected session aborted, got %s", session.Status)
	}

	stored, _ := st.ListFlags(ctx, sessionID)
	if len(stored) != 1 || !stored[0].AutoStop || stored[0].Actor != models.ActorInterviewer {
		t.Fatalf("unexpected flags: %+v", stored)
	}
	// Round number resolved from the active round.
	if stored[0].RoundNumber != 1 {
		t.Fatalf("expected flag on round 1, got %d", stored[0].RoundNumber)
	}
}

func TestDispatchFlagRedFlagDefaultsToWarning(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionFlagRedFlag, models.JSONMap{
		"description": "checking phone repeatedly",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	stored, _ := st.ListFlags(ctx, sessionID)
	if len(stored) != 1 || stored[0].Severity != models.SeverityWarning || stored[0].AutoStop {
		t.Fatalf("unexpected flags: %+v", stored)
	}
	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionLive {
		t.Fatalf("warning must not stop the session, got %s", session.Status)
	}
}

func TestDispatchForceAdvance(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionForceAdvance, models.JSONMap{
		"reason": "moving on",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	pkg, _ := st.GetScopePackage(ctx, sessionID)
	if pkg.RoundPlan[0].Status != models.RoundCompleted {
		t.Fatalf("expected round 1 completed, got %s", pkg.RoundPlan[0].Status)
	}
	if active := pkg.RoundPlan.ActiveRound(); active == nil || active.RoundNumber != 2 {
		t.Fatalf("expected round 2 active, got %+v", active)
	}
}

func TestDispatchForceStop(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)
	ctx := context.Background()

	if err := dispatcher.Dispatch(ctx, sessionID, models.ActionForceStop, models.JSONMap{}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("expected session aborted, got %s", session.Status)
	}
}

func TestDispatchEscalateDifficulty(t *testing.T) {
	dispatcher, st, sessionID := newTestDispatcher(t)

	if err := dispatcher.Dispatch(context.Background(), sessionID, models.ActionEscalateDifficulty, models.JSONMap{
		"level": "hard",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	counts := eventCounts(t, st, sessionID)
	if counts[models.EventDifficultyEscalation] != 1 {
		t.Fatalf("expected difficulty_escalation event, got %+v", counts)
	}

	// Round config mutation belongs to the voice provider.
	pkg, _ := st.GetScopePackage(context.Background(), sessionID)
	if pkg.RoundPlan[0].Config != nil && len(pkg.RoundPlan[0].Config) != 0 {
		t.Fatalf("round config must be untouched, got %+v", pkg.RoundPlan[0].Config)
	}
}
