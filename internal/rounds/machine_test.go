package rounds

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/notify"
	"github.com/abhinandc/ai-interview/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
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
	return st
}

func seedSession(t *testing.T, st *store.Store, roundCount int) string {
	t.Helper()
	ctx := context.Background()
	sessionID := uuid.NewString()
	now := time.Now()

	if err := st.CreateSession(ctx, &models.InterviewSession{
		ID:          sessionID,
		CandidateID: uuid.NewString(),
		SessionType: "live",
		Status:      models.SessionScheduled,
		ScheduledAt: &now,
	}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	plan := make(models.RoundPlan, 0, roundCount)
	for i := 1; i <= roundCount; i++ {
		plan = append(plan, models.Round{
			RoundNumber:     i,
			RoundType:       models.RoundTypeText,
			Title:           fmt.Sprintf("Round %d", i),
			DurationMinutes: 5,
			Status:          models.RoundPending,
		})
	}
	if err := st.CreateScopePackage(ctx, &models.ScopePackage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Track:     models.TrackSales,
		RoundPlan: plan,
	}); err != nil {
		t.Fatalf("failed to seed scope package: %v", err)
	}
	return sessionID
}

func newTestMachine(t *testing.T) (*Machine, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewMachine(st, zap.NewNop()), st
}

func TestStartRoundActivatesAndGoesLive(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 3)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}

	session, err := st.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if session.Status != models.SessionLive {
		t.Fatalf("expected session live, got %s", session.Status)
	}

	pkg, err := st.GetScopePackage(ctx, sessionID)
	if err != nil {
		t.Fatalf("failed to load scope package: %v", err)
	}
	active := pkg.RoundPlan.ActiveRound()
	if active == nil || active.RoundNumber != 1 {
		t.Fatalf("expected round 1 active, got %+v", active)
	}
	if active.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	events, err := st.ListEvents(ctx, sessionID, 0)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != models.EventRoundStarted {
		t.Fatalf("expected one round_started event, got %+v", events)
	}
}

func TestStartRoundRejectsSecondActive(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 3)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}

	err := machine.StartRound(ctx, sessionID, 2, models.ActorCandidate)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	pkg, _ := st.GetScopePackage(ctx, sessionID)
	if active := pkg.RoundPlan.ActiveRound(); active == nil || active.RoundNumber != 1 {
		t.Fatalf("expected round 1 to stay active, got %+v", active)
	}
}

func TestStartRoundRejectsNonPending(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 2)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}
	if err := machine.CompleteRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("CompleteRound returned error: %v", err)
	}

	err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError restarting completed round, got %v", err)
	}
}

func TestStartRoundUnknownRound(t *testing.T) {
	machine, st := newTestMachine(t)
	sessionID := seedSession(t, st, 2)

	if err := machine.StartRound(context.Background(), sessionID, 9, models.ActorCandidate); !errors.Is(err, ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound, got %v", err)
	}
}

func TestCompleteRoundIdempotent(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 2)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}

	// Auto-submit and timer expiry race: both complete the same round.
	if err := machine.CompleteRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("first CompleteRound returned error: %v", err)
	}
	if err := machine.CompleteRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("repeat CompleteRound should no-op, got %v", err)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	completions := 0
	for _, e := range events {
		if e.EventType == models.EventRoundCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one round_completed event, got %d", completions)
	}
}

func TestCompleteRoundNeverStarted(t *testing.T) {
	machine, st := newTestMachine(t)
	sessionID := seedSession(t, st, 2)

	if err := machine.CompleteRound(context.Background(), sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("completing a pending round should no-op, got %v", err)
	}

	pkg, _ := st.GetScopePackage(context.Background(), sessionID)
	if pkg.RoundPlan[0].Status != models.RoundPending {
		t.Fatalf("expected round to stay pending, got %s", pkg.RoundPlan[0].Status)
	}
}

func TestForceAdvanceSkipsToNext(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 3)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}
	if err := machine.ForceAdvance(ctx, sessionID, models.ActorInterviewer, "out of time"); err != nil {
		t.Fatalf("ForceAdvance returned error: %v", err)
	}

	pkg, _ := st.GetScopePackage(ctx, sessionID)
	if pkg.RoundPlan[0].Status != models.RoundCompleted {
		t.Fatalf("expected round 1 completed, got %s", pkg.RoundPlan[0].Status)
	}
	if active := pkg.RoundPlan.ActiveRound(); active == nil || active.RoundNumber != 2 {
		t.Fatalf("expected round 2 active, got %+v", active)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	found := false
	for _, e := range events {
		if e.EventType == models.EventRoundForceAdvanced {
			found = true
			if e.Payload["skipped_round"] != float64(1) || e.Payload["next_round"] != float64(2) {
				t.Fatalf("unexpected force advance payload: %+v", e.Payload)
			}
		}
	}
	if !found {
		t.Fatal("expected round_force_advanced event")
	}
}

func TestForceAdvanceNoActiveRound(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 2)

	if err := machine.ForceAdvance(ctx, sessionID, models.ActorInterviewer, ""); err != nil {
		t.Fatalf("ForceAdvance with no active round should no-op, got %v", err)
	}
	events, _ := st.ListEvents(ctx, sessionID, 0)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestCompleteSessionTerminates(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 2)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}
	if err := machine.CompleteSession(ctx, sessionID, models.ActorInterviewer); err != nil {
		t.Fatalf("CompleteSession returned error: %v", err)
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionCompleted {
		t.Fatalf("expected session completed, got %s", session.Status)
	}

	// The active round is closed along with the session.
	pkg, _ := st.GetScopePackage(ctx, sessionID)
	if pkg.RoundPlan[0].Status != models.RoundCompleted {
		t.Fatalf("expected round 1 completed, got %s", pkg.RoundPlan[0].Status)
	}

	// Terminal: no further transitions accepted.
	if err := machine.StartRound(ctx, sessionID, 2, models.ActorCandidate); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated, got %v", err)
	}
	if err := machine.ForceStop(ctx, sessionID, "too late", models.ActorInterviewer); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated from ForceStop, got %v", err)
	}

	// Repeated completion is an idempotent no-op.
	if err := machine.CompleteSession(ctx, sessionID, models.ActorInterviewer); err != nil {
		t.Fatalf("repeat CompleteSession should no-op, got %v", err)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	completions := 0
	for _, e := range events {
		if e.EventType == models.EventSessionCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one session_completed event, got %d", completions)
	}

	// Completed sessions become visible to the report exporter.
	finished, err := st.ListFinishedUnexported(ctx, 0)
	if err != nil {
		t.Fatalf("ListFinishedUnexported returned error: %v", err)
	}
	if len(finished) != 1 || finished[0].ID != sessionID {
		t.Fatalf("expected completed session awaiting export, got %+v", finished)
	}
}

func TestCompleteSessionAbortedRefused(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 1)

	if err := machine.ForceStop(ctx, sessionID, "candidate withdrew", models.ActorInterviewer); err != nil {
		t.Fatalf("ForceStop returned error: %v", err)
	}
	if err := machine.CompleteSession(ctx, sessionID, models.ActorInterviewer); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated, got %v", err)
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("aborted status must not change, got %s", session.Status)
	}
}

func TestForceStopTerminates(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 2)

	if err := machine.StartRound(ctx, sessionID, 1, models.ActorCandidate); err != nil {
		t.Fatalf("StartRound returned error: %v", err)
	}
	if err := machine.ForceStop(ctx, sessionID, "candidate withdrew", models.ActorInterviewer); err != nil {
		t.Fatalf("ForceStop returned error: %v", err)
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("expected session aborted, got %s", session.Status)
	}

	// Terminal: no further transitions accepted.
	if err := machine.StartRound(ctx, sessionID, 2, models.ActorCandidate); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated, got %v", err)
	}
	if err := machine.CompleteRound(ctx, sessionID, 1, models.ActorCandidate); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated, got %v", err)
	}

	// Repeated force stop is an idempotent no-op.
	if err := machine.ForceStop(ctx, sessionID, "again", models.ActorInterviewer); err != nil {
		t.Fatalf("repeat ForceStop should no-op, got %v", err)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	stops := 0
	for _, e := range events {
		if e.EventType == models.EventSessionForceStopped {
			stops++
		}
	}
	if stops != 1 {
		t.Fatalf("expected exactly one session_force_stopped event, got %d", stops)
	}
}

func TestForceStopCompletedSession(t *testing.T) {
	machine, st := newTestMachine(t)
	ctx := context.Background()
	sessionID := seedSession(t, st, 1)

	session, _ := st.GetSession(ctx, sessionID)
	session.Status = models.SessionCompleted
	if err := st.Transaction(ctx, func(tx *gorm.DB) error {
		return st.SaveSessionTx(tx, session)
	}); err != nil {
		t.Fatalf("failed to mark session completed: %v", err)
	}

	if err := machine.ForceStop(ctx, sessionID, "late", models.ActorInterviewer); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("expected ErrSessionTerminated for completed session, got %v", err)
	}
}
