package flags

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/notify"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/store"
)

func newTestMonitor(t *testing.T) (*Monitor, *store.Store, string) {
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
	if err := st.CreateSession(ctx, &models.InterviewSession{
		ID:     sessionID,
		Status: models.SessionLive,
	}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	if err := st.CreateScopePackage(ctx, &models.ScopePackage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Track:     models.TrackSales,
		RoundPlan: models.RoundPlan{{RoundNumber: 1, RoundType: models.RoundTypeText, Status: models.RoundActive}},
	}); err != nil {
		t.Fatalf("failed to seed scope package: %v", err)
	}

	logger := zap.NewNop()
	machine := rounds.NewMachine(st, logger)
	return NewMonitor(st, machine, logger), st, sessionID
}

func TestEmitWarningPersistsWithoutStopping(t *testing.T) {
	monitor, st, sessionID := newTestMonitor(t)
	ctx := context.Background()

	flag, err := monitor.Emit(ctx, sessionID, Input{
		FlagType:    models.FlagCustom,
		Severity:    models.SeverityWarning,
		Description: "rambling answer",
		RoundNumber: 1,
		Actor:       models.ActorInterviewer,
	})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if flag.AutoStop {
		t.Fatal("warning flag must not auto-stop")
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionLive {
		t.Fatalf("expected session to stay live, got %s", session.Status)
	}

	stored, err := st.ListRoundFlags(ctx, sessionID, 1)
	if err != nil {
		t.Fatalf("failed to list flags: %v", err)
	}
	if len(stored) != 1 || stored[0].Severity != models.SeverityWarning {
		t.Fatalf("unexpected stored flags: %+v", stored)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	if len(events) != 1 || events[0].EventType != models.EventRedFlag {
		t.Fatalf("expected one red_flag event, got %+v", events)
	}
}

func TestEmitCriticalForcesStop(t *testing.T) {
	monitor, st, sessionID := newTestMonitor(t)
	ctx := context.Background()

	flag, err := monitor.Emit(ctx, sessionID, Input{
		FlagType:    "unsafe_data_handling",
		Severity:    models.SeverityCritical,
		Description: "shared customer PII unprompted",
		RoundNumber: 1,
		Actor:       models.ActorInterviewer,
	})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if !flag.AutoStop {
		t.Fatal("critical flag must set auto_stop")
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("expected session aborted, got %s", session.Status)
	}

	events, _ := st.ListEvents(ctx, sessionID, 0)
	types := make(map[string]int)
	for _, e := range events {
		types[e.EventType]++
	}
	if types[models.EventRedFlag] != 1 || types[models.EventSessionForceStopped] != 1 {
		t.Fatalf("expected red_flag and session_force_stopped events, got %+v", types)
	}
}

func TestEmitCriticalOnAbortedSession(t *testing.T) {
	monitor, st, sessionID := newTestMonitor(t)
	ctx := context.Background()

	if _, err := monitor.Emit(ctx, sessionID, Input{
		FlagType:    models.FlagCustom,
		Severity:    models.SeverityCritical,
		Description: "first",
		RoundNumber: 1,
	}); err != nil {
		t.Fatalf("first Emit returned error: %v", err)
	}

	// A second critical flag still persists; the stop is a no-op.
	if _, err := monitor.Emit(ctx, sessionID, Input{
		FlagType:    models.FlagCustom,
		Severity:    models.SeverityCritical,
		Description: "second",
		RoundNumber: 1,
	}); err != nil {
		t.Fatalf("second Emit returned error: %v", err)
	}

	stored, _ := st.ListFlags(ctx, sessionID)
	if len(stored) != 2 {
		t.Fatalf("expected both flags persisted, got %d", len(stored))
	}

	session, _ := st.GetSession(ctx, sessionID)
	if session.Status != models.SessionAborted {
		t.Fatalf("expected session aborted, got %s", session.Status)
	}
}
