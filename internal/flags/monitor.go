package flags

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/store"
)

// Input describes a red flag to raise.
type Input struct {
	FlagType    string
	Severity    string
	Description string
	Evidence    models.EvidenceList
	RoundNumber int
	Actor       string
}

// Monitor persists red flags and enforces auto-stop. A critical flag
// terminates the session inside the same Emit call, so no raised critical
// flag can be observed without its termination.
type Monitor struct {
	store   *store.Store
	machine *rounds.Machine
	logger  *zap.Logger
}

func NewMonitor(st *store.Store, machine *rounds.Machine, logger *zap.Logger) *Monitor {
	return &Monitor{store: st, machine: machine, logger: logger}
}

// Emit records the flag, appends its audit event, and force-stops the
// session when severity is critical.
func (m *Monitor) Emit(ctx context.Context, sessionID string, in Input) (*models.RedFlag, error) {
	if in.Actor == "" {
		in.Actor = models.ActorSystem
	}
	autoStop := in.Severity == models.SeverityCritical

	flag := &models.RedFlag{
		SessionID:   sessionID,
		RoundNumber: in.RoundNumber,
		FlagType:    in.FlagType,
		Severity:    in.Severity,
		Description: in.Description,
		Evidence:    in.Evidence,
		AutoStop:    autoStop,
		Actor:       in.Actor,
	}
	if err := m.store.CreateRedFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("failed to record red flag: %w", err)
	}

	if err := m.store.AppendEvent(ctx, sessionID, models.EventRedFlag, in.Actor, models.JSONMap{
		"flag_type":    in.FlagType,
		"severity":     in.Severity,
		"description":  in.Description,
		"round_number": in.RoundNumber,
		"auto_stop":    autoStop,
	}); err != nil {
		m.logger.Warn("failed to record red flag event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("red flag raised",
		zap.String("session_id", sessionID),
		zap.String("flag_type", in.FlagType),
		zap.String("severity", in.Severity),
		zap.Bool("auto_stop", autoStop))

	if autoStop {
		reason := "Critical red flag: " + in.Description
		err := m.machine.ForceStop(ctx, sessionID, reason, in.Actor)
		if err != nil && !errors.Is(err, rounds.ErrSessionTerminated) {
			return flag, fmt.Errorf("failed to auto-stop session: %w", err)
		}
	}
	return flag, nil
}
