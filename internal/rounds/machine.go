package rounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
)

// ErrSessionTerminated is returned when a lifecycle operation targets a
// session that already reached a terminal status.
var ErrSessionTerminated = errors.New("session is terminated")

// ErrRoundNotFound is returned when a round number is absent from the plan.
var ErrRoundNotFound = errors.New("round not found in plan")

// InvalidTransitionError reports a round transition the plan state does
// not allow, with enough context for the caller to explain the refusal.
type InvalidTransitionError struct {
	SessionID   string
	RoundNumber int
	Reason      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid round transition for session %s round %d: %s", e.SessionID, e.RoundNumber, e.Reason)
}

// Machine drives round lifecycle transitions. Every mutation of the round
// plan happens inside a single transaction so concurrent writers cannot
// interleave their read-check-write cycles.
type Machine struct {
	store  *store.Store
	logger *zap.Logger
}

func NewMachine(st *store.Store, logger *zap.Logger) *Machine {
	return &Machine{store: st, logger: logger}
}

// StartRound activates a pending round. The session must be scheduled or
// live, the target round pending, and no other round active. Starting the
// first round moves the session to live.
func (m *Machine) StartRound(ctx context.Context, sessionID string, roundNumber int, actor string) error {
	var started *models.Round
	err := m.store.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := m.store.GetSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionCompleted || session.Status == models.SessionAborted {
			return ErrSessionTerminated
		}

		pkg, err := m.store.GetScopePackageTx(tx, sessionID)
		if err != nil {
			return err
		}
		target := pkg.RoundPlan.FindRound(roundNumber)
		if target == nil {
			return ErrRoundNotFound
		}
		if target.Status != models.RoundPending {
			return &InvalidTransitionError{
				SessionID:   sessionID,
				RoundNumber: roundNumber,
				Reason:      fmt.Sprintf("round is %s, expected pending", target.Status),
			}
		}
		if active := pkg.RoundPlan.ActiveRound(); active != nil {
			return &InvalidTransitionError{
				SessionID:   sessionID,
				RoundNumber: roundNumber,
				Reason:      fmt.Sprintf("round %d is still active", active.RoundNumber),
			}
		}

		now := time.Now()
		target.Status = models.RoundActive
		target.StartedAt = &now
		if err := m.store.SaveRoundPlanTx(tx, pkg); err != nil {
			return err
		}

		if session.Status == models.SessionScheduled {
			session.Status = models.SessionLive
			if err := m.store.SaveSessionTx(tx, session); err != nil {
				return err
			}
		}
		started = target
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.store.AppendEvent(ctx, sessionID, models.EventRoundStarted, actor, models.JSONMap{
		"round_number": started.RoundNumber,
		"round_type":   started.RoundType,
		"title":        started.Title,
	}); err != nil {
		m.logger.Warn("failed to record round start event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("round started",
		zap.String("session_id", sessionID),
		zap.Int("round_number", roundNumber),
		zap.String("actor", actor))
	return nil
}

// CompleteRound finishes the given round. Completing a round that is not
// active is a no-op, which makes candidate-side and interviewer-side
// completion signals safe to race.
func (m *Machine) CompleteRound(ctx context.Context, sessionID string, roundNumber int, actor string) error {
	completed := false
	err := m.store.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := m.store.GetSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionCompleted || session.Status == models.SessionAborted {
			return ErrSessionTerminated
		}

		pkg, err := m.store.GetScopePackageTx(tx, sessionID)
		if err != nil {
			return err
		}
		target := pkg.RoundPlan.FindRound(roundNumber)
		if target == nil {
			return ErrRoundNotFound
		}
		if target.Status != models.RoundActive {
			return nil
		}

		now := time.Now()
		target.Status = models.RoundCompleted
		target.CompletedAt = &now
		completed = true
		return m.store.SaveRoundPlanTx(tx, pkg)
	})
	if err != nil {
		return err
	}
	if !completed {
		return nil
	}

	if err := m.store.AppendEvent(ctx, sessionID, models.EventRoundCompleted, actor, models.JSONMap{
		"round_number": roundNumber,
	}); err != nil {
		m.logger.Warn("failed to record round completion event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("round completed",
		zap.String("session_id", sessionID),
		zap.Int("round_number", roundNumber),
		zap.String("actor", actor))
	return nil
}

// ForceAdvance closes the active round and activates the next pending one.
// With no active round it audits nothing and returns nil; the interviewer
// console may fire it against an already-advanced session.
func (m *Machine) ForceAdvance(ctx context.Context, sessionID, actor, reason string) error {
	var skipped, next *models.Round
	err := m.store.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := m.store.GetSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionCompleted || session.Status == models.SessionAborted {
			return ErrSessionTerminated
		}

		pkg, err := m.store.GetScopePackageTx(tx, sessionID)
		if err != nil {
			return err
		}
		active := pkg.RoundPlan.ActiveRound()
		if active == nil {
			return nil
		}

		now := time.Now()
		active.Status = models.RoundCompleted
		active.CompletedAt = &now
		skipped = active

		for i := range pkg.RoundPlan {
			if pkg.RoundPlan[i].Status == models.RoundPending {
				pkg.RoundPlan[i].Status = models.RoundActive
				pkg.RoundPlan[i].StartedAt = &now
				next = &pkg.RoundPlan[i]
				break
			}
		}
		return m.store.SaveRoundPlanTx(tx, pkg)
	})
	if err != nil {
		return err
	}
	if skipped == nil {
		m.logger.Info("force advance with no active round, nothing to do",
			zap.String("session_id", sessionID))
		return nil
	}

	payload := models.JSONMap{
		"skipped_round": skipped.RoundNumber,
		"reason":        reason,
	}
	if next != nil {
		payload["next_round"] = next.RoundNumber
	}
	if err := m.store.AppendEvent(ctx, sessionID, models.EventRoundForceAdvanced, actor, payload); err != nil {
		m.logger.Warn("failed to record force advance event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("round force advanced",
		zap.String("session_id", sessionID),
		zap.Int("skipped_round", skipped.RoundNumber),
		zap.String("actor", actor))
	return nil
}

// CompleteSession moves the session to its completed terminal state. An
// already-completed session is a no-op; completing an aborted session is
// refused. A still-active round is closed alongside the session so the
// plan never outlives it.
func (m *Machine) CompleteSession(ctx context.Context, sessionID, actor string) error {
	completed := false
	err := m.store.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := m.store.GetSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		switch session.Status {
		case models.SessionCompleted:
			return nil
		case models.SessionAborted:
			return ErrSessionTerminated
		}

		pkg, err := m.store.GetScopePackageTx(tx, sessionID)
		if err != nil {
			return err
		}
		if active := pkg.RoundPlan.ActiveRound(); active != nil {
			now := time.Now()
			active.Status = models.RoundCompleted
			active.CompletedAt = &now
			if err := m.store.SaveRoundPlanTx(tx, pkg); err != nil {
				return err
			}
		}

		session.Status = models.SessionCompleted
		completed = true
		return m.store.SaveSessionTx(tx, session)
	})
	if err != nil {
		return err
	}
	if !completed {
		return nil
	}

	if err := m.store.AppendEvent(ctx, sessionID, models.EventSessionCompleted, actor, nil); err != nil {
		m.logger.Warn("failed to record session completion event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("session completed",
		zap.String("session_id", sessionID),
		zap.String("actor", actor))
	return nil
}

// ForceStop aborts the session. Stopping an already-aborted session is a
// no-op so the critical-flag path and the interviewer button can race.
// Stopping a completed session is refused.
func (m *Machine) ForceStop(ctx context.Context, sessionID, reason, actor string) error {
	stopped := false
	err := m.store.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := m.store.GetSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		switch session.Status {
		case models.SessionAborted:
			return nil
		case models.SessionCompleted:
			return ErrSessionTerminated
		}

		session.Status = models.SessionAborted
		stopped = true
		return m.store.SaveSessionTx(tx, session)
	})
	if err != nil {
		return err
	}
	if !stopped {
		return nil
	}

	if err := m.store.AppendEvent(ctx, sessionID, models.EventSessionForceStopped, actor, models.JSONMap{
		"reason": reason,
	}); err != nil {
		m.logger.Warn("failed to record force stop event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	m.logger.Info("session force stopped",
		zap.String("session_id", sessionID),
		zap.String("reason", reason),
		zap.String("actor", actor))
	return nil
}
