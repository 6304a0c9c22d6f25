package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/flags"
	"github.com/abhinandc/ai-interview/internal/metrics"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/store"
)

// Dispatcher is the interviewer override layer. Each known action type
// has its own branch; unknown types are accepted and only audited, which
// keeps the endpoint forward-compatible with newer clients.
type Dispatcher struct {
	store   *store.Store
	machine *rounds.Machine
	monitor *flags.Monitor
	logger  *zap.Logger
}

func NewDispatcher(st *store.Store, machine *rounds.Machine, monitor *flags.Monitor, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{store: st, machine: machine, monitor: monitor, logger: logger}
}

// Dispatch routes one interviewer action. The interviewer_action audit
// event is appended before the branch runs, so the audit trail records the
// attempt even when the branch fails; the interviewer always wins over
// AI-derived state.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, actionType string, payload models.JSONMap) error {
	metrics.RecordAction(actionType)

	if auditErr := d.store.AppendEvent(ctx, sessionID, models.EventInterviewerAction, models.ActorInterviewer, models.JSONMap{
		"action_type": actionType,
		"payload":     payload,
	}); auditErr != nil {
		d.logger.Warn("failed to record interviewer action",
			zap.String("session_id", sessionID),
			zap.String("action_type", actionType),
			zap.Error(auditErr))
	}

	var err error
	switch actionType {
	case models.ActionManualFollowup:
		err = d.manualFollowup(ctx, sessionID, payload)
	case models.ActionEscalateDifficulty:
		err = d.escalateDifficulty(ctx, sessionID, payload)
	case models.ActionFlagRedFlag:
		err = d.flagRedFlag(ctx, sessionID, payload)
	case models.ActionOverrideScore:
		err = d.overrideScore(ctx, sessionID, payload)
	case models.ActionOverrideRec:
		err = d.overrideRecommendation(ctx, sessionID, payload)
	case models.ActionForceAdvance:
		reason := payloadString(payload, "reason")
		err = d.machine.ForceAdvance(ctx, sessionID, models.ActorInterviewer, reason)
	case models.ActionForceStop:
		reason := payloadString(payload, "reason")
		if reason == "" {
			reason = "Stopped by interviewer"
		}
		err = d.machine.ForceStop(ctx, sessionID, reason, models.ActorInterviewer)
	}
	return err
}

// manualFollowup records a followup question event and appends the text to
// the latest score's recommended followups. The score write is a plain
// read-append-write without locking; the lost-update cost of two racing
// followups is one list entry, which the interaction rate makes acceptable.
func (d *Dispatcher) manualFollowup(ctx context.Context, sessionID string, payload models.JSONMap) error {
	text := payloadString(payload, "question")
	if text == "" {
		text = payloadString(payload, "text")
	}
	if text == "" {
		return nil
	}

	roundNumber, ok := payloadInt(payload, "round")
	if !ok {
		if active, err := d.activeRound(ctx, sessionID); err == nil && active != nil {
			roundNumber = active.RoundNumber
			ok = true
		}
	}

	if ok {
		if err := d.store.AppendEvent(ctx, sessionID, models.EventFollowupQuestion, models.ActorInterviewer, models.JSONMap{
			"question_id":  uuid.NewString(),
			"question":     text,
			"round_number": roundNumber,
		}); err != nil {
			return err
		}
	}

	score, err := d.store.LatestScore(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrScoreNotFound) {
			return nil
		}
		return err
	}
	score.RecommendedFollowups = append(score.RecommendedFollowups, text)
	return d.store.UpdateScore(ctx, score)
}

// escalateDifficulty only logs; actually raising the AI persona's
// difficulty is the voice provider's concern.
func (d *Dispatcher) escalateDifficulty(ctx context.Context, sessionID string, payload models.JSONMap) error {
	roundNumber, ok := payloadInt(payload, "round")
	if !ok {
		if active, err := d.activeRound(ctx, sessionID); err == nil && active != nil {
			roundNumber = active.RoundNumber
		}
	}
	return d.store.AppendEvent(ctx, sessionID, models.EventDifficultyEscalation, models.ActorInterviewer, models.JSONMap{
		"round_number": roundNumber,
		"level":        payloadString(payload, "level"),
	})
}

func (d *Dispatcher) flagRedFlag(ctx context.Context, sessionID string, payload models.JSONMap) error {
	severity := payloadString(payload, "severity")
	if severity == "" {
		severity = models.SeverityWarning
	}
	flagType := payloadString(payload, "flag_type")
	if flagType == "" {
		flagType = models.FlagCustom
	}

	roundNumber, ok := payloadInt(payload, "round")
	if !ok {
		if active, err := d.activeRound(ctx, sessionID); err == nil && active != nil {
			roundNumber = active.RoundNumber
		}
	}

	_, err := d.monitor.Emit(ctx, sessionID, flags.Input{
		FlagType:    flagType,
		Severity:    severity,
		Description: payloadString(payload, "description"),
		RoundNumber: roundNumber,
		Actor:       models.ActorInterviewer,
	})
	return err
}

// overrideScore mutates the latest score row for the given round in place.
// Silently does nothing when no prior score exists; overrides never create
// scores from nothing.
func (d *Dispatcher) overrideScore(ctx context.Context, sessionID string, payload models.JSONMap) error {
	roundNumber, ok := payloadInt(payload, "round")
	if !ok {
		return fmt.Errorf("override_score requires a numeric round")
	}

	score, err := d.store.LatestScoreForRound(ctx, sessionID, roundNumber)
	if err != nil {
		if errors.Is(err, store.ErrScoreNotFound) {
			return nil
		}
		return err
	}

	before := models.JSONMap{
		"overall_score":  score.OverallScore,
		"recommendation": score.Recommendation,
	}

	if overall, ok := payloadInt(payload, "overall_score"); ok {
		score.OverallScore = overall
	}
	if dims, ok := payload["dimension_scores"].(map[string]interface{}); ok {
		for name, value := range dims {
			if n, ok := value.(float64); ok {
				if score.DimensionScores == nil {
					score.DimensionScores = models.DimensionScores{}
				}
				score.DimensionScores[name] = n
			}
		}
	}
	if rec := payloadString(payload, "recommendation"); rec != "" {
		score.Recommendation = rec
	}
	score.OverriddenBy = models.ActorInterviewer
	score.OverrideReason = payloadString(payload, "reason")

	if err := d.store.UpdateScore(ctx, score); err != nil {
		return err
	}

	return d.store.AppendEvent(ctx, sessionID, models.EventScoreOverride, models.ActorInterviewer, models.JSONMap{
		"round_number": roundNumber,
		"before":       before,
		"after": models.JSONMap{
			"overall_score":  score.OverallScore,
			"recommendation": score.Recommendation,
		},
		"reason": score.OverrideReason,
	})
}

func (d *Dispatcher) overrideRecommendation(ctx context.Context, sessionID string, payload models.JSONMap) error {
	roundNumber, ok := payloadInt(payload, "round")
	if !ok {
		return fmt.Errorf("override_recommendation requires a numeric round")
	}
	rec := payloadString(payload, "recommendation")
	if rec == "" {
		return fmt.Errorf("override_recommendation requires a recommendation")
	}

	score, err := d.store.LatestScoreForRound(ctx, sessionID, roundNumber)
	if err != nil {
		if errors.Is(err, store.ErrScoreNotFound) {
			return nil
		}
		return err
	}

	before := score.Recommendation
	score.Recommendation = rec
	score.OverriddenBy = models.ActorInterviewer
	score.OverrideReason = payloadString(payload, "reason")

	if err := d.store.UpdateScore(ctx, score); err != nil {
		return err
	}

	return d.store.AppendEvent(ctx, sessionID, models.EventRecOverride, models.ActorInterviewer, models.JSONMap{
		"round_number": roundNumber,
		"before":       before,
		"after":        rec,
		"reason":       score.OverrideReason,
	})
}

func (d *Dispatcher) activeRound(ctx context.Context, sessionID string) (*models.Round, error) {
	pkg, err := d.store.GetScopePackage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return pkg.RoundPlan.ActiveRound(), nil
}

// JSON numbers decode as float64, so integer payload fields arrive that way.
func payloadInt(payload models.JSONMap, key string) (int, bool) {
	switch v := payload[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func payloadString(payload models.JSONMap, key string) string {
	s, _ := payload[key].(string)
	return s
}
