package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

// ErrNoOpenSession is returned by candidate access when no scheduled or
// live session exists for the email.
var ErrNoOpenSession = errors.New("no scheduled or live session available")

// Service owns session bootstrap, candidate access, and the aggregator
// read model.
type Service struct {
	store       *store.Store
	logger      *zap.Logger
	eventLogCap int
}

func NewService(st *store.Store, eventLogCap int, logger *zap.Logger) *Service {
	if eventLogCap <= 0 {
		eventLogCap = 200
	}
	return &Service{store: st, logger: logger, eventLogCap: eventLogCap}
}

// Create runs the bootstrap chain: job profile, candidate, session, scope
// package with the track's round plan, then the session_created event.
// Failures abort the chain; nothing downstream of the failed insert exists.
func (s *Service) Create(ctx context.Context, req *models.CreateSessionRequest) (*models.CreateSessionResponse, error) {
	track := utils.NormalizeTrack(req.Track)
	now := time.Now()

	job := &models.JobProfile{
		ID:        uuid.NewString(),
		JobID:     fmt.Sprintf("temp_%d", now.UnixMilli()),
		Title:     req.Role,
		Location:  "Remote",
		LevelBand: strings.ToLower(req.Level),
		Track:     track,
	}
	if err := s.store.CreateJobProfile(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job profile: %w", err)
	}

	candidate := &models.Candidate{
		ID:        uuid.NewString(),
		Name:      req.CandidateName,
		Email:     syntheticEmail(req.CandidateName),
		JobID:     job.JobID,
		Status:    "live_scheduled",
		AppliedAt: now,
	}
	if err := s.store.CreateCandidate(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	session := &models.InterviewSession{
		ID:          uuid.NewString(),
		CandidateID: candidate.ID,
		JobID:       job.ID,
		SessionType: "live",
		Status:      models.SessionScheduled,
		ScheduledAt: &now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	pkg := &models.ScopePackage{
		ID:            uuid.NewString(),
		SessionID:     session.ID,
		GeneratedAt:   now,
		Track:         track,
		RubricVersion: "v1",
		RoundPlan:     RoundPlanForTrack(track, req.Difficulty),
	}
	if err := s.store.CreateScopePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create scope package: %w", err)
	}

	if err := s.store.AppendEvent(ctx, session.ID, models.EventSessionCreated, models.ActorSystem, models.JSONMap{
		"candidate_id": candidate.ID,
		"job_id":       job.ID,
		"track":        track,
	}); err != nil {
		s.logger.Warn("failed to record session creation event",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}

	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("track", track),
		zap.Int("rounds", len(pkg.RoundPlan)))

	return &models.CreateSessionResponse{
		Session:      session,
		Candidate:    candidate,
		Job:          job,
		ScopePackage: pkg,
		Rounds:       pkg.RoundPlan,
		CurrentRound: 1,
	}, nil
}

// View assembles the aggregator read model. Pure read composed of
// independent queries: eventually consistent, safe to poll frequently.
func (s *Service) View(ctx context.Context, sessionID string) (*models.SessionView, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pkg, err := s.store.GetScopePackage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.ListScores(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, sessionID, s.eventLogCap)
	if err != nil {
		return nil, err
	}
	artifacts, err := s.store.ListArtifacts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	redFlags, err := s.store.ListFlags(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &models.SessionView{
		Session:      session,
		ScopePackage: pkg,
		RoundPlan:    pkg.RoundPlan,
		Scores:       scores,
		Events:       events,
		Artifacts:    artifacts,
		RedFlags:     redFlags,
	}

	// Candidate and job lookups are enrichments, not requirements.
	if candidate, err := s.store.GetCandidate(ctx, session.CandidateID); err == nil {
		view.Candidate = candidate
	}
	if job, err := s.store.GetJobProfile(ctx, session.JobID); err == nil {
		view.Job = job
	}
	return view, nil
}

// AccessByEmail resolves the newest open session for a candidate email.
func (s *Service) AccessByEmail(ctx context.Context, email string) (*models.CandidateAccessResponse, error) {
	normalized := utils.NormalizeEmail(email)
	candidates, err := s.store.FindCandidatesByEmail(ctx, normalized, 25)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoOpenSession
	}

	candidateIDs := make([]string, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.ID
	}
	session, err := s.store.FindOpenSessionForCandidates(ctx, candidateIDs)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}

	matched := candidates[0]
	for _, c := range candidates {
		if c.ID == session.CandidateID {
			matched = c
			break
		}
	}

	return &models.CandidateAccessResponse{
		SessionID:      session.ID,
		Status:         session.Status,
		CandidateName:  matched.Name,
		CandidateEmail: matched.Email,
		RedirectURL:    "/candidate/" + session.ID,
	}, nil
}

// MagicLinkOpened records a magic-link open as an event plus a best-effort
// audit row. The audit insert failing only logs a warning.
func (s *Service) MagicLinkOpened(ctx context.Context, sessionID, email string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	normalized := utils.NormalizeEmail(email)
	if normalized == "" {
		if candidate, err := s.store.GetCandidate(ctx, session.CandidateID); err == nil {
			normalized = utils.NormalizeEmail(candidate.Email)
		}
	}

	if err := s.store.AppendEvent(ctx, sessionID, models.EventMagicLinkOpened, models.ActorCandidate, models.JSONMap{
		"candidate_id": session.CandidateID,
		"email":        normalized,
		"opened_at":    time.Now().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	auditEmail := normalized
	if auditEmail == "" {
		auditEmail = "unknown"
	}
	if err := s.store.CreateMagicLinkEvent(ctx, &models.MagicLinkEvent{
		SessionID:   sessionID,
		CandidateID: session.CandidateID,
		Email:       auditEmail,
		Status:      "opened",
	}); err != nil {
		s.logger.Warn("magic link audit insert failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	return nil
}

func syntheticEmail(name string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	return local + "@temp.com"
}
