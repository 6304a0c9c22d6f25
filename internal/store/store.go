package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/metrics"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/notify"
)

// Lookup failures surfaced to callers. Operations abort with no partial
// write when a dependency row is missing.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrScopePackageNotFound = errors.New("scope package not found")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrScoreNotFound        = errors.New("score not found")
)

// Store is the injected persistence handle. All mutating methods publish a
// row-change notification after the write commits.
type Store struct {
	db       *gorm.DB
	notifier notify.Publisher
}

func New(db *gorm.DB, notifier notify.Publisher) *Store {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Store{db: db, notifier: notifier}
}

// AutoMigrate creates or updates every table the platform uses.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.InterviewSession{},
		&models.Candidate{},
		&models.JobProfile{},
		&models.ScopePackage{},
		&models.LiveEvent{},
		&models.Artifact{},
		&models.Score{},
		&models.RedFlag{},
		&models.RegisteredModel{},
		&models.MagicLinkEvent{},
	)
}

// Transaction runs fn inside a single database transaction. Round-plan
// writers use this so the read-check-write of the embedded plan array is
// not interleaved with another writer's.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Store) notifyChange(ctx context.Context, table, rowID, sessionID string) {
	s.notifier.Publish(ctx, notify.Change{Table: table, RowID: rowID, SessionID: sessionID})
}

// Sessions

func (s *Store) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	s.notifyChange(ctx, "interview_sessions", session.ID, session.ID)
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetSessionTx reads a session inside an open transaction.
func (s *Store) GetSessionTx(tx *gorm.DB, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *Store) SaveSessionTx(tx *gorm.DB, session *models.InterviewSession) error {
	return tx.Save(session).Error
}

func (s *Store) ListSessions(ctx context.Context) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	if err := s.db.WithContext(ctx).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListFinishedUnexported returns completed/aborted sessions whose report
// has not been exported yet.
func (s *Store) ListFinishedUnexported(ctx context.Context, limit int) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	query := s.db.WithContext(ctx).
		Where("status IN ?", []string{models.SessionCompleted, models.SessionAborted}).
		Where("report_exported = ?", false).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) MarkReportsExported(ctx context.Context, sessionIDs []string) error {
	return s.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("id IN ?", sessionIDs).
		Update("report_exported", true).Error
}

// Candidates and job profiles

func (s *Store) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	return s.db.WithContext(ctx).Create(candidate).Error
}

func (s *Store) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := s.db.WithContext(ctx).First(&candidate, "id = ?", candidateID).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (s *Store) FindCandidatesByEmail(ctx context.Context, email string, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	query := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("applied_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

// FindOpenSessionForCandidates returns the newest scheduled or live session
// belonging to any of the given candidates.
func (s *Store) FindOpenSessionForCandidates(ctx context.Context, candidateIDs []string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := s.db.WithContext(ctx).
		Where("candidate_id IN ?", candidateIDs).
		Where("status IN ?", []string{models.SessionScheduled, models.SessionLive}).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *Store) CreateJobProfile(ctx context.Context, job *models.JobProfile) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *Store) GetJobProfile(ctx context.Context, jobID string) (*models.JobProfile, error) {
	var job models.JobProfile
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// Scope packages

func (s *Store) CreateScopePackage(ctx context.Context, pkg *models.ScopePackage) error {
	if err := s.db.WithContext(ctx).Create(pkg).Error; err != nil {
		return fmt.Errorf("failed to create scope package: %w", err)
	}
	s.notifyChange(ctx, "interview_scope_packages", pkg.ID, pkg.SessionID)
	return nil
}

func (s *Store) GetScopePackage(ctx context.Context, sessionID string) (*models.ScopePackage, error) {
	var pkg models.ScopePackage
	if err := s.db.WithContext(ctx).First(&pkg, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopePackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (s *Store) GetScopePackageTx(tx *gorm.DB, sessionID string) (*models.ScopePackage, error) {
	var pkg models.ScopePackage
	if err := tx.First(&pkg, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopePackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// SaveRoundPlanTx writes the whole round plan array back in one update.
func (s *Store) SaveRoundPlanTx(tx *gorm.DB, pkg *models.ScopePackage) error {
	return tx.Model(&models.ScopePackage{}).
		Where("id = ?", pkg.ID).
		Update("round_plan", pkg.RoundPlan).Error
}

// Event log. Rows are append-only; nothing in the codebase updates or
// deletes a live event.

func (s *Store) AppendEvent(ctx context.Context, sessionID, eventType, actor string, payload models.JSONMap) error {
	event := &models.LiveEvent{
		SessionID: sessionID,
		EventType: eventType,
		Actor:     actor,
		Payload:   payload,
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	metrics.RecordEvent(eventType)
	s.notifyChange(ctx, "live_events", strconv.FormatUint(uint64(event.ID), 10), sessionID)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, sessionID string, limit int) ([]models.LiveEvent, error) {
	var events []models.LiveEvent
	query := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]models.LiveEvent, error) {
	var events []models.LiveEvent
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Artifacts

func (s *Store) CreateArtifact(ctx context.Context, artifact *models.Artifact) error {
	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	s.notifyChange(ctx, "artifacts", artifact.ID, artifact.SessionID)
	return nil
}

func (s *Store) GetArtifact(ctx context.Context, artifactID string) (*models.Artifact, error) {
	var artifact models.Artifact
	if err := s.db.WithContext(ctx).First(&artifact, "id = ?", artifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return &artifact, nil
}

func (s *Store) ListArtifacts(ctx context.Context, sessionID string) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&artifacts).Error; err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Scores. Latest-by-created_at wins for display; the id tiebreak keeps the
// ordering deterministic when two rows land in the same clock tick.

func (s *Store) CreateScore(ctx context.Context, score *models.Score) error {
	if err := s.db.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	s.notifyChange(ctx, "scores", strconv.FormatUint(uint64(score.ID), 10), score.SessionID)
	return nil
}

func (s *Store) UpdateScore(ctx context.Context, score *models.Score) error {
	if err := s.db.WithContext(ctx).Save(score).Error; err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	s.notifyChange(ctx, "scores", strconv.FormatUint(uint64(score.ID), 10), score.SessionID)
	return nil
}

func (s *Store) LatestScore(ctx context.Context, sessionID string) (*models.Score, error) {
	var score models.Score
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (s *Store) LatestScoreForRound(ctx context.Context, sessionID string, roundNumber int) (*models.Score, error) {
	var score models.Score
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
		Order("created_at DESC, id DESC").
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (s *Store) ListScores(ctx context.Context, sessionID string) ([]models.Score, error) {
	var scores []models.Score
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *Store) ListAllScores(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	if err := s.db.WithContext(ctx).Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// Red flags

func (s *Store) CreateRedFlag(ctx context.Context, flag *models.RedFlag) error {
	if err := s.db.WithContext(ctx).Create(flag).Error; err != nil {
		return fmt.Errorf("failed to create red flag: %w", err)
	}
	s.notifyChange(ctx, "red_flags", strconv.FormatUint(uint64(flag.ID), 10), flag.SessionID)
	return nil
}

func (s *Store) ListRoundFlags(ctx context.Context, sessionID string, roundNumber int) ([]models.RedFlag, error) {
	var flags []models.RedFlag
	if err := s.db.WithContext(ctx).
		Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
		Order("created_at DESC, id DESC").
		Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (s *Store) ListFlags(ctx context.Context, sessionID string) ([]models.RedFlag, error) {
	var flags []models.RedFlag
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (s *Store) CountRedFlags(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RedFlag{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Model registry

func (s *Store) CreateModel(ctx context.Context, model *models.RegisteredModel) error {
	return s.db.WithContext(ctx).Create(model).Error
}

func (s *Store) ListModels(ctx context.Context) ([]models.RegisteredModel, error) {
	var rows []models.RegisteredModel
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListActiveModels(ctx context.Context, purpose string) ([]models.RegisteredModel, error) {
	var rows []models.RegisteredModel
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND purpose = ?", true, purpose).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Magic link audits

func (s *Store) CreateMagicLinkEvent(ctx context.Context, event *models.MagicLinkEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}
