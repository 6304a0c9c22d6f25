package models

import "time"

// InterviewSession is one candidate's assessment instance.
type InterviewSession struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	CandidateID    string     `gorm:"index" json:"candidate_id"`
	JobID          string     `json:"job_id"`
	SessionType    string     `gorm:"not null;default:live" json:"session_type"`
	Status         string     `gorm:"not null;index" json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	ReportExported bool       `gorm:"not null;default:false;index" json:"report_exported"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (InterviewSession) TableName() string { return "interview_sessions" }

// Candidate is the person being assessed.
type Candidate struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index;not null" json:"email"`
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
	CreatedAt time.Time `json:"created_at"`
}

// JobProfile describes the role a session assesses for.
type JobProfile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	JobID     string    `json:"job_id"`
	Title     string    `gorm:"not null" json:"title"`
	Location  string    `json:"location"`
	LevelBand string    `json:"level_band"`
	Track     string    `gorm:"not null" json:"track"`
	CreatedAt time.Time `json:"created_at"`
}

// ScopePackage owns a session's round plan and rubric metadata. The round
// plan is embedded as a JSON array and rewritten whole on every transition.
type ScopePackage struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	SessionID     string    `gorm:"uniqueIndex;not null" json:"session_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Track         string    `gorm:"not null" json:"track"`
	RubricVersion string    `json:"rubric_version"`
	RoundPlan     RoundPlan `gorm:"type:jsonb" json:"round_plan"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ScopePackage) TableName() string { return "interview_scope_packages" }

// LiveEvent is an append-only audit record. Rows are never updated or
// deleted; created_at is the ordering key for transcript reconstruction.
type LiveEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index;not null" json:"session_id"`
	EventType string    `gorm:"not null" json:"event_type"`
	Actor     string    `gorm:"not null;default:system" json:"actor"`
	Payload   JSONMap   `gorm:"type:jsonb" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func (LiveEvent) TableName() string { return "live_events" }

// Artifact is a candidate submission tagged to a round. Immutable once
// created; re-submissions insert new rows.
type Artifact struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"index;not null" json:"session_id"`
	RoundNumber  int       `gorm:"not null" json:"round_number"`
	ArtifactType string    `gorm:"not null" json:"artifact_type"`
	Content      string    `gorm:"type:text" json:"content"`
	Metadata     JSONMap   `gorm:"type:jsonb" json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
}

// Score is one AI (or interviewer-overridden) evaluation of a round.
// Several rows may exist per round; the latest by created_at is
// authoritative. Only the override layer mutates an existing row.
type Score struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	SessionID            string          `gorm:"index;not null" json:"session_id"`
	RoundNumber          int             `gorm:"index;not null" json:"round_number"`
	OverallScore         int             `json:"overall_score"`
	DimensionScores      DimensionScores `gorm:"type:jsonb" json:"dimension_scores"`
	Confidence           float64         `json:"confidence"`
	EvidenceQuotes       EvidenceList    `gorm:"type:jsonb" json:"evidence_quotes"`
	Recommendation       string          `gorm:"not null" json:"recommendation"`
	RecommendedFollowups StringList      `gorm:"type:jsonb" json:"recommended_followups"`
	OverriddenBy         string          `json:"overridden_by,omitempty"`
	OverrideReason       string          `json:"override_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// RedFlag is a discrete, logged concern. Never mutated after creation.
type RedFlag struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	SessionID   string       `gorm:"index;not null" json:"session_id"`
	RoundNumber int          `json:"round_number"`
	FlagType    string       `gorm:"not null" json:"flag_type"`
	Severity    string       `gorm:"not null" json:"severity"`
	Description string       `json:"description"`
	Evidence    EvidenceList `gorm:"type:jsonb" json:"evidence"`
	AutoStop    bool         `gorm:"not null;default:false" json:"auto_stop"`
	Actor       string       `gorm:"not null;default:system" json:"actor"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RegisteredModel is a model-registry entry for AI routing. Only the last
// four characters of an API key are retained.
type RegisteredModel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModelKey    string    `gorm:"uniqueIndex;not null" json:"model_key"`
	Provider    string    `gorm:"not null" json:"provider"`
	Purpose     string    `gorm:"index;not null" json:"purpose"`
	Endpoint    string    `json:"endpoint,omitempty"`
	APIKeyLast4 string    `json:"api_key_last4,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (RegisteredModel) TableName() string { return "model_registry" }

// MagicLinkEvent is a best-effort audit row for magic-link opens.
type MagicLinkEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"index;not null" json:"session_id"`
	CandidateID string    `json:"candidate_id"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
