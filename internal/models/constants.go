package models

// Session statuses. Transitions are monotonic:
// scheduled -> live -> {completed | aborted}.
const (
	SessionScheduled = "scheduled"
	SessionLive      = "live"
	SessionCompleted = "completed"
	SessionAborted   = "aborted"
)

// Round statuses within a round plan.
const (
	RoundPending   = "pending"
	RoundActive    = "active"
	RoundCompleted = "completed"
)

// Round types.
const (
	RoundTypeVoice         = "voice"
	RoundTypeEmail         = "email"
	RoundTypeText          = "text"
	RoundTypeCode          = "code"
	RoundTypeVoiceRealtime = "voice-realtime"
)

// Event actors.
const (
	ActorSystem      = "system"
	ActorCandidate   = "candidate"
	ActorInterviewer = "interviewer"
)

// Red flag severities. Only critical forces session termination;
// "high" is the advisory severity the scoring engine uses.
const (
	SeverityWarning  = "warning"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Recommendations derived from a round's score.
const (
	RecommendationProceed = "proceed"
	RecommendationCaution = "caution"
	RecommendationStop    = "stop"
)

// Event types written to the live event log.
const (
	EventSessionCreated       = "session_created"
	EventRoundStarted         = "round_started"
	EventRoundCompleted       = "round_completed"
	EventRoundForceAdvanced   = "round_force_advanced"
	EventSessionCompleted     = "session_completed"
	EventSessionForceStopped  = "session_force_stopped"
	EventArtifactSubmitted    = "artifact_submitted"
	EventScoringCompleted     = "scoring_completed"
	EventRedFlag              = "red_flag"
	EventInterviewerAction    = "interviewer_action"
	EventFollowupQuestion     = "followup_question"
	EventDifficultyEscalation = "difficulty_escalation"
	EventScoreOverride        = "score_override"
	EventRecOverride          = "recommendation_override"
	EventMagicLinkOpened      = "magic_link_opened"
)

// Interviewer action types handled by the override layer. Unknown types
// are accepted and only audited, so this list is not exhaustive.
const (
	ActionManualFollowup     = "manual_followup"
	ActionEscalateDifficulty = "escalate_difficulty"
	ActionFlagRedFlag        = "flag_red_flag"
	ActionOverrideScore      = "override_score"
	ActionOverrideRec        = "override_recommendation"
	ActionForceAdvance       = "force_advance"
	ActionForceStop          = "force_stop"
)

// Flag types emitted by the scoring engine.
const (
	FlagInsufficientResponse = "insufficient_response"
	FlagNoEvidence           = "no_evidence"
	FlagCustom               = "custom"
)

// DisqualifyingFlagTypes are flag types that count as a major red flag
// regardless of severity.
var DisqualifyingFlagTypes = map[string]bool{
	"unsafe_data_handling":               true,
	"overconfident_without_verification": true,
	"overpromising":                      true,
	"no_testing_mindset":                 true,
	"conflict_escalation":                true,
}

// Tracks a session can be created for.
const (
	TrackSales          = "sales"
	TrackAgenticEng     = "agentic_eng"
	TrackFullstack      = "fullstack"
	TrackMarketing      = "marketing"
	TrackImplementation = "implementation"
)
