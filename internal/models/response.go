package models

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// SessionView is the aggregator read model served to both clients. It is
// assembled from independent queries and guarantees eventual consistency,
// not a point-in-time snapshot.
type SessionView struct {
	Session      *InterviewSession `json:"session"`
	Candidate    *Candidate        `json:"candidate,omitempty"`
	Job          *JobProfile       `json:"job,omitempty"`
	ScopePackage *ScopePackage     `json:"scope_package"`
	RoundPlan    RoundPlan         `json:"round_plan"`
	Scores       []Score           `json:"scores"`
	Events       []LiveEvent       `json:"events"`
	Artifacts    []Artifact        `json:"artifacts"`
	RedFlags     []RedFlag         `json:"red_flags"`
}

// CreateSessionResponse is returned after the bootstrap chain completes.
type CreateSessionResponse struct {
	Session      *InterviewSession `json:"session"`
	Candidate    *Candidate        `json:"candidate"`
	Job          *JobProfile       `json:"job"`
	ScopePackage *ScopePackage     `json:"scope_package"`
	Rounds       RoundPlan         `json:"rounds"`
	CurrentRound int               `json:"current_round"`
}

// CandidateAccessResponse points an emailed candidate at their session.
type CandidateAccessResponse struct {
	SessionID      string `json:"session_id"`
	Status         string `json:"status"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	RedirectURL    string `json:"redirect_url"`
}

// VoiceSessionResponse carries the realtime voice connection endpoint.
type VoiceSessionResponse struct {
	WSURL      string `json:"ws_url"`
	AgentID    string `json:"agent_id"`
	SessionID  string `json:"session_id"`
	Difficulty int    `json:"difficulty"`
}

// SubmitArtifactResponse acknowledges an artifact submission. Scoring is
// fire-and-forget, so the response never waits on it.
type SubmitArtifactResponse struct {
	Artifact *Artifact `json:"artifact"`
	Scoring  string    `json:"scoring"`
}

// AdminMetricsTotals summarizes platform usage.
type AdminMetricsTotals struct {
	Sessions        int     `json:"sessions"`
	Live            int     `json:"live"`
	Completed       int     `json:"completed"`
	Aborted         int     `json:"aborted"`
	AvgOverallScore float64 `json:"avg_overall_score"`
	AvgConfidence   float64 `json:"avg_confidence"`
	RedFlags        int     `json:"red_flags"`
}

// EventTypeCount ranks event types by frequency.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}

// AdminMetricsResponse is the admin usage dashboard payload.
type AdminMetricsResponse struct {
	Totals        AdminMetricsTotals `json:"totals"`
	TopEventTypes []EventTypeCount   `json:"top_event_types"`
	RecentEvents  []LiveEvent        `json:"recent_events"`
}
