package models

import "strings"

// CreateSessionRequest bootstraps a session from a track template.
type CreateSessionRequest struct {
	CandidateName string `json:"candidate_name"`
	Role          string `json:"role"`
	Level         string `json:"level"`
	Track         string `json:"track"`
	Difficulty    int    `json:"difficulty"`
}

func (r *CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.CandidateName) == "" {
		return &ErrorResponse{Code: "missing_candidate_name", Message: "candidate_name field is required"}
	}
	if strings.TrimSpace(r.Role) == "" {
		return &ErrorResponse{Code: "missing_role", Message: "role field is required"}
	}
	if strings.TrimSpace(r.Level) == "" {
		return &ErrorResponse{Code: "missing_level", Message: "level field is required"}
	}
	if r.Track == "" {
		r.Track = TrackSales
	}
	if r.Difficulty == 0 {
		r.Difficulty = 3
	}
	if r.Difficulty < 1 || r.Difficulty > 5 {
		return &ErrorResponse{Code: "invalid_difficulty", Message: "difficulty must be between 1 and 5"}
	}
	return nil
}

// SubmitArtifactRequest carries a candidate submission for a round. The
// round number is not checked against the active round: drafts may be
// submitted at any time and only final submissions trigger scoring.
type SubmitArtifactRequest struct {
	SessionID    string  `json:"-"` // taken from the URL, not the body
	RoundNumber  int     `json:"round_number"`
	ArtifactType string  `json:"artifact_type"`
	Content      string  `json:"content"`
	Metadata     JSONMap `json:"metadata"`
}

func (r *SubmitArtifactRequest) Validate() error {
	if r.RoundNumber < 1 {
		return &ErrorResponse{Code: "invalid_round_number", Message: "round_number must be a positive integer"}
	}
	if r.ArtifactType == "" {
		return &ErrorResponse{Code: "missing_artifact_type", Message: "artifact_type field is required"}
	}
	if strings.TrimSpace(r.Content) == "" {
		return &ErrorResponse{Code: "missing_content", Message: "content field is required"}
	}
	return nil
}

// Draft reports whether the submission is an incremental draft rather
// than a final response.
func (r *SubmitArtifactRequest) Draft() bool {
	draft, _ := r.Metadata["draft"].(bool)
	return draft
}

// UpdateSessionStatusRequest moves a session to a terminal status. The
// interviewer console posts it when wrapping up or abandoning a session.
type UpdateSessionStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

func (r *UpdateSessionStatusRequest) Validate() error {
	if r.Status != SessionCompleted && r.Status != SessionAborted {
		return &ErrorResponse{Code: "invalid_status", Message: "status must be completed or aborted"}
	}
	if r.Actor == "" {
		r.Actor = ActorInterviewer
	}
	return nil
}

// InterviewerActionRequest is the open-ended override-layer envelope.
// Unknown action types are accepted and audited, so only the envelope
// fields are validated.
type InterviewerActionRequest struct {
	SessionID  string  `json:"session_id"`
	ActionType string  `json:"action_type"`
	Payload    JSONMap `json:"payload"`
}

func (r *InterviewerActionRequest) Validate() error {
	if r.SessionID == "" || r.ActionType == "" {
		return &ErrorResponse{Code: "missing_fields", Message: "Missing required fields: session_id, action_type"}
	}
	return nil
}

// CandidateAccessRequest looks up the candidate's live session by email.
type CandidateAccessRequest struct {
	Email string `json:"email"`
}

func (r *CandidateAccessRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return &ErrorResponse{Code: "missing_email", Message: "Email is required"}
	}
	return nil
}

// MagicLinkOpenRequest records that a candidate opened their magic link.
type MagicLinkOpenRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

func (r *MagicLinkOpenRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Missing required field: session_id"}
	}
	return nil
}

// VoiceSessionRequest resolves a realtime voice agent for a session.
type VoiceSessionRequest struct {
	SessionID  string `json:"session_id"`
	Difficulty int    `json:"difficulty"`
}

func (r *VoiceSessionRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Missing session_id"}
	}
	return nil
}

// CreateModelRequest registers a model for AI routing.
type CreateModelRequest struct {
	ModelKey string `json:"model_key"`
	Provider string `json:"provider"`
	Purpose  string `json:"purpose"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
}

func (r *CreateModelRequest) Validate() error {
	if r.ModelKey == "" || r.Provider == "" || r.Purpose == "" {
		return &ErrorResponse{Code: "missing_fields", Message: "model_key, provider and purpose are required"}
	}
	return nil
}
